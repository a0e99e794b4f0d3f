package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-fonts/dejavu/dejavusansbold"
	"golang.org/x/image/font/gofont/goregular"
)

func TestFacesSkipsUnknownFamilies(t *testing.T) {
	r := NewRegistry()
	chain, err := r.Faces([]string{"Impact", "Haettenschweiler", "Arial Black", "sans-serif"}, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// sans-serif 与兜底字体相同，应去重为一个
	if len(chain) != 1 {
		t.Fatalf("expected a single DejaVu face, got %d", len(chain))
	}
	want, err := r.Face("DejaVu Sans", Bold)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chain[0] != want {
		t.Fatalf("expected the bold DejaVu Sans face")
	}
}

func TestFacesKeepsStackOrderAndAppendsFallback(t *testing.T) {
	r := NewRegistry()
	chain, err := r.Faces([]string{"Georgia", "Times New Roman", "serif"}, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("expected Liberation Serif, DejaVu Serif and DejaVu Sans, got %d faces", len(chain))
	}
	lib, _ := r.Face("Liberation Serif", Regular)
	if chain[0] != lib {
		t.Fatalf("Times New Roman should resolve to Liberation Serif first")
	}
}

func TestFallbackCoversHebrewAndArabic(t *testing.T) {
	r := NewRegistry()
	chain, err := r.Faces([]string{"Go"}, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := chain[len(chain)-1]
	for _, ch := range []rune{'ש', 'م'} {
		if _, ok := last.NominalGlyph(ch); !ok {
			t.Fatalf("fallback face has no glyph for %q", ch)
		}
	}
}

func TestRegisterShadowsAlias(t *testing.T) {
	r := NewRegistry()
	if !r.Has("arial") {
		t.Fatalf("Arial should be served by Liberation Sans")
	}
	if err := r.Register("Arial", Regular, goregular.TTF); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	got, err := r.Face("Arial", Bold)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lib, _ := r.Face("Liberation Sans", Bold)
	if got == lib {
		t.Fatalf("registered Arial should replace the alias")
	}
}

func TestRegisterRejectsGarbage(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("Broken", Regular, []byte("not a font")); err == nil {
		t.Fatalf("expected parse error")
	}
	if r.Has("Broken") {
		t.Fatalf("broken font must not be registered")
	}
	if _, err := r.Face("Broken", Regular); !errors.Is(err, ErrUnknownFamily) {
		t.Fatalf("expected ErrUnknownFamily, got %v", err)
	}
}

func TestRegisterFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "impact.ttf")
	if err := os.WriteFile(path, dejavusansbold.TTF, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	r := NewRegistry()
	if err := r.RegisterFile("Impact", Regular, path); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	chain, err := r.Faces([]string{"Impact", "sans-serif"}, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("expected Impact plus fallback, got %d", len(chain))
	}
	if err := r.RegisterFile("Mono", Regular, "embed:Go Mono"); err != nil {
		t.Fatalf("embed registration failed: %v", err)
	}
	if err := r.RegisterFile("Missing", Regular, filepath.Join(dir, "nope.ttf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseFontFlag(t *testing.T) {
	family, style, path, err := ParseFontFlag("Impact:bold=/fonts/impact.ttf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if family != "Impact" || style != Bold || path != "/fonts/impact.ttf" {
		t.Fatalf("unexpected parse result %q %v %q", family, style, path)
	}
	for _, bad := range []string{"Impact", "=x.ttf", "Impact:heavy=x.ttf", "Impact="} {
		if _, _, _, err := ParseFontFlag(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLoadBuiltin(t *testing.T) {
	for _, name := range Builtins() {
		for _, s := range []string{"regular", "bold", "italic", "bolditalic"} {
			data, err := Load("embed:" + name + ":" + s)
			if err != nil || len(data) == 0 {
				t.Fatalf("Load(%s:%s) failed: %v", name, s, err)
			}
		}
	}
	if _, err := Load("embed:Comic Sans"); err == nil {
		t.Fatalf("expected error for unknown builtin")
	}
}
