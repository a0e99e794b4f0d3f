package main

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/permalink"
	"github.com/ByLCY/memeforge/renderer/raster"
)

func writeBase(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 90, B: 160, A: 255})
		}
	}
	path := filepath.Join(dir, "base.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func baseOptions(t *testing.T) options {
	dir := t.TempDir()
	return options{
		input:   writeBase(t, dir),
		output:  filepath.Join(dir, "out", "meme.png"),
		debug:   filepath.Join(dir, "layout.json"),
		timeout: 5 * time.Second,
	}
}

func decodeOut(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return img
}

func TestRunWritesScaledPNG(t *testing.T) {
	opts := baseOptions(t)
	opts.top = "hello ${who}"
	opts.data = map[string]any{"who": "world"}
	opts.color = "yellow"
	opts.linkBase = "https://memes.example/"

	res, err := run(context.Background(), opts, raster.NewRenderer())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := decodeOut(t, res.path).Bounds().Size(); got != image.Pt(400, 200) {
		t.Fatalf("output size = %v, want 400x200", got)
	}

	raw, err := os.ReadFile(opts.debug)
	if err != nil {
		t.Fatalf("debug json: %v", err)
	}
	var lr layout.Result
	if err := json.Unmarshal(raw, &lr); err != nil {
		t.Fatalf("debug json: %v", err)
	}
	if len(lr.Boxes) != 2 {
		t.Fatalf("debug layout has %d boxes", len(lr.Boxes))
	}
	var top []string
	for _, l := range lr.Boxes[0].Lines {
		top = append(top, l.Text)
	}
	if got := strings.Join(top, " "); got != "HELLO WORLD" {
		t.Fatalf("top caption = %q", got)
	}

	st, ok, err := permalink.FromURL(res.link)
	if err != nil || !ok {
		t.Fatalf("link %q: ok=%v err=%v", res.link, ok, err)
	}
	if st.Img != opts.input || st.Boxes[0].Color != "yellow" || st.Boxes[0].StrokeColor != "#000000" {
		t.Fatalf("permalink state = %+v", st)
	}
}

func TestRunFromPermalinkAndBoxes(t *testing.T) {
	opts := baseOptions(t)
	token, err := permalink.Encode(permalink.State{
		Img:   opts.input,
		Boxes: []layout.TextBox{layout.NewBox(7)},
	})
	if err != nil {
		t.Fatal(err)
	}
	opts.token = "https://memes.example/?m=" + token
	opts.input = "does-not-exist.png"
	opts.dataURL = true

	res, err := run(context.Background(), opts, raster.NewRenderer())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(res.dataURL, "data:image/png;base64,") {
		t.Fatalf("data url missing")
	}

	boxesPath := filepath.Join(t.TempDir(), "boxes.json")
	boxes := []layout.TextBox{layout.DefaultBox(1), layout.DefaultBox(2), layout.NewBox(3)}
	raw, _ := json.Marshal(boxes)
	if err := os.WriteFile(boxesPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	opts = baseOptions(t)
	opts.boxesPath = boxesPath
	if _, err := run(context.Background(), opts, raster.NewRenderer()); err != nil {
		t.Fatalf("run with boxes: %v", err)
	}
	raw, err = os.ReadFile(opts.debug)
	if err != nil {
		t.Fatal(err)
	}
	var lr layout.Result
	if err := json.Unmarshal(raw, &lr); err != nil {
		t.Fatal(err)
	}
	if len(lr.Boxes) != 3 {
		t.Fatalf("boxes rendered = %d, want 3", len(lr.Boxes))
	}
}

func TestRunFailsOnMissingImage(t *testing.T) {
	opts := baseOptions(t)
	opts.input = filepath.Join(t.TempDir(), "missing.png")
	if _, err := run(context.Background(), opts, raster.NewRenderer()); err == nil {
		t.Fatalf("expected load error")
	}
	if _, err := os.Stat(opts.output); !os.IsNotExist(err) {
		t.Fatalf("no output expected on failure")
	}
}
