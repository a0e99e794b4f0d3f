// Package fonts resolves CSS font stacks to parsed font faces.
//
// Families are matched case-insensitively. Unknown names in a stack are
// skipped the way a browser skips fonts that are not installed, and a
// coverage fallback (DejaVu Sans) always ends the chain so Hebrew and Arabic
// captions find glyphs.
package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-text/typesetting/font"

	"github.com/ByLCY/memeforge/logging"
)

// Style 为字体样式。
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bolditalic"
	default:
		return "regular"
	}
}

// StyleOf maps the bold/italic flags to a Style.
func StyleOf(bold, italic bool) Style {
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	}
	return Regular
}

// ParseStyle accepts "", regular, bold, italic, oblique, bolditalic and
// bold-italic.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "regular", "normal":
		return Regular, nil
	case "bold":
		return Bold, nil
	case "italic", "oblique":
		return Italic, nil
	case "bolditalic", "bold-italic", "boldoblique", "bold-oblique":
		return BoldItalic, nil
	}
	return Regular, fmt.Errorf("未知的字体样式 %q", s)
}

// 请求的样式缺失时依次尝试的替代样式。
var styleFallbacks = [4][]Style{
	Regular:    {Regular},
	Bold:       {Bold, Regular},
	Italic:     {Italic, Regular},
	BoldItalic: {BoldItalic, Bold, Italic, Regular},
}

// ErrUnknownFamily is returned when a family has no registered faces.
var ErrUnknownFamily = errors.New("unknown font family")

// DefaultFallback ends every resolved chain.
const DefaultFallback = "DejaVu Sans"

type faceKey struct {
	family string
	style  Style
}

// Registry stores font files by family and caches parsed faces.
// Parsed faces are shared; callers shaping text must not use the same face
// from several goroutines at once.
type Registry struct {
	mu       sync.Mutex
	blobs    map[string]map[Style][]byte // key: lower-case family
	names    map[string]string           // lower-case -> display name
	aliases  map[string]string           // lower-case alias -> lower-case family
	faces    map[faceKey]*font.Face
	fallback string
}

// NewRegistry returns a registry preloaded with the built-in families and
// generic aliases.
func NewRegistry() *Registry {
	r := &Registry{
		blobs:    map[string]map[Style][]byte{},
		names:    map[string]string{},
		aliases:  map[string]string{},
		faces:    map[faceKey]*font.Face{},
		fallback: strings.ToLower(DefaultFallback),
	}
	for name, files := range builtin {
		for style, data := range files {
			r.put(name, Style(style), data)
		}
	}
	for alias, family := range builtinAliases {
		r.aliases[strings.ToLower(alias)] = strings.ToLower(family)
	}
	return r
}

func (r *Registry) put(family string, style Style, data []byte) {
	key := strings.ToLower(family)
	if r.blobs[key] == nil {
		r.blobs[key] = map[Style][]byte{}
	}
	r.blobs[key][style] = data
	r.names[key] = family
	delete(r.faces, faceKey{family: key, style: style})
}

// Register adds a font file under family/style. The data is parsed once to
// reject broken files early. A registered family shadows an alias of the
// same name, so registering "Arial" replaces the Liberation stand-in.
func (r *Registry) Register(family string, style Style, data []byte) error {
	family = strings.TrimSpace(family)
	if family == "" {
		return fmt.Errorf("字体族名称不能为空")
	}
	if _, err := font.ParseTTF(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("解析字体 %s (%s) 失败: %w", family, style, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(family, style, data)
	delete(r.aliases, strings.ToLower(family))
	return nil
}

// RegisterFile reads a font from disk (or "embed:<family>[:style]") and
// registers it.
func (r *Registry) RegisterFile(family string, style Style, path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(path, "embed:") {
		data, err = Load(path)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return r.Register(family, style, data)
}

// Alias makes name resolve to an already known family.
func (r *Registry) Alias(name, family string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[strings.ToLower(strings.TrimSpace(name))] = strings.ToLower(strings.TrimSpace(family))
}

// Has reports whether family (or an alias of it) resolves to registered faces.
func (r *Registry) Has(family string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.lookup(family)
	return ok
}

func (r *Registry) lookup(family string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(family))
	if _, ok := r.blobs[key]; ok {
		return key, true
	}
	if target, ok := r.aliases[key]; ok {
		if _, ok := r.blobs[target]; ok {
			return target, true
		}
	}
	return "", false
}

// Face returns the parsed face for family and style, substituting the
// nearest available style when the exact one is missing.
func (r *Registry) Face(family string, style Style) (*font.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.lookup(family)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFamily, family)
	}
	return r.face(key, style)
}

func (r *Registry) face(key string, style Style) (*font.Face, error) {
	for _, s := range styleFallbacks[style] {
		fk := faceKey{family: key, style: s}
		if f, ok := r.faces[fk]; ok {
			return f, nil
		}
		data, ok := r.blobs[key][s]
		if !ok {
			continue
		}
		f, err := font.ParseTTF(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("解析字体 %s (%s) 失败: %w", r.names[key], s, err)
		}
		logging.Logger().Debug("font face parsed", "family", r.names[key], "style", s.String(), "requested", style.String())
		r.faces[fk] = f
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s 缺少可用样式", ErrUnknownFamily, r.names[key])
}

// Faces resolves a CSS family stack into an ordered fallback chain: every
// known family of the stack in order, followed by the coverage fallback.
func (r *Registry) Faces(stack []string, bold, italic bool) ([]*font.Face, error) {
	style := StyleOf(bold, italic)
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		chain []*font.Face
		seen  = map[string]bool{}
	)
	add := func(key string) error {
		if seen[key] {
			return nil
		}
		seen[key] = true
		f, err := r.face(key, style)
		if err != nil {
			return err
		}
		chain = append(chain, f)
		return nil
	}
	for _, family := range stack {
		key, ok := r.lookup(family)
		if !ok {
			logging.Logger().Debug("font family not available, skipping", "family", family)
			continue
		}
		if err := add(key); err != nil {
			return nil, err
		}
	}
	if _, ok := r.blobs[r.fallback]; ok {
		if err := add(r.fallback); err != nil {
			return nil, err
		}
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFamily, strings.Join(stack, ", "))
	}
	return chain, nil
}

// ParseFontFlag parses "Family[:style]=path", the format of the -font flag.
func ParseFontFlag(v string) (family string, style Style, path string, err error) {
	head, path, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(path) == "" {
		return "", Regular, "", fmt.Errorf("字体参数 %q 应为 Family[:style]=path", v)
	}
	family, styleName, _ := strings.Cut(head, ":")
	family = strings.TrimSpace(family)
	if family == "" {
		return "", Regular, "", fmt.Errorf("字体参数 %q 缺少字体族名称", v)
	}
	style, err = ParseStyle(styleName)
	if err != nil {
		return "", Regular, "", err
	}
	return family, style, strings.TrimSpace(path), nil
}
