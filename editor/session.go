// Package editor holds the interactive state around the compositor: the
// gallery, one caption collection per image, the selected box, the drag and
// inline-edit state machine, uploads and permalinks.
//
// A Session is driven from a single goroutine, the same way the browser
// editor is driven by its event loop.
package editor

import (
	"context"
	"fmt"
	"slices"

	"github.com/ByLCY/memeforge/imagesource"
	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/logging"
	"github.com/ByLCY/memeforge/permalink"
	"github.com/ByLCY/memeforge/renderer"
)

// DefaultTemplates returns the bundled gallery, images/1.png through
// images/8.png under base.
func DefaultTemplates(base string) []string {
	out := make([]string, 0, 8)
	for i := 1; i <= 8; i++ {
		out = append(out, fmt.Sprintf("%simages/%d.png", base, i))
	}
	return out
}

// Config wires a session to its collaborators.
type Config struct {
	Templates  []string
	Loader     *imagesource.Loader  // 为空时使用默认 Loader
	Compositor renderer.Compositor // 为空时 Render 不做任何事
}

type dragState struct {
	id     int
	lastX  float64
	lastY  float64
	active bool
}

// Session is the editor state for one user.
type Session struct {
	loader     *imagesource.Loader
	compositor renderer.Compositor
	surface    *renderer.Surface
	uploads    *imagesource.UploadSlot

	gallery []string
	handles map[string]*imagesource.Handle
	boxes   map[string][]layout.TextBox

	active   string
	activeID int
	drag     dragState
	editing  int
	// rendered 是 surface 上布局所属的图片；切换图片后旧布局不能再用于命中测试。
	rendered string
}

// NewSession creates a session whose gallery starts with cfg.Templates.
// No image is selected until SelectImage is called.
func NewSession(cfg Config) *Session {
	loader := cfg.Loader
	if loader == nil {
		loader = imagesource.NewLoader(imagesource.Options{})
	}
	return &Session{
		loader:     loader,
		compositor: cfg.Compositor,
		surface:    renderer.NewSurface(),
		uploads:    imagesource.NewUploadSlot(loader.Blobs()),
		gallery:    slices.Clone(cfg.Templates),
		handles:    map[string]*imagesource.Handle{},
		boxes:      map[string][]layout.TextBox{},
	}
}

// Gallery returns the selectable image keys, newest additions first.
func (s *Session) Gallery() []string { return slices.Clone(s.gallery) }

// ActiveImage returns the key of the selected image.
func (s *Session) ActiveImage() string { return s.active }

// Handle returns the load handle of the selected image, nil before any
// selection.
func (s *Session) Handle() *imagesource.Handle { return s.handles[s.active] }

// Surface returns the export raster of the last successful Render.
func (s *Session) Surface() *renderer.Surface { return s.surface }

// SelectImage makes key the active image, seeds its captions if needed and
// starts loading it. A previously failed load is retried.
func (s *Session) SelectImage(ctx context.Context, key string) *imagesource.Handle {
	s.endInteraction()
	s.active = key
	s.EnsureDefaults(key)
	h := s.handles[key]
	if h == nil || h.Err() != nil {
		h = s.loader.Load(ctx, key)
		s.handles[key] = h
	}
	s.fixSelection()
	logging.Logger().Debug("image selected", "key", key, "boxes", len(s.boxes[key]))
	return h
}

// EnsureDefaults seeds the top and bottom captions for key when it has no
// boxes yet. It reports whether seeding happened.
func (s *Session) EnsureDefaults(key string) bool {
	if len(s.boxes[key]) > 0 {
		return false
	}
	s.boxes[key] = layout.DefaultBoxes()
	return true
}

// Boxes returns a copy of the active image's captions in paint order.
func (s *Session) Boxes() []layout.TextBox { return s.BoxesFor(s.active) }

// BoxesFor returns a copy of the captions of any image.
func (s *Session) BoxesFor(key string) []layout.TextBox {
	return layout.CloneBoxes(s.boxes[key])
}

// Box returns the caption with id on the active image.
func (s *Session) Box(id int) (layout.TextBox, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return layout.TextBox{}, false
	}
	return s.boxes[s.active][i], true
}

// ActiveID returns the selected box id, 0 when the image has no boxes.
func (s *Session) ActiveID() int { return s.activeID }

// Select makes id the selected box.
func (s *Session) Select(id int) bool {
	if s.indexOf(id) < 0 {
		return false
	}
	s.activeID = id
	return true
}

// AddBox appends a "NEW TEXT" box at mid height and selects it.
func (s *Session) AddBox() layout.TextBox {
	list := s.boxes[s.active]
	b := layout.NewBox(layout.NextID(list))
	s.boxes[s.active] = append(list, b)
	s.activeID = b.ID
	return b
}

// RemoveBox deletes the box with id. The selection moves to the first
// remaining box when the selected one is removed.
func (s *Session) RemoveBox(id int) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.boxes[s.active] = slices.Delete(s.boxes[s.active], i, i+1)
	if s.drag.id == id {
		s.drag = dragState{}
	}
	if s.editing == id {
		s.editing = 0
	}
	s.fixSelection()
	return true
}

// RemoveActive deletes the selected box.
func (s *Session) RemoveActive() bool { return s.RemoveBox(s.activeID) }

// Patch applies fn to the box with id. The id cannot be changed and numeric
// fields are held to the control panel ranges.
func (s *Session) Patch(id int, fn func(*layout.TextBox)) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	b := s.boxes[s.active][i]
	fn(&b)
	b.ID = id
	b.FontSize = min(layout.MaxFontSize, max(layout.MinFontSize, b.FontSize))
	b.StrokeWidth = min(layout.MaxStrokeWidth, max(0, b.StrokeWidth))
	if !b.Align.Valid() {
		b.Align = layout.AlignCenter
	}
	s.boxes[s.active][i] = b
	return true
}

// PatchActive applies fn to the selected box.
func (s *Session) PatchActive(fn func(*layout.TextBox)) bool { return s.Patch(s.activeID, fn) }

// AddImage puts url at the front of the gallery with fresh default
// captions and selects it.
func (s *Session) AddImage(ctx context.Context, url string) *imagesource.Handle {
	s.prepend(url)
	s.boxes[url] = layout.DefaultBoxes()
	delete(s.handles, url)
	return s.SelectImage(ctx, url)
}

// Upload stores data in the upload slot, releasing the previous upload and
// its gallery entry, and selects the new image.
func (s *Session) Upload(ctx context.Context, data []byte) *imagesource.Handle {
	if prev := s.uploads.Current(); prev != "" {
		s.forget(prev)
	}
	key := s.uploads.Replace(data)
	return s.AddImage(ctx, key)
}

// Permalink returns a shareable link to the active image and its captions.
func (s *Session) Permalink(base string) (string, error) {
	token, err := permalink.Encode(permalink.State{Img: s.active, Boxes: s.Boxes()})
	if err != nil {
		return "", err
	}
	return permalink.Link(base, token), nil
}

// ApplyPermalink restores the state carried by token. A malformed token is
// ignored and the session is left untouched.
func (s *Session) ApplyPermalink(ctx context.Context, token string) bool {
	st, err := permalink.Decode(token)
	if err != nil {
		logging.Logger().Debug("permalink ignored", "err", err)
		return false
	}
	if !slices.Contains(s.gallery, st.Img) {
		s.prepend(st.Img)
	}
	boxes := layout.CloneBoxes(st.Boxes)
	for i := range boxes {
		if !boxes[i].Align.Valid() {
			boxes[i].Align = layout.AlignCenter
		}
	}
	s.boxes[st.Img] = boxes
	s.SelectImage(ctx, st.Img)
	return true
}

// Render composites the active image and its captions onto the surface.
// It is a no-op while the image is not ready.
func (s *Session) Render() error {
	if s.compositor == nil {
		return nil
	}
	h := s.handles[s.active]
	if h == nil {
		return nil
	}
	if err := s.compositor.Composite(s.surface, h, s.boxes[s.active]); err != nil {
		return err
	}
	if h.Ready() {
		s.rendered = s.active
	}
	return nil
}

// Close releases the current upload.
func (s *Session) Close() {
	s.uploads.Release()
}

func (s *Session) indexOf(id int) int {
	return slices.IndexFunc(s.boxes[s.active], func(b layout.TextBox) bool { return b.ID == id })
}

// fixSelection 保证选中项始终指向当前图片中存在的文本框。
func (s *Session) fixSelection() {
	list := s.boxes[s.active]
	if len(list) == 0 {
		s.activeID = 0
		return
	}
	if s.indexOf(s.activeID) < 0 {
		s.activeID = list[0].ID
	}
}

func (s *Session) prepend(key string) {
	s.gallery = slices.Insert(s.gallery, 0, key)
}

func (s *Session) forget(key string) {
	if i := slices.Index(s.gallery, key); i >= 0 {
		s.gallery = slices.Delete(s.gallery, i, i+1)
	}
	delete(s.boxes, key)
	delete(s.handles, key)
}
