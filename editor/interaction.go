package editor

import "github.com/ByLCY/memeforge/layout"

// Pointer coordinates are fractions of the displayed image, (0,0) top-left.

// BeginDrag selects id and starts dragging it from the pointer position.
// A box being edited inline cannot be dragged.
func (s *Session) BeginDrag(id int, fx, fy float64) bool {
	if s.editing == id || !s.Select(id) {
		return false
	}
	s.drag = dragState{id: id, lastX: fx, lastY: fy, active: true}
	return true
}

// PointerDown hit-tests the last rendered layout and starts dragging the
// topmost box under the pointer. Nothing is hit until the active image has
// been rendered.
func (s *Session) PointerDown(fx, fy float64) (int, bool) {
	if s.rendered == "" || s.rendered != s.active {
		return 0, false
	}
	id, ok := s.surface.HitTest(fx, fy)
	if !ok || !s.BeginDrag(id, fx, fy) {
		return 0, false
	}
	return id, true
}

// Drag moves the dragged box by the pointer delta since the previous event,
// keeping its anchor on the canvas.
func (s *Session) Drag(fx, fy float64) bool {
	if !s.drag.active {
		return false
	}
	dx, dy := fx-s.drag.lastX, fy-s.drag.lastY
	s.drag.lastX, s.drag.lastY = fx, fy
	i := s.indexOf(s.drag.id)
	if i < 0 {
		s.drag = dragState{}
		return false
	}
	b := &s.boxes[s.active][i]
	b.X = layout.ClampAnchor(b.X + dx)
	b.Y = layout.ClampAnchor(b.Y + dy)
	return true
}

// EndDrag returns to idle.
func (s *Session) EndDrag() { s.drag = dragState{} }

// Dragging returns the dragged box id.
func (s *Session) Dragging() (int, bool) { return s.drag.id, s.drag.active }

// BeginEdit enters inline-edit mode for id, ending any drag.
func (s *Session) BeginEdit(id int) bool {
	if !s.Select(id) {
		return false
	}
	s.drag = dragState{}
	s.editing = id
	return true
}

// EndEdit leaves inline-edit mode.
func (s *Session) EndEdit() { s.editing = 0 }

// Editing returns the id of the box being edited inline.
func (s *Session) Editing() (int, bool) { return s.editing, s.editing != 0 }

func (s *Session) endInteraction() {
	s.drag = dragState{}
	s.editing = 0
}
