package editor

import "vnforge/internal/narrative"

// BeginDrag starts moving an instance. A drag already in progress is
// replaced.
func (s *Session) BeginDrag(sceneID narrative.SceneID, id narrative.InstanceID) error {
	if _, err := s.project.Instance(sceneID, id); err != nil {
		return err
	}
	s.drag = &drag{scene: sceneID, instance: id}
	s.currentScene = sceneID
	s.currentInstance = id
	return nil
}

// DragTo repositions the dragged instance and reports whether a drag was
// active. Moves outside a drag are ignored.
func (s *Session) DragTo(x, y float64) bool {
	if s.drag == nil {
		return false
	}
	if err := s.Move(s.drag.scene, s.drag.instance, x, y); err != nil {
		// the instance vanished mid-drag
		s.drag = nil
		return false
	}
	return true
}

func (s *Session) EndDrag() {
	s.drag = nil
}

func (s *Session) Dragging() bool {
	return s.drag != nil
}
