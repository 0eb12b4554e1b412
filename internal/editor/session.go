// Package editor holds the authoring context that sits beside a project:
// the scene and instance cursors, an in-progress drag, and the
// preset-to-instance pipeline.
package editor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vnforge/internal/character"
	"vnforge/internal/errs"
	"vnforge/internal/narrative"
	"vnforge/internal/preset"
)

// Stage range hints applied by the editor; the model accepts any value.
const (
	MinPosX  = 0.0
	MaxPosX  = 1.0
	MinPosY  = 0.0
	MaxPosY  = 1.2
	MinScale = 0.4
	MaxScale = 1.6
)

// Renderer produces the cached image stored on an instance.
type Renderer interface {
	RenderDataURI(ctx context.Context, spec character.Spec) (string, error)
}

type Options struct {
	Presets  *preset.Store
	Renderer Renderer
	Catalog  character.Catalog
	Logger   *zap.Logger
}

// Session is not safe for concurrent use; callers serialize operations.
type Session struct {
	project  *narrative.Project
	presets  *preset.Store
	renderer Renderer
	catalog  character.Catalog
	logger   *zap.Logger

	currentScene    narrative.SceneID
	currentInstance narrative.InstanceID
	drag            *drag
}

type drag struct {
	scene    narrative.SceneID
	instance narrative.InstanceID
}

func NewSession(p *narrative.Project, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	presets := opts.Presets
	if presets == nil {
		presets = preset.NewMemory()
	}
	catalog := opts.Catalog
	if len(catalog.Archetypes) == 0 {
		catalog = character.DefaultCatalog()
	}
	s := &Session{
		project:  p,
		presets:  presets,
		renderer: opts.Renderer,
		catalog:  catalog,
		logger:   logger.Named("editor"),
	}
	if _, first, ok := p.FirstScene(); ok {
		s.currentScene = first
	}
	return s
}

func (s *Session) Project() *narrative.Project {
	return s.project
}

func (s *Session) Presets() *preset.Store {
	return s.presets
}

func (s *Session) CurrentScene() narrative.SceneID {
	return s.currentScene
}

func (s *Session) CurrentInstance() narrative.InstanceID {
	return s.currentInstance
}

// SelectScene moves the scene cursor and clears the instance cursor.
func (s *Session) SelectScene(id narrative.SceneID) error {
	if _, err := s.project.Scene(id); err != nil {
		return err
	}
	if s.currentScene != id {
		s.currentInstance = ""
		s.drag = nil
	}
	s.currentScene = id
	return nil
}

func (s *Session) SelectInstance(id narrative.InstanceID) error {
	if _, err := s.project.Instance(s.currentScene, id); err != nil {
		return err
	}
	s.currentInstance = id
	return nil
}

// CreateScene appends a scene to route and makes it current.
func (s *Session) CreateScene(route narrative.RouteName) (*narrative.Scene, error) {
	scene, err := s.project.CreateScene(route)
	if err != nil {
		return nil, err
	}
	s.currentScene = scene.ID
	s.currentInstance = ""
	s.drag = nil
	return scene, nil
}

// DeleteScene removes a scene and moves the cursor to the project start when
// the deleted scene was current.
func (s *Session) DeleteScene(id narrative.SceneID) error {
	if err := s.project.DeleteScene(id); err != nil {
		return err
	}
	if s.drag != nil && s.drag.scene == id {
		s.drag = nil
	}
	if s.currentScene == id {
		s.currentScene = ""
		s.currentInstance = ""
		if _, first, ok := s.project.FirstScene(); ok {
			s.currentScene = first
		}
	}
	return nil
}

// SavePreset validates spec against the catalog before storing it.
func (s *Session) SavePreset(ctx context.Context, name string, spec character.Spec) error {
	if err := s.catalog.Check(spec); err != nil {
		return err
	}
	return s.presets.Save(ctx, name, spec)
}

// AttachInstance places a copy of the named preset in a scene, rendered once
// now. Later edits to the preset do not reach the instance.
func (s *Session) AttachInstance(ctx context.Context, sceneID narrative.SceneID, presetName string) (narrative.CharacterInstance, error) {
	if _, err := s.project.Scene(sceneID); err != nil {
		return narrative.CharacterInstance{}, err
	}
	spec, err := s.presets.Load(presetName)
	if err != nil {
		return narrative.CharacterInstance{}, err
	}
	image, err := s.render(ctx, spec)
	if err != nil {
		return narrative.CharacterInstance{}, err
	}
	inst, err := s.project.AddInstance(sceneID, presetName, spec, image)
	if err != nil {
		return narrative.CharacterInstance{}, err
	}
	s.currentScene = sceneID
	s.currentInstance = inst.ID
	s.logger.Debug("instance attached",
		zap.String("scene", string(sceneID)),
		zap.String("instance", string(inst.ID)),
		zap.String("preset", presetName),
	)
	return inst, nil
}

// EditInstance replaces an instance's appearance and re-renders its image.
func (s *Session) EditInstance(ctx context.Context, sceneID narrative.SceneID, id narrative.InstanceID, spec character.Spec) error {
	if _, err := s.project.Instance(sceneID, id); err != nil {
		return err
	}
	if err := s.catalog.Check(spec); err != nil {
		return err
	}
	image, err := s.render(ctx, spec)
	if err != nil {
		return err
	}
	return s.project.UpdateInstance(sceneID, id, spec, image)
}

// Rescale sets an instance scale clamped to the stage range.
func (s *Session) Rescale(sceneID narrative.SceneID, id narrative.InstanceID, scale float64) error {
	return s.project.RescaleInstance(sceneID, id, clamp(scale, MinScale, MaxScale))
}

// Move sets an instance position clamped to the stage range.
func (s *Session) Move(sceneID narrative.SceneID, id narrative.InstanceID, x, y float64) error {
	return s.project.RepositionInstance(sceneID, id, clamp(x, MinPosX, MaxPosX), clamp(y, MinPosY, MaxPosY))
}

func (s *Session) render(ctx context.Context, spec character.Spec) (string, error) {
	if s.renderer == nil {
		return "", fmt.Errorf("%w: no renderer configured", errs.ErrValidation)
	}
	image, err := s.renderer.RenderDataURI(ctx, spec)
	if err != nil {
		return "", fmt.Errorf("rendering character: %w", err)
	}
	return image, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
