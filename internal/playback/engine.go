// Package playback walks a narrative project one explicit step at a time.
// The engine tracks only the current position, so cyclic graphs are safe.
package playback

import (
	"errors"
	"fmt"

	"vnforge/internal/narrative"
)

// ErrInvalidChoice is returned when a choice is selected outside the
// awaiting-choice state or with an index the scene does not have.
var ErrInvalidChoice = errors.New("invalid choice")

// State is the player-visible position.
type State struct {
	Route          narrative.RouteName `json:"route"`
	Scene          narrative.SceneID   `json:"scene"`
	DialogueIndex  int                 `json:"dialogueIndex"`
	AwaitingChoice bool                `json:"awaitingChoice"`
	Ended          bool                `json:"ended"`
}

// View is what a player renders for the current state.
type View struct {
	State      State
	Title      string
	Background string
	Dialogue   *narrative.DialogueLine
	Choices    []narrative.Choice
	Instances  []narrative.CharacterInstance
}

// Engine reads the project without mutating it. Callers that keep editing
// the project while playing should hand the engine a clone.
type Engine struct {
	project *narrative.Project
	start   narrative.SceneID
	state   State
}

// New starts at the first scene of the first route. A project with no scene
// yields an engine that is already ended.
func New(p *narrative.Project) *Engine {
	e := &Engine{project: p}
	e.Restart()
	return e
}

// NewAt starts at sceneID instead of the project start. Restart still
// returns to the first scene of the first route.
func NewAt(p *narrative.Project, sceneID narrative.SceneID) (*Engine, error) {
	if _, err := p.Scene(sceneID); err != nil {
		return nil, fmt.Errorf("playback start: %w", err)
	}
	e := &Engine{project: p}
	e.enter(sceneID)
	return e, nil
}

func (e *Engine) State() State {
	return e.state
}

// Restart returns to the first route's first scene with the cursor at 0.
func (e *Engine) Restart() {
	_, first, ok := e.project.FirstScene()
	if !ok {
		e.state = State{Ended: true}
		return
	}
	e.enter(first)
}

// Advance moves one step forward. It is a no-op while a choice is pending
// or after the route ended.
func (e *Engine) Advance() {
	if e.state.Ended || e.state.AwaitingChoice {
		return
	}
	scene, err := e.project.Scene(e.state.Scene)
	if err != nil {
		e.end()
		return
	}
	if e.state.DialogueIndex < len(scene.Dialogues) {
		e.state.DialogueIndex++
		if e.state.DialogueIndex < len(scene.Dialogues) {
			return
		}
	}
	if len(scene.Choices) > 0 {
		e.state.AwaitingChoice = true
		return
	}
	next, ok := e.project.NextSceneID(e.state.Route, e.state.Scene)
	if !ok {
		e.end()
		return
	}
	e.enter(next)
}

// Choose selects the choice at index in the current scene. A choice without a
// resolvable target ends the route.
func (e *Engine) Choose(index int) error {
	if !e.state.AwaitingChoice || e.state.Ended {
		return fmt.Errorf("%w: no choice pending", ErrInvalidChoice)
	}
	scene, err := e.project.Scene(e.state.Scene)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidChoice, err)
	}
	if index < 0 || index >= len(scene.Choices) {
		return fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidChoice, index, len(scene.Choices))
	}
	target := scene.Choices[index].TargetSceneID
	if target == "" {
		e.end()
		return nil
	}
	if _, err := e.project.Scene(target); err != nil {
		e.end()
		return nil
	}
	e.enter(target)
	return nil
}

// View resolves the current state against the project.
func (e *Engine) View() View {
	v := View{State: e.state}
	scene, err := e.project.Scene(e.state.Scene)
	if err != nil {
		return v
	}
	v.Title = scene.Title
	v.Background = scene.Background
	v.Instances = scene.Instances
	if e.state.DialogueIndex < len(scene.Dialogues) {
		line := scene.Dialogues[e.state.DialogueIndex]
		v.Dialogue = &line
	}
	if e.state.AwaitingChoice {
		v.Choices = scene.Choices
	}
	return v
}

// enter positions the cursor at the start of id. Scenes with neither dialogue
// nor choices fall through to the next scene of their route; the last such
// scene is shown blank and the following Advance ends the route.
func (e *Engine) enter(id narrative.SceneID) {
	// a well-formed route lists each scene once; the bound only matters for
	// projects that skipped Check
	for hops := 0; hops <= len(e.project.Scenes); hops++ {
		scene, err := e.project.Scene(id)
		if err != nil {
			e.end()
			return
		}
		e.state = State{Route: scene.Route, Scene: id}
		if len(scene.Dialogues) > 0 {
			return
		}
		if len(scene.Choices) > 0 {
			e.state.AwaitingChoice = true
			return
		}
		next, ok := e.project.NextSceneID(scene.Route, id)
		if !ok {
			return
		}
		id = next
	}
}

func (e *Engine) end() {
	e.state.AwaitingChoice = false
	e.state.Ended = true
}
