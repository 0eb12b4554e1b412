package mcp

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"vnforge/internal/export"
	"vnforge/internal/narrative"
	"vnforge/internal/playback"
	"vnforge/internal/validate"
)

const defaultMaxSteps = 200

type ListRoutesInput struct{}

type GetSceneInput struct {
	SceneID string `json:"scene_id" jsonschema:"scene identifier"`
}

type CreateSceneInput struct {
	Route string `json:"route" jsonschema:"route the scene is appended to; created when missing"`
}

type AddDialogueInput struct {
	SceneID string `json:"scene_id" jsonschema:"scene identifier"`
	Speaker string `json:"speaker,omitempty" jsonschema:"speaker name, may be empty"`
	Text    string `json:"text" jsonschema:"dialogue text"`
}

type AddChoiceInput struct {
	SceneID       string `json:"scene_id" jsonschema:"scene identifier"`
	Text          string `json:"text" jsonschema:"choice text"`
	Route         string `json:"route,omitempty" jsonschema:"informational route label, defaults to the target's route"`
	TargetSceneID string `json:"target_scene_id,omitempty" jsonschema:"scene to jump to; empty ends the route"`
}

type AttachInstanceInput struct {
	SceneID string `json:"scene_id" jsonschema:"scene identifier"`
	Preset  string `json:"preset" jsonschema:"name of a saved character preset"`
}

type MoveInstanceInput struct {
	SceneID    string  `json:"scene_id" jsonschema:"scene identifier"`
	InstanceID string  `json:"instance_id" jsonschema:"instance identifier"`
	X          float64 `json:"x" jsonschema:"horizontal stage position in [0,1]"`
	Y          float64 `json:"y" jsonschema:"vertical stage position in [0,1.2]"`
}

type ListPresetsInput struct{}

type PlaythroughInput struct {
	StartSceneID string `json:"start_scene_id,omitempty" jsonschema:"scene to start from; defaults to the story start"`
	Choices      []int  `json:"choices,omitempty" jsonschema:"choice indexes to pick, in order"`
	MaxSteps     int    `json:"max_steps,omitempty" jsonschema:"step limit, guards against cycles"`
}

type ExportStoryInput struct {
	Title string `json:"title,omitempty" jsonschema:"document title"`
}

type ValidateProjectInput struct{}

type RouteOutput struct {
	Name   string               `json:"name"`
	Scenes []SceneSummaryOutput `json:"scenes"`
}

type SceneSummaryOutput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ListRoutesOutput struct {
	Routes []RouteOutput `json:"routes"`
}

type DialogueOutput struct {
	ID      string `json:"id"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type ChoiceOutput struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Route         string `json:"route"`
	TargetSceneID string `json:"target_scene_id,omitempty"`
}

type InstanceOutput struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Archetype   string  `json:"archetype"`
	PosX        float64 `json:"pos_x"`
	PosY        float64 `json:"pos_y"`
	Scale       float64 `json:"scale"`
}

type SceneOutput struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Route      string           `json:"route"`
	Background string           `json:"background,omitempty"`
	Dialogues  []DialogueOutput `json:"dialogues"`
	Choices    []ChoiceOutput   `json:"choices"`
	Instances  []InstanceOutput `json:"instances"`
}

type ListPresetsOutput struct {
	Presets []string `json:"presets"`
}

type StepOutput struct {
	SceneID string         `json:"scene_id"`
	Title   string         `json:"title"`
	Speaker string         `json:"speaker,omitempty"`
	Text    string         `json:"text,omitempty"`
	Choices []ChoiceOutput `json:"choices,omitempty"`
	Chosen  *int           `json:"chosen,omitempty"`
}

type PlaythroughOutput struct {
	Steps []StepOutput `json:"steps"`
	Ended bool         `json:"ended"`
	// Waiting is true when the walk stopped at a choice with no index left.
	Waiting bool `json:"waiting"`
}

type ExportStoryOutput struct {
	HTML string `json:"html"`
}

type IssueOutput struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Route    string `json:"route,omitempty"`
	Scene    string `json:"scene,omitempty"`
}

type ValidateProjectOutput struct {
	Issues []IssueOutput `json:"issues"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_routes",
		Description: "List routes and their ordered scenes",
	}, s.handleListRoutes)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_scene",
		Description: "Retrieve a scene with its dialogue, choices and placed characters",
	}, s.handleGetScene)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "create_scene",
		Description: "Append a new scene to a route",
	}, s.handleCreateScene)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "add_dialogue",
		Description: "Append a dialogue line to a scene",
	}, s.handleAddDialogue)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "add_choice",
		Description: "Append a branching choice to a scene",
	}, s.handleAddChoice)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "attach_instance",
		Description: "Place a rendered copy of a character preset in a scene",
	}, s.handleAttachInstance)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "move_instance",
		Description: "Drag a placed character to a new stage position",
	}, s.handleMoveInstance)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_presets",
		Description: "List saved character presets",
	}, s.handleListPresets)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "playthrough",
		Description: "Play the story from the start, picking the given choices, and return what a reader sees",
	}, s.handlePlaythrough)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "export_story",
		Description: "Export the story as a standalone playable HTML document",
	}, s.handleExportStory)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "validate_project",
		Description: "Run consistency checks against the story graph",
	}, s.handleValidateProject)
}

func (s *Server) handleListRoutes(ctx context.Context, req *sdk.CallToolRequest, input ListRoutesInput) (*sdk.CallToolResult, ListRoutesOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.session.Project()
	output := make([]RouteOutput, 0, len(p.Routes))
	for _, route := range p.Routes {
		out := RouteOutput{Name: string(route.Name), Scenes: make([]SceneSummaryOutput, 0, len(route.Scenes))}
		for _, id := range route.Scenes {
			summary := SceneSummaryOutput{ID: string(id)}
			if scene, err := p.Scene(id); err == nil {
				summary.Title = scene.Title
			}
			out.Scenes = append(out.Scenes, summary)
		}
		output = append(output, out)
	}
	return nil, ListRoutesOutput{Routes: output}, nil
}

func (s *Server) handleGetScene(ctx context.Context, req *sdk.CallToolRequest, input GetSceneInput) (*sdk.CallToolResult, SceneOutput, error) {
	if input.SceneID == "" {
		return nil, SceneOutput{}, fmt.Errorf("scene_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	scene, err := s.session.Project().Scene(narrative.SceneID(input.SceneID))
	if err != nil {
		return nil, SceneOutput{}, err
	}
	return nil, sceneOutputFromNarrative(scene), nil
}

func (s *Server) handleCreateScene(ctx context.Context, req *sdk.CallToolRequest, input CreateSceneInput) (*sdk.CallToolResult, SceneOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scene, err := s.session.CreateScene(narrative.RouteName(strings.TrimSpace(input.Route)))
	if err != nil {
		return nil, SceneOutput{}, err
	}
	if err := s.persist(ctx); err != nil {
		return nil, SceneOutput{}, err
	}
	return nil, sceneOutputFromNarrative(scene), nil
}

func (s *Server) handleAddDialogue(ctx context.Context, req *sdk.CallToolRequest, input AddDialogueInput) (*sdk.CallToolResult, DialogueOutput, error) {
	if input.SceneID == "" {
		return nil, DialogueOutput{}, fmt.Errorf("scene_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := s.session.Project().AddDialogue(narrative.SceneID(input.SceneID), input.Speaker, input.Text)
	if err != nil {
		return nil, DialogueOutput{}, err
	}
	if err := s.persist(ctx); err != nil {
		return nil, DialogueOutput{}, err
	}
	return nil, dialogueOutputFromNarrative(line), nil
}

func (s *Server) handleAddChoice(ctx context.Context, req *sdk.CallToolRequest, input AddChoiceInput) (*sdk.CallToolResult, ChoiceOutput, error) {
	if input.SceneID == "" {
		return nil, ChoiceOutput{}, fmt.Errorf("scene_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	choice, err := s.session.Project().AddChoice(
		narrative.SceneID(input.SceneID),
		input.Text,
		input.Route,
		narrative.SceneID(input.TargetSceneID),
	)
	if err != nil {
		return nil, ChoiceOutput{}, err
	}
	if err := s.persist(ctx); err != nil {
		return nil, ChoiceOutput{}, err
	}
	return nil, choiceOutputFromNarrative(choice), nil
}

func (s *Server) handleAttachInstance(ctx context.Context, req *sdk.CallToolRequest, input AttachInstanceInput) (*sdk.CallToolResult, InstanceOutput, error) {
	if input.SceneID == "" || input.Preset == "" {
		return nil, InstanceOutput{}, fmt.Errorf("scene_id and preset are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, err := s.session.AttachInstance(ctx, narrative.SceneID(input.SceneID), input.Preset)
	if err != nil {
		return nil, InstanceOutput{}, err
	}
	if err := s.persist(ctx); err != nil {
		return nil, InstanceOutput{}, err
	}
	return nil, instanceOutputFromNarrative(inst), nil
}

func (s *Server) handleMoveInstance(ctx context.Context, req *sdk.CallToolRequest, input MoveInstanceInput) (*sdk.CallToolResult, InstanceOutput, error) {
	if input.SceneID == "" || input.InstanceID == "" {
		return nil, InstanceOutput{}, fmt.Errorf("scene_id and instance_id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sceneID := narrative.SceneID(input.SceneID)
	id := narrative.InstanceID(input.InstanceID)
	if err := s.session.BeginDrag(sceneID, id); err != nil {
		return nil, InstanceOutput{}, err
	}
	s.session.DragTo(input.X, input.Y)
	s.session.EndDrag()

	inst, err := s.session.Project().Instance(sceneID, id)
	if err != nil {
		return nil, InstanceOutput{}, err
	}
	if err := s.persist(ctx); err != nil {
		return nil, InstanceOutput{}, err
	}
	return nil, instanceOutputFromNarrative(inst), nil
}

func (s *Server) handleListPresets(ctx context.Context, req *sdk.CallToolRequest, input ListPresetsInput) (*sdk.CallToolResult, ListPresetsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return nil, ListPresetsOutput{Presets: s.session.Presets().List()}, nil
}

func (s *Server) handlePlaythrough(ctx context.Context, req *sdk.CallToolRequest, input PlaythroughInput) (*sdk.CallToolResult, PlaythroughOutput, error) {
	maxSteps := input.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	s.mu.Lock()
	snapshot := s.session.Project().Clone()
	s.mu.Unlock()

	engine := playback.New(snapshot)
	if input.StartSceneID != "" {
		var err error
		engine, err = playback.NewAt(snapshot, narrative.SceneID(input.StartSceneID))
		if err != nil {
			return nil, PlaythroughOutput{}, err
		}
	}

	out := PlaythroughOutput{Steps: make([]StepOutput, 0)}
	choices := input.Choices
	for len(out.Steps) < maxSteps {
		view := engine.View()
		if view.State.Ended {
			out.Ended = true
			break
		}
		step := StepOutput{SceneID: string(view.State.Scene), Title: view.Title}
		if view.Dialogue != nil {
			step.Speaker = view.Dialogue.Speaker
			step.Text = view.Dialogue.Text
		}
		if !view.State.AwaitingChoice {
			out.Steps = append(out.Steps, step)
			engine.Advance()
			continue
		}

		for _, choice := range view.Choices {
			step.Choices = append(step.Choices, choiceOutputFromNarrative(choice))
		}
		if len(choices) == 0 {
			out.Steps = append(out.Steps, step)
			out.Waiting = true
			break
		}
		index := choices[0]
		choices = choices[1:]
		if err := engine.Choose(index); err != nil {
			return nil, PlaythroughOutput{}, err
		}
		step.Chosen = &index
		out.Steps = append(out.Steps, step)
	}
	return nil, out, nil
}

func (s *Server) handleExportStory(ctx context.Context, req *sdk.CallToolRequest, input ExportStoryInput) (*sdk.CallToolResult, ExportStoryOutput, error) {
	s.mu.Lock()
	snapshot := s.session.Project().Clone()
	s.mu.Unlock()

	doc, err := export.Export(ctx, snapshot, export.Options{
		Title:   input.Title,
		Version: s.version,
		Loader:  s.loader,
		Logger:  s.logger,
	})
	if err != nil {
		return nil, ExportStoryOutput{}, err
	}
	return nil, ExportStoryOutput{HTML: doc}, nil
}

func (s *Server) handleValidateProject(ctx context.Context, req *sdk.CallToolRequest, input ValidateProjectInput) (*sdk.CallToolResult, ValidateProjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := validate.Run(s.session.Project())
	if err != nil {
		return nil, ValidateProjectOutput{}, err
	}
	output := make([]IssueOutput, 0, len(report.Issues))
	for _, issue := range report.Issues {
		output = append(output, IssueOutput{
			Severity: string(issue.Severity),
			Code:     issue.Code,
			Message:  issue.Message,
			Route:    issue.Route,
			Scene:    issue.Scene,
		})
	}
	return nil, ValidateProjectOutput{Issues: output}, nil
}

func sceneOutputFromNarrative(scene *narrative.Scene) SceneOutput {
	out := SceneOutput{
		ID:         string(scene.ID),
		Title:      scene.Title,
		Route:      string(scene.Route),
		Background: scene.Background,
		Dialogues:  make([]DialogueOutput, 0, len(scene.Dialogues)),
		Choices:    make([]ChoiceOutput, 0, len(scene.Choices)),
		Instances:  make([]InstanceOutput, 0, len(scene.Instances)),
	}
	for _, line := range scene.Dialogues {
		out.Dialogues = append(out.Dialogues, dialogueOutputFromNarrative(line))
	}
	for _, choice := range scene.Choices {
		out.Choices = append(out.Choices, choiceOutputFromNarrative(choice))
	}
	for _, inst := range scene.Instances {
		out.Instances = append(out.Instances, instanceOutputFromNarrative(inst))
	}
	return out
}

func dialogueOutputFromNarrative(line narrative.DialogueLine) DialogueOutput {
	return DialogueOutput{ID: string(line.ID), Speaker: line.Speaker, Text: line.Text}
}

func choiceOutputFromNarrative(choice narrative.Choice) ChoiceOutput {
	return ChoiceOutput{
		ID:            string(choice.ID),
		Text:          choice.Text,
		Route:         choice.Route,
		TargetSceneID: string(choice.TargetSceneID),
	}
}

func instanceOutputFromNarrative(inst narrative.CharacterInstance) InstanceOutput {
	return InstanceOutput{
		ID:          string(inst.ID),
		DisplayName: inst.DisplayName,
		Archetype:   inst.CharacterData.Archetype,
		PosX:        inst.PosX,
		PosY:        inst.PosY,
		Scale:       inst.Scale,
	}
}
