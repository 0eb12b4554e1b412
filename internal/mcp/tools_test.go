package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vnforge/internal/character"
	"vnforge/internal/editor"
	"vnforge/internal/narrative"
	"vnforge/internal/preset"
)

type mockProjectStore struct {
	saved   []byte
	saves   int
	saveErr error
}

func (m *mockProjectStore) LoadProject(ctx context.Context) ([]byte, error) {
	return m.saved, nil
}

func (m *mockProjectStore) SaveProject(ctx context.Context, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.saved = data
	return nil
}

type stubRenderer struct{}

func (stubRenderer) RenderDataURI(ctx context.Context, spec character.Spec) (string, error) {
	return "data:image/png;base64,AA==", nil
}

func newTestServer(t *testing.T, st editor.ProjectStore) (*Server, narrative.SceneID) {
	t.Helper()
	session := editor.NewSession(narrative.NewProject(), editor.Options{
		Presets:  preset.NewMemory(),
		Renderer: stubRenderer{},
	})
	server := NewServer(session, Options{Version: "test", Store: st})
	return server, session.CurrentScene()
}

func TestListRoutes(t *testing.T) {
	server, first := newTestServer(t, nil)

	_, output, err := server.handleListRoutes(context.Background(), nil, ListRoutesInput{})
	if err != nil {
		t.Fatalf("list routes: %v", err)
	}
	if len(output.Routes) != 1 || output.Routes[0].Name != string(narrative.DefaultRoute) {
		t.Fatalf("unexpected routes: %+v", output.Routes)
	}
	scenes := output.Routes[0].Scenes
	if len(scenes) != 1 || scenes[0].ID != string(first) || scenes[0].Title != "Cena 1" {
		t.Fatalf("unexpected scenes: %+v", scenes)
	}
}

func TestGetScene_NotFound(t *testing.T) {
	server, _ := newTestServer(t, nil)

	_, _, err := server.handleGetScene(context.Background(), nil, GetSceneInput{SceneID: "missing"})
	if err == nil {
		t.Fatalf("expected error")
	}
	_, _, err = server.handleGetScene(context.Background(), nil, GetSceneInput{})
	if err == nil {
		t.Fatalf("expected error for empty scene id")
	}
}

func TestCreateSceneAndDialoguePersist(t *testing.T) {
	st := &mockProjectStore{}
	server, _ := newTestServer(t, st)
	ctx := context.Background()

	_, scene, err := server.handleCreateScene(ctx, nil, CreateSceneInput{Route: " Segredo "})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}
	if scene.Route != "Segredo" || scene.Title != "Cena 1" {
		t.Fatalf("unexpected scene: %+v", scene)
	}

	_, line, err := server.handleAddDialogue(ctx, nil, AddDialogueInput{SceneID: scene.ID, Speaker: "Ana", Text: "Oi"})
	if err != nil {
		t.Fatalf("add dialogue: %v", err)
	}
	if line.ID == "" || line.Text != "Oi" {
		t.Fatalf("unexpected dialogue: %+v", line)
	}
	if st.saves != 2 {
		t.Fatalf("expected 2 saves, got %d", st.saves)
	}

	stored, err := narrative.Decode(st.saved)
	if err != nil {
		t.Fatalf("decode saved project: %v", err)
	}
	got, err := stored.Scene(narrative.SceneID(scene.ID))
	if err != nil {
		t.Fatalf("saved scene: %v", err)
	}
	if len(got.Dialogues) != 1 || got.Dialogues[0].Speaker != "Ana" {
		t.Fatalf("unexpected saved dialogues: %+v", got.Dialogues)
	}
}

func TestPersistFailureIsReported(t *testing.T) {
	st := &mockProjectStore{saveErr: errors.New("disk full")}
	server, first := newTestServer(t, st)

	_, _, err := server.handleAddDialogue(context.Background(), nil, AddDialogueInput{SceneID: string(first), Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected save error, got %v", err)
	}
}

func TestAddChoice(t *testing.T) {
	server, first := newTestServer(t, nil)
	ctx := context.Background()

	_, target, err := server.handleCreateScene(ctx, nil, CreateSceneInput{Route: "Alt"})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}
	_, choice, err := server.handleAddChoice(ctx, nil, AddChoiceInput{SceneID: string(first), Text: "Ir", TargetSceneID: target.ID})
	if err != nil {
		t.Fatalf("add choice: %v", err)
	}
	if choice.Route != "Alt" || choice.TargetSceneID != target.ID {
		t.Fatalf("unexpected choice: %+v", choice)
	}

	_, _, err = server.handleAddChoice(ctx, nil, AddChoiceInput{SceneID: string(first), Text: "Nope", TargetSceneID: "missing"})
	if err == nil {
		t.Fatalf("expected error for missing target")
	}
}

func TestAttachAndMoveInstance(t *testing.T) {
	server, first := newTestServer(t, nil)
	ctx := context.Background()
	spec := character.Spec{Archetype: "female", Selections: map[character.Category]string{character.CategoryBase: "base1.png"}}
	if err := server.session.SavePreset(ctx, "Ana", spec); err != nil {
		t.Fatalf("save preset: %v", err)
	}

	_, presets, err := server.handleListPresets(ctx, nil, ListPresetsInput{})
	if err != nil {
		t.Fatalf("list presets: %v", err)
	}
	if len(presets.Presets) != 1 || presets.Presets[0] != "Ana" {
		t.Fatalf("unexpected presets: %+v", presets.Presets)
	}

	_, inst, err := server.handleAttachInstance(ctx, nil, AttachInstanceInput{SceneID: string(first), Preset: "Ana"})
	if err != nil {
		t.Fatalf("attach instance: %v", err)
	}
	if inst.DisplayName != "Ana" || inst.PosX != narrative.DefaultPosX {
		t.Fatalf("unexpected instance: %+v", inst)
	}

	_, moved, err := server.handleMoveInstance(ctx, nil, MoveInstanceInput{SceneID: string(first), InstanceID: inst.ID, X: 2, Y: 0.3})
	if err != nil {
		t.Fatalf("move instance: %v", err)
	}
	if moved.PosX != editor.MaxPosX || moved.PosY != 0.3 {
		t.Fatalf("expected clamped position, got %+v", moved)
	}
	if server.session.Dragging() {
		t.Fatalf("drag should have ended")
	}

	_, _, err = server.handleAttachInstance(ctx, nil, AttachInstanceInput{SceneID: string(first), Preset: "Nobody"})
	if err == nil {
		t.Fatalf("expected error for unknown preset")
	}
}

func TestPlaythrough(t *testing.T) {
	server, first := newTestServer(t, nil)
	ctx := context.Background()
	p := server.session.Project()
	second, err := p.CreateScene(narrative.DefaultRoute)
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}
	if _, err := p.AddDialogue(first, "Ana", "Oi"); err != nil {
		t.Fatalf("add dialogue: %v", err)
	}
	if _, err := p.AddChoice(first, "Seguir", "", second.ID); err != nil {
		t.Fatalf("add choice: %v", err)
	}
	if _, err := p.AddDialogue(second.ID, "", "Fim"); err != nil {
		t.Fatalf("add dialogue: %v", err)
	}

	_, waiting, err := server.handlePlaythrough(ctx, nil, PlaythroughInput{})
	if err != nil {
		t.Fatalf("playthrough: %v", err)
	}
	if !waiting.Waiting || waiting.Ended || len(waiting.Steps) != 2 {
		t.Fatalf("expected to stop at the choice, got %+v", waiting)
	}
	if len(waiting.Steps[1].Choices) != 1 || waiting.Steps[1].Choices[0].Text != "Seguir" {
		t.Fatalf("unexpected choices: %+v", waiting.Steps[1])
	}

	_, done, err := server.handlePlaythrough(ctx, nil, PlaythroughInput{Choices: []int{0}})
	if err != nil {
		t.Fatalf("playthrough: %v", err)
	}
	if !done.Ended || len(done.Steps) != 3 {
		t.Fatalf("expected ended walk with 3 steps, got %+v", done)
	}
	if done.Steps[0].Text != "Oi" || done.Steps[2].Text != "Fim" {
		t.Fatalf("unexpected transcript: %+v", done.Steps)
	}
	if done.Steps[1].Chosen == nil || *done.Steps[1].Chosen != 0 {
		t.Fatalf("expected recorded choice, got %+v", done.Steps[1])
	}

	_, _, err = server.handlePlaythrough(ctx, nil, PlaythroughInput{Choices: []int{4}})
	if err == nil {
		t.Fatalf("expected error for invalid choice index")
	}
}

func TestPlaythroughStopsAtStepLimit(t *testing.T) {
	server, first := newTestServer(t, nil)
	p := server.session.Project()
	if _, err := p.AddDialogue(first, "", "de novo"); err != nil {
		t.Fatalf("add dialogue: %v", err)
	}
	if _, err := p.AddChoice(first, "Repetir", "", first); err != nil {
		t.Fatalf("add choice: %v", err)
	}

	_, output, err := server.handlePlaythrough(context.Background(), nil, PlaythroughInput{Choices: []int{0, 0, 0, 0, 0}, MaxSteps: 4})
	if err != nil {
		t.Fatalf("playthrough: %v", err)
	}
	if len(output.Steps) != 4 || output.Ended {
		t.Fatalf("expected 4 steps without ending, got %+v", output)
	}
}

func TestExportStory(t *testing.T) {
	server, first := newTestServer(t, nil)
	if _, err := server.session.Project().AddDialogue(first, "Ana", "Oi"); err != nil {
		t.Fatalf("add dialogue: %v", err)
	}

	_, output, err := server.handleExportStory(context.Background(), nil, ExportStoryInput{Title: "Minha história"})
	if err != nil {
		t.Fatalf("export story: %v", err)
	}
	if !strings.Contains(output.HTML, "<title>Minha história</title>") {
		t.Fatalf("missing title in export")
	}
	if !strings.Contains(output.HTML, `"text":"Oi"`) {
		t.Fatalf("missing dialogue in export")
	}
}

func TestValidateProject(t *testing.T) {
	server, first := newTestServer(t, nil)
	ctx := context.Background()
	if _, err := server.session.Project().AddChoice(first, "Fim", "Nowhere", ""); err != nil {
		t.Fatalf("add choice: %v", err)
	}
	if err := server.session.Project().CreateRoute("Vazia"); err != nil {
		t.Fatalf("create route: %v", err)
	}

	_, output, err := server.handleValidateProject(ctx, nil, ValidateProjectInput{})
	if err != nil {
		t.Fatalf("validate project: %v", err)
	}
	codes := map[string]bool{}
	for _, issue := range output.Issues {
		if issue.Severity != "warning" {
			t.Fatalf("expected only warnings, got %+v", issue)
		}
		codes[issue.Code] = true
	}
	if !codes["empty_route"] {
		t.Fatalf("expected empty_route warning, got %+v", output.Issues)
	}
}
