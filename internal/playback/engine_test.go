package playback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnforge/internal/narrative"
)

// twoScenes returns a project with route Principal = [A, B] and empty scenes.
func twoScenes(t *testing.T) (*narrative.Project, narrative.SceneID, narrative.SceneID) {
	t.Helper()
	p := narrative.NewProject()
	a := p.Routes[0].Scenes[0]
	b, err := p.CreateScene(narrative.DefaultRoute)
	require.NoError(t, err)
	return p, a, b.ID
}

func TestLinearFallthrough(t *testing.T) {
	p, a, b := twoScenes(t)
	_, err := p.AddDialogue(a, "Ana", "Olá")
	require.NoError(t, err)

	e := New(p)
	view := e.View()
	require.NotNil(t, view.Dialogue)
	assert.Equal(t, "Olá", view.Dialogue.Text)
	assert.Equal(t, State{Route: narrative.DefaultRoute, Scene: a}, e.State())

	e.Advance()
	assert.Equal(t, State{Route: narrative.DefaultRoute, Scene: b}, e.State())
	assert.Nil(t, e.View().Dialogue)

	e.Advance()
	assert.True(t, e.State().Ended)

	e.Advance()
	assert.True(t, e.State().Ended)
	assert.Equal(t, b, e.State().Scene)
}

func TestMultipleDialogueLines(t *testing.T) {
	p, a, b := twoScenes(t)
	for _, text := range []string{"um", "dois", "três"} {
		_, err := p.AddDialogue(a, "", text)
		require.NoError(t, err)
	}

	e := New(p)
	var seen []string
	for e.State().Scene == a {
		seen = append(seen, e.View().Dialogue.Text)
		e.Advance()
	}
	assert.Equal(t, []string{"um", "dois", "três"}, seen)
	assert.Equal(t, b, e.State().Scene)
	assert.Equal(t, 0, e.State().DialogueIndex)
}

func TestChoiceShownImmediately(t *testing.T) {
	p, a, b := twoScenes(t)
	_, err := p.AddChoice(a, "Ir", "", b)
	require.NoError(t, err)
	_, err = p.AddDialogue(b, "", "chegou")
	require.NoError(t, err)

	e := New(p)
	view := e.View()
	assert.True(t, view.State.AwaitingChoice)
	assert.Nil(t, view.Dialogue)
	require.Len(t, view.Choices, 1)
	assert.Equal(t, "Ir", view.Choices[0].Text)

	e.Advance()
	assert.Equal(t, a, e.State().Scene, "advance is blocked while a choice is pending")

	require.NoError(t, e.Choose(0))
	assert.Equal(t, State{Route: narrative.DefaultRoute, Scene: b}, e.State())
	assert.Equal(t, "chegou", e.View().Dialogue.Text)
}

func TestChoiceAfterDialogue(t *testing.T) {
	p, a, b := twoScenes(t)
	_, err := p.AddDialogue(a, "", "antes")
	require.NoError(t, err)
	_, err = p.AddChoice(a, "Ir", "", b)
	require.NoError(t, err)

	e := New(p)
	assert.False(t, e.State().AwaitingChoice)
	e.Advance()
	assert.True(t, e.State().AwaitingChoice)
	assert.Equal(t, 1, e.State().DialogueIndex)
}

func TestChoiceWithoutTargetEndsRoute(t *testing.T) {
	p, a, _ := twoScenes(t)
	_, err := p.AddDialogue(a, "", "fim?")
	require.NoError(t, err)
	_, err = p.AddChoice(a, "Sair", "", "")
	require.NoError(t, err)

	e := New(p)
	e.Advance()
	require.NoError(t, e.Choose(0))
	assert.True(t, e.State().Ended)
	assert.False(t, e.State().AwaitingChoice)

	e.Restart()
	assert.Equal(t, State{Route: narrative.DefaultRoute, Scene: a}, e.State())
}

func TestChoiceToDeletedSceneEndsRoute(t *testing.T) {
	p, a, b := twoScenes(t)
	_, err := p.AddChoice(a, "Ir", "", b)
	require.NoError(t, err)
	require.NoError(t, p.DeleteScene(b))

	e := New(p)
	require.NoError(t, e.Choose(0))
	assert.True(t, e.State().Ended)
}

func TestChooseRejectsInvalidInput(t *testing.T) {
	p, a, b := twoScenes(t)
	_, err := p.AddDialogue(a, "", "linha")
	require.NoError(t, err)
	_, err = p.AddChoice(a, "Ir", "", b)
	require.NoError(t, err)

	e := New(p)
	before := e.State()
	err = e.Choose(0)
	assert.True(t, errors.Is(err, ErrInvalidChoice))
	assert.Equal(t, before, e.State())

	e.Advance()
	before = e.State()
	for _, index := range []int{-1, 1, 5} {
		err = e.Choose(index)
		assert.True(t, errors.Is(err, ErrInvalidChoice), "index %d", index)
		assert.Equal(t, before, e.State())
	}
}

func TestChoiceJumpsAcrossRoutes(t *testing.T) {
	p, a, _ := twoScenes(t)
	other, err := p.CreateScene("Segredo")
	require.NoError(t, err)
	_, err = p.AddChoice(a, "Segredo", "Principal", other.ID)
	require.NoError(t, err)
	_, err = p.AddDialogue(other.ID, "", "escondido")
	require.NoError(t, err)

	e := New(p)
	require.NoError(t, e.Choose(0))
	assert.Equal(t, narrative.RouteName("Segredo"), e.State().Route, "route follows the target scene, not the label")

	e.Advance()
	assert.True(t, e.State().Ended)
}

func TestCyclesNeedExplicitSteps(t *testing.T) {
	p, a, _ := twoScenes(t)
	_, err := p.AddDialogue(a, "", "de novo")
	require.NoError(t, err)
	_, err = p.AddChoice(a, "Repetir", "", a)
	require.NoError(t, err)

	e := New(p)
	for i := 0; i < 3; i++ {
		e.Advance()
		require.True(t, e.State().AwaitingChoice)
		require.NoError(t, e.Choose(0))
		assert.Equal(t, State{Route: narrative.DefaultRoute, Scene: a}, e.State())
	}
}

func TestEmptyScenesFallThrough(t *testing.T) {
	p, a, b := twoScenes(t)
	c, err := p.CreateScene(narrative.DefaultRoute)
	require.NoError(t, err)
	_, err = p.AddDialogue(c.ID, "", "depois")
	require.NoError(t, err)

	e := New(p)
	assert.Equal(t, c.ID, e.State().Scene, "blank scenes %s and %s are skipped", a, b)
	assert.Equal(t, "depois", e.View().Dialogue.Text)
}

func TestNewAt(t *testing.T) {
	p, a, b := twoScenes(t)
	_, err := p.AddDialogue(b, "", "aqui")
	require.NoError(t, err)

	e, err := NewAt(p, b)
	require.NoError(t, err)
	assert.Equal(t, b, e.State().Scene)

	e.Restart()
	assert.Equal(t, b, e.State().Scene, "blank start scene %s falls through", a)

	_, err = NewAt(p, "missing")
	assert.Error(t, err)
}

func TestEmptyProjectIsEnded(t *testing.T) {
	p := &narrative.Project{Scenes: map[narrative.SceneID]*narrative.Scene{}}
	e := New(p)
	assert.True(t, e.State().Ended)
	e.Advance()
	assert.Error(t, e.Choose(0))
	assert.Equal(t, View{State: State{Ended: true}}, e.View())
}

func TestViewCarriesSceneContent(t *testing.T) {
	p, a, _ := twoScenes(t)
	require.NoError(t, p.SetBackground(a, "bg/rua.png"))
	require.NoError(t, p.RenameScene(a, "Rua"))
	_, err := p.AddDialogue(a, "Ana", "oi")
	require.NoError(t, err)

	view := New(p).View()
	assert.Equal(t, "Rua", view.Title)
	assert.Equal(t, "bg/rua.png", view.Background)
	assert.Equal(t, "Ana", view.Dialogue.Speaker)
	assert.Nil(t, view.Choices)
}
