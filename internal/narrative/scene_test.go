package narrative

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnforge/internal/character"
	"vnforge/internal/errs"
)

func TestDialogueOperations(t *testing.T) {
	p := NewProject()
	id := p.Routes[0].Scenes[0]

	first, err := p.AddDialogue(id, "Ana", "Oi")
	require.NoError(t, err)
	second, err := p.AddDialogue(id, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	require.NoError(t, p.UpdateDialogue(id, second.ID, "Bia", "Tchau"))
	scene, _ := p.Scene(id)
	assert.Equal(t, []DialogueLine{first, {ID: second.ID, Speaker: "Bia", Text: "Tchau"}}, scene.Dialogues)

	require.NoError(t, p.RemoveDialogue(id, first.ID))
	require.NoError(t, p.RemoveDialogue(id, "missing"))
	assert.Len(t, scene.Dialogues, 1)

	err = p.UpdateDialogue(id, "missing", "", "")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	_, err = p.AddDialogue("missing", "", "")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestChoiceOperations(t *testing.T) {
	p := NewProject()
	id := p.Routes[0].Scenes[0]
	target, err := p.CreateScene("Alt")
	require.NoError(t, err)

	linked, err := p.AddChoice(id, "Ir", "", target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alt", linked.Route)

	ending, err := p.AddChoice(id, "Fim", "anything", "")
	require.NoError(t, err)
	assert.Equal(t, "anything", ending.Route)
	assert.Empty(t, ending.TargetSceneID)

	_, err = p.AddChoice(id, "Nope", "", "missing")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	require.NoError(t, p.UpdateChoice(id, ending.ID, "Voltar", "", id))
	scene, _ := p.Scene(id)
	require.Len(t, scene.Choices, 2)
	assert.Equal(t, string(DefaultRoute), scene.Choices[1].Route)
	assert.Equal(t, id, scene.Choices[1].TargetSceneID)

	err = p.UpdateChoice(id, "missing", "", "", "")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	require.NoError(t, p.RemoveChoice(id, linked.ID))
	require.NoError(t, p.RemoveChoice(id, "missing"))
	assert.Len(t, scene.Choices, 1)
}

func TestInstanceOperations(t *testing.T) {
	p := NewProject()
	id := p.Routes[0].Scenes[0]
	spec := character.Spec{Archetype: "male", Selections: map[character.Category]string{character.CategoryBase: "b.png"}}

	inst, err := p.AddInstance(id, "Leo", spec, "img-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultPosX, inst.PosX)
	assert.Equal(t, DefaultPosY, inst.PosY)
	assert.Equal(t, DefaultScale, inst.Scale)

	spec.Selections[character.CategoryBase] = "changed.png"
	got, err := p.Instance(id, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.png", got.CharacterData.Selections[character.CategoryBase])

	require.NoError(t, p.RepositionInstance(id, inst.ID, 0.25, 1.2))
	require.NoError(t, p.RescaleInstance(id, inst.ID, 1.6))
	got, _ = p.Instance(id, inst.ID)
	assert.Equal(t, 0.25, got.PosX)
	assert.Equal(t, 1.2, got.PosY)
	assert.Equal(t, 1.6, got.Scale)

	require.NoError(t, p.UpdateInstance(id, inst.ID, spec, "img-2"))
	got, _ = p.Instance(id, inst.ID)
	assert.Equal(t, "img-2", got.RenderedImage)
	assert.Equal(t, "changed.png", got.CharacterData.Selections[character.CategoryBase])

	err = p.RepositionInstance(id, "missing", 0, 0)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	err = p.RescaleInstance("missing", inst.ID, 1)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	require.NoError(t, p.RemoveInstance(id, inst.ID))
	_, err = p.Instance(id, inst.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestSceneFieldOperations(t *testing.T) {
	p := NewProject()
	id := p.Routes[0].Scenes[0]

	require.NoError(t, p.RenameScene(id, "Abertura"))
	require.NoError(t, p.SetBackground(id, " bg/sky.png "))
	scene, _ := p.Scene(id)
	assert.Equal(t, "Abertura", scene.Title)
	assert.Equal(t, "bg/sky.png", scene.Background)

	require.NoError(t, p.SetBackground(id, ""))
	assert.Empty(t, scene.Background)

	assert.True(t, errors.Is(p.RenameScene("missing", "x"), errs.ErrNotFound))
	assert.True(t, errors.Is(p.SetBackground("missing", "x"), errs.ErrNotFound))
}
