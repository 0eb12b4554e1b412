package narrative

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnforge/internal/character"
	"vnforge/internal/errs"
)

func TestNewProject(t *testing.T) {
	p := NewProject()

	require.Len(t, p.Routes, 1)
	assert.Equal(t, DefaultRoute, p.Routes[0].Name)
	require.Len(t, p.Routes[0].Scenes, 1)
	require.Len(t, p.Scenes, 1)

	scene, err := p.Scene(p.Routes[0].Scenes[0])
	require.NoError(t, err)
	assert.Equal(t, "Cena 1", scene.Title)
	assert.Equal(t, DefaultRoute, scene.Route)
	assert.NoError(t, p.Check())
}

func TestCreateRoute(t *testing.T) {
	p := NewProject()

	require.NoError(t, p.CreateRoute("Bad End"))
	route, ok := p.Route("Bad End")
	require.True(t, ok)
	assert.Empty(t, route.Scenes)

	err := p.CreateRoute("Bad End")
	assert.True(t, errors.Is(err, errs.ErrDuplicateRoute))

	err = p.CreateRoute("  ")
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Equal(t, []RouteName{DefaultRoute, "Bad End"}, p.RouteNames())
}

func TestCreateScene(t *testing.T) {
	p := NewProject()

	second, err := p.CreateScene(DefaultRoute)
	require.NoError(t, err)
	assert.Equal(t, "Cena 2", second.Title)

	other, err := p.CreateScene("Secret")
	require.NoError(t, err)
	assert.Equal(t, "Cena 1", other.Title)
	assert.Equal(t, RouteName("Secret"), other.Route)

	route, ok := p.Route("Secret")
	require.True(t, ok)
	assert.Equal(t, []SceneID{other.ID}, route.Scenes)

	_, err = p.CreateScene("")
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.NoError(t, p.Check())
}

func TestMoveScene(t *testing.T) {
	p := NewProject()
	first := p.Routes[0].Scenes[0]
	second, err := p.CreateScene(DefaultRoute)
	require.NoError(t, err)

	require.NoError(t, p.MoveScene(first, "Alt"))

	main, _ := p.Route(DefaultRoute)
	alt, ok := p.Route("Alt")
	require.True(t, ok)
	assert.Equal(t, []SceneID{second.ID}, main.Scenes)
	assert.Equal(t, []SceneID{first}, alt.Scenes)
	scene, _ := p.Scene(first)
	assert.Equal(t, RouteName("Alt"), scene.Route)
	assert.NoError(t, p.Check())
}

func TestMoveSceneIsIdempotent(t *testing.T) {
	p := NewProject()
	id := p.Routes[0].Scenes[0]
	require.NoError(t, p.CreateRoute("Target"))

	require.NoError(t, p.MoveScene(id, "Target"))
	once := p.Clone()
	require.NoError(t, p.MoveScene(id, "Target"))

	assert.Equal(t, once, p)
	target, _ := p.Route("Target")
	assert.Equal(t, []SceneID{id}, target.Scenes)
	main, _ := p.Route(DefaultRoute)
	assert.Empty(t, main.Scenes)
	assert.NoError(t, p.Check())
}

func TestMoveSceneErrors(t *testing.T) {
	p := NewProject()
	before := p.Clone()

	err := p.MoveScene("missing", "Alt")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	err = p.MoveScene(p.Routes[0].Scenes[0], "")
	assert.True(t, errors.Is(err, errs.ErrValidation))

	assert.Equal(t, before, p)
}

func TestDeleteScene(t *testing.T) {
	p := NewProject()
	first := p.Routes[0].Scenes[0]
	second, err := p.CreateScene(DefaultRoute)
	require.NoError(t, err)
	_, err = p.AddChoice(first, "go", "", second.ID)
	require.NoError(t, err)

	require.NoError(t, p.DeleteScene(second.ID))
	_, err = p.Scene(second.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	main, _ := p.Route(DefaultRoute)
	assert.Equal(t, []SceneID{first}, main.Scenes)
	assert.NoError(t, p.Check())

	err = p.DeleteScene(second.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestNextSceneID(t *testing.T) {
	p := NewProject()
	first := p.Routes[0].Scenes[0]
	second, err := p.CreateScene(DefaultRoute)
	require.NoError(t, err)

	next, ok := p.NextSceneID(DefaultRoute, first)
	require.True(t, ok)
	assert.Equal(t, second.ID, next)

	_, ok = p.NextSceneID(DefaultRoute, second.ID)
	assert.False(t, ok)
	_, ok = p.NextSceneID("nowhere", first)
	assert.False(t, ok)
}

func TestFirstScene(t *testing.T) {
	p := NewProject()
	route, scene, ok := p.FirstScene()
	require.True(t, ok)
	assert.Equal(t, DefaultRoute, route)
	assert.Equal(t, p.Routes[0].Scenes[0], scene)

	empty := &Project{Scenes: map[SceneID]*Scene{}}
	_, _, ok = empty.FirstScene()
	assert.False(t, ok)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := NewProject()
	first := p.Routes[0].Scenes[0]
	second, err := p.CreateScene("Alt")
	require.NoError(t, err)
	require.NoError(t, p.SetBackground(first, "bg/park.png"))
	_, err = p.AddDialogue(first, "Ana", "Oi!")
	require.NoError(t, err)
	_, err = p.AddChoice(first, "Seguir", "", second.ID)
	require.NoError(t, err)
	_, err = p.AddInstance(first, "Ana", character.Spec{Archetype: "female", Selections: map[character.Category]string{character.CategoryBase: "b.png"}}, "data:image/png;base64,AA==")
	require.NoError(t, err)

	data, err := p.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, p, decoded)
}

func TestDecodeRejectsCorruptData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{"},
		{name: "unknown scene", data: `{"routes":[{"name":"Principal","scenes":["a"]}],"scenes":{}}`},
		{name: "route mismatch", data: `{"routes":[{"name":"Principal","scenes":["a"]}],"scenes":{"a":{"id":"a","route":"Other"}}}`},
		{name: "orphan scene", data: `{"routes":[{"name":"Principal","scenes":[]}],"scenes":{"a":{"id":"a","route":"Principal"}}}`},
		{name: "duplicate route", data: `{"routes":[{"name":"R","scenes":[]},{"name":"R","scenes":[]}],"scenes":{}}`},
		{name: "scene in two routes", data: `{"routes":[{"name":"R","scenes":["a"]},{"name":"S","scenes":["a"]}],"scenes":{"a":{"id":"a","route":"R"}}}`},
		{name: "key mismatch", data: `{"routes":[{"name":"R","scenes":["a"]}],"scenes":{"a":{"id":"b","route":"R"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.True(t, errors.Is(err, errs.ErrCorruptState), "got %v", err)
		})
	}
}

func TestDecodeNormalizesMissingCollections(t *testing.T) {
	p, err := Decode([]byte(`{"routes":[{"name":"R","scenes":["a"]}],"scenes":{"a":{"id":"a","route":"R"}}}`))
	require.NoError(t, err)
	scene, err := p.Scene("a")
	require.NoError(t, err)
	assert.NotNil(t, scene.Dialogues)
	assert.NotNil(t, scene.Choices)
	assert.NotNil(t, scene.Instances)
}

func TestCloneIsDeep(t *testing.T) {
	p := NewProject()
	id := p.Routes[0].Scenes[0]
	inst, err := p.AddInstance(id, "Ana", character.Spec{Archetype: "female", Selections: map[character.Category]string{character.CategoryBase: "b.png"}}, "img")
	require.NoError(t, err)

	clone := p.Clone()
	require.NoError(t, clone.RenameScene(id, "changed"))
	clone.Scenes[id].Instances[0].CharacterData.Selections[character.CategoryBase] = "other.png"
	clone.Routes[0].Scenes = append(clone.Routes[0].Scenes, "x")

	scene, _ := p.Scene(id)
	assert.Equal(t, "Cena 1", scene.Title)
	got, err := p.Instance(id, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.png", got.CharacterData.Selections[character.CategoryBase])
	assert.Len(t, p.Routes[0].Scenes, 1)
}
