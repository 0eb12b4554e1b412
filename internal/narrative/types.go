package narrative

import (
	"github.com/google/uuid"

	"vnforge/internal/character"
)

type (
	RouteName  string
	SceneID    string
	DialogueID string
	ChoiceID   string
	InstanceID string
)

// DefaultRoute is the route every new project starts with.
const DefaultRoute RouteName = "Principal"

const (
	DefaultPosX  = 0.5
	DefaultPosY  = 1.0
	DefaultScale = 1.0
)

var newID = uuid.NewString

// Route is a named, ordered path through scenes.
type Route struct {
	Name   RouteName `json:"name"`
	Scenes []SceneID `json:"scenes"`
}

// Project owns every scene. Routes keep insertion order; the first route's
// first scene is where playback starts.
type Project struct {
	Routes []Route            `json:"routes"`
	Scenes map[SceneID]*Scene `json:"scenes"`
}

type Scene struct {
	ID         SceneID             `json:"id"`
	Title      string              `json:"title"`
	Route      RouteName           `json:"route"`
	Background string              `json:"background,omitempty"`
	Dialogues  []DialogueLine      `json:"dialogues"`
	Choices    []Choice            `json:"choices"`
	Instances  []CharacterInstance `json:"instances"`
}

type DialogueLine struct {
	ID      DialogueID `json:"id"`
	Speaker string     `json:"speaker"`
	Text    string     `json:"text"`
}

// Choice links a scene to a target scene. Route is a free-form label; only
// TargetSceneID drives navigation. An empty target ends the route.
type Choice struct {
	ID            ChoiceID `json:"id"`
	Text          string   `json:"text"`
	Route         string   `json:"route"`
	TargetSceneID SceneID  `json:"targetSceneId,omitempty"`
}

// CharacterInstance is a placed copy of a character. CharacterData is owned
// by the instance and RenderedImage is computed when the instance is attached
// or edited, never at playback time.
type CharacterInstance struct {
	ID            InstanceID     `json:"id"`
	DisplayName   string         `json:"displayName"`
	CharacterData character.Spec `json:"characterData"`
	RenderedImage string         `json:"renderedImage"`
	PosX          float64        `json:"posX"`
	PosY          float64        `json:"posY"`
	Scale         float64        `json:"scale"`
}

func (s *Scene) clone() *Scene {
	out := &Scene{
		ID:         s.ID,
		Title:      s.Title,
		Route:      s.Route,
		Background: s.Background,
		Dialogues:  append([]DialogueLine{}, s.Dialogues...),
		Choices:    append([]Choice{}, s.Choices...),
		Instances:  make([]CharacterInstance, len(s.Instances)),
	}
	for i, inst := range s.Instances {
		inst.CharacterData = inst.CharacterData.Clone()
		out.Instances[i] = inst
	}
	return out
}
