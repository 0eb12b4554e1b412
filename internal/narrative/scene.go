package narrative

import (
	"fmt"
	"strings"

	"vnforge/internal/character"
	"vnforge/internal/errs"
)

func (p *Project) AddDialogue(sceneID SceneID, speaker, text string) (DialogueLine, error) {
	scene, err := p.Scene(sceneID)
	if err != nil {
		return DialogueLine{}, err
	}
	line := DialogueLine{ID: DialogueID(newID()), Speaker: speaker, Text: text}
	scene.Dialogues = append(scene.Dialogues, line)
	return line, nil
}

func (p *Project) UpdateDialogue(sceneID SceneID, id DialogueID, speaker, text string) error {
	scene, err := p.Scene(sceneID)
	if err != nil {
		return err
	}
	for i := range scene.Dialogues {
		if scene.Dialogues[i].ID == id {
			scene.Dialogues[i].Speaker = speaker
			scene.Dialogues[i].Text = text
			return nil
		}
	}
	return fmt.Errorf("%w: dialogue %q in scene %q", errs.ErrNotFound, id, sceneID)
}

// RemoveDialogue filters the line out of the scene; an unknown id is a no-op.
func (p *Project) RemoveDialogue(sceneID SceneID, id DialogueID) error {
	scene, err := p.Scene(sceneID)
	if err != nil {
		return err
	}
	kept := make([]DialogueLine, 0, len(scene.Dialogues))
	for _, line := range scene.Dialogues {
		if line.ID != id {
			kept = append(kept, line)
		}
	}
	scene.Dialogues = kept
	return nil
}

// AddChoice appends a choice. A non-empty target must exist. When label is
// empty it defaults to the target's route name.
func (p *Project) AddChoice(sceneID SceneID, text, label string, target SceneID) (Choice, error) {
	scene, err := p.Scene(sceneID)
	if err != nil {
		return Choice{}, err
	}
	label, err = p.choiceLabel(label, target)
	if err != nil {
		return Choice{}, err
	}
	choice := Choice{ID: ChoiceID(newID()), Text: text, Route: label, TargetSceneID: target}
	scene.Choices = append(scene.Choices, choice)
	return choice, nil
}

func (p *Project) UpdateChoice(sceneID SceneID, id ChoiceID, text, label string, target SceneID) error {
	scene, err := p.Scene(sceneID)
	if err != nil {
		return err
	}
	for i := range scene.Choices {
		if scene.Choices[i].ID != id {
			continue
		}
		resolved, err := p.choiceLabel(label, target)
		if err != nil {
			return err
		}
		scene.Choices[i].Text = text
		scene.Choices[i].Route = resolved
		scene.Choices[i].TargetSceneID = target
		return nil
	}
	return fmt.Errorf("%w: choice %q in scene %q", errs.ErrNotFound, id, sceneID)
}

// RemoveChoice filters the choice out of the scene; an unknown id is a no-op.
func (p *Project) RemoveChoice(sceneID SceneID, id ChoiceID) error {
	scene, err := p.Scene(sceneID)
	if err != nil {
		return err
	}
	kept := make([]Choice, 0, len(scene.Choices))
	for _, choice := range scene.Choices {
		if choice.ID != id {
			kept = append(kept, choice)
		}
	}
	scene.Choices = kept
	return nil
}

func (p *Project) choiceLabel(label string, target SceneID) (string, error) {
	label = strings.TrimSpace(label)
	if target == "" {
		return label, nil
	}
	targetScene, err := p.Scene(target)
	if err != nil {
		return "", fmt.Errorf("choice target: %w", err)
	}
	if label == "" {
		label = string(targetScene.Route)
	}
	return label, nil
}

// AddInstance places a character in a scene at the default position. The
// spec is cloned so the instance never aliases the caller's value.
func (p *Project) AddInstance(sceneID SceneID, displayName string, spec character.Spec, renderedImage string) (CharacterInstance, error) {
	scene, err := p.Scene(sceneID)
	if err != nil {
		return CharacterInstance{}, err
	}
	inst := CharacterInstance{
		ID:            InstanceID(newID()),
		DisplayName:   displayName,
		CharacterData: spec.Clone(),
		RenderedImage: renderedImage,
		PosX:          DefaultPosX,
		PosY:          DefaultPosY,
		Scale:         DefaultScale,
	}
	scene.Instances = append(scene.Instances, inst)
	return inst, nil
}

// Instance returns a copy of the instance.
func (p *Project) Instance(sceneID SceneID, id InstanceID) (CharacterInstance, error) {
	inst, err := p.instance(sceneID, id)
	if err != nil {
		return CharacterInstance{}, err
	}
	out := *inst
	out.CharacterData = inst.CharacterData.Clone()
	return out, nil
}

// UpdateInstance replaces the appearance of a placed instance together with
// its freshly rendered image.
func (p *Project) UpdateInstance(sceneID SceneID, id InstanceID, spec character.Spec, renderedImage string) error {
	inst, err := p.instance(sceneID, id)
	if err != nil {
		return err
	}
	inst.CharacterData = spec.Clone()
	inst.RenderedImage = renderedImage
	return nil
}

func (p *Project) RemoveInstance(sceneID SceneID, id InstanceID) error {
	scene, err := p.Scene(sceneID)
	if err != nil {
		return err
	}
	kept := make([]CharacterInstance, 0, len(scene.Instances))
	for _, inst := range scene.Instances {
		if inst.ID != id {
			kept = append(kept, inst)
		}
	}
	scene.Instances = kept
	return nil
}

// RepositionInstance sets normalized stage coordinates. Range hints
// (x in [0,1], y in [0,1.2]) belong to the editor surface.
func (p *Project) RepositionInstance(sceneID SceneID, id InstanceID, x, y float64) error {
	inst, err := p.instance(sceneID, id)
	if err != nil {
		return err
	}
	inst.PosX = x
	inst.PosY = y
	return nil
}

func (p *Project) RescaleInstance(sceneID SceneID, id InstanceID, scale float64) error {
	inst, err := p.instance(sceneID, id)
	if err != nil {
		return err
	}
	inst.Scale = scale
	return nil
}

func (p *Project) instance(sceneID SceneID, id InstanceID) (*CharacterInstance, error) {
	scene, err := p.Scene(sceneID)
	if err != nil {
		return nil, err
	}
	for i := range scene.Instances {
		if scene.Instances[i].ID == id {
			return &scene.Instances[i], nil
		}
	}
	return nil, fmt.Errorf("%w: instance %q in scene %q", errs.ErrNotFound, id, sceneID)
}
