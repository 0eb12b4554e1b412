package character

import (
	"fmt"
	"strings"

	"vnforge/internal/errs"
)

const defaultEyesGroup = "eyes"

// Catalog lists the archetypes an editor offers and how eye variants map to
// image groups. Only PoseArchetype honours eye variants.
type Catalog struct {
	Archetypes    []string
	PoseArchetype string
	EyeGroups     map[EyeVariant]string
}

func DefaultCatalog() Catalog {
	return Catalog{
		Archetypes:    []string{"female", "male", "female-mature", "male-mature", "female-pose"},
		PoseArchetype: "female-pose",
		EyeGroups: map[EyeVariant]string{
			EyeDefault: defaultEyesGroup,
			EyeGreen:   "eye-verde",
			EyeLilac:   "eye-lilas",
			EyeBrown:   "eye-marrom",
		},
	}
}

func (c Catalog) HasArchetype(name string) bool {
	for _, archetype := range c.Archetypes {
		if archetype == name {
			return true
		}
	}
	return false
}

// EyesGroup returns the image group searched for the eyes category. The
// variant group is used only on the pose-capable archetype and only when
// available reports that the group exists.
func (c Catalog) EyesGroup(archetype string, variant EyeVariant, available func(group string) bool) string {
	if archetype != c.PoseArchetype || variant == "" || variant == EyeDefault {
		return defaultEyesGroup
	}
	group, ok := c.EyeGroups[variant]
	if !ok || group == "" {
		return defaultEyesGroup
	}
	if available != nil && !available(group) {
		return defaultEyesGroup
	}
	return group
}

// GroupFor returns the image group holding the files of category.
func (c Catalog) GroupFor(archetype string, category Category, variant EyeVariant, available func(group string) bool) string {
	if category == CategoryEyes {
		return c.EyesGroup(archetype, variant, available)
	}
	return string(category)
}

// Check validates a spec against the catalog.
func (c Catalog) Check(spec Spec) error {
	if strings.TrimSpace(spec.Archetype) == "" {
		return fmt.Errorf("%w: archetype is required", errs.ErrValidation)
	}
	if !c.HasArchetype(spec.Archetype) {
		return fmt.Errorf("%w: unknown archetype %q", errs.ErrValidation, spec.Archetype)
	}
	if _, err := ParseEyeVariant(string(spec.EyeVariant)); err != nil {
		return err
	}
	for category := range spec.Selections {
		if _, err := ParseCategory(string(category)); err != nil {
			return err
		}
	}
	return nil
}
