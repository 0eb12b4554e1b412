package character

import (
	"fmt"
	"strings"

	"vnforge/internal/errs"
)

// Category names one layer slot of a character.
type Category string

const (
	CategoryBase      Category = "base"
	CategoryEyes      Category = "eyes"
	CategoryHairFront Category = "hair_front"
	CategoryHairBack  Category = "hair_back"
	CategoryOutfit    Category = "outfit"
	CategoryAccessory Category = "accessory"
	CategoryBlush     Category = "blush"
)

// Categories lists every category in editor order.
var Categories = []Category{
	CategoryBase,
	CategoryEyes,
	CategoryHairFront,
	CategoryHairBack,
	CategoryOutfit,
	CategoryAccessory,
	CategoryBlush,
}

// DrawOrder is the fixed bottom-to-top z-order used when compositing.
var DrawOrder = []Category{
	CategoryHairBack,
	CategoryBase,
	CategoryOutfit,
	CategoryBlush,
	CategoryEyes,
	CategoryHairFront,
	CategoryAccessory,
}

func ParseCategory(value string) (Category, error) {
	key := Category(strings.ToLower(strings.TrimSpace(value)))
	for _, category := range Categories {
		if category == key {
			return category, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", errs.ErrValidation, value)
}

// EyeVariant selects an alternate eyes image group on the pose-capable archetype.
type EyeVariant string

const (
	EyeDefault EyeVariant = "default"
	EyeGreen   EyeVariant = "green"
	EyeLilac   EyeVariant = "lilac"
	EyeBrown   EyeVariant = "brown"
)

var EyeVariants = []EyeVariant{EyeDefault, EyeGreen, EyeLilac, EyeBrown}

func ParseEyeVariant(value string) (EyeVariant, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return EyeDefault, nil
	}
	for _, variant := range EyeVariants {
		if string(variant) == trimmed {
			return variant, nil
		}
	}
	return "", fmt.Errorf("%w: unknown eye variant %q", errs.ErrValidation, value)
}

// Spec describes a character appearance: an archetype plus one image file
// per selected category. A category missing from Selections is not drawn.
type Spec struct {
	Archetype  string              `json:"baseType"`
	EyeVariant EyeVariant          `json:"eyeVariant,omitempty"`
	Selections map[Category]string `json:"selections"`
}

// Clone returns a structural copy that shares no mutable state with s.
func (s Spec) Clone() Spec {
	out := Spec{
		Archetype:  s.Archetype,
		EyeVariant: s.EyeVariant,
		Selections: make(map[Category]string, len(s.Selections)),
	}
	for category, file := range s.Selections {
		out.Selections[category] = file
	}
	return out
}

// Selection returns the file chosen for category, if any.
func (s Spec) Selection(category Category) (string, bool) {
	file, ok := s.Selections[category]
	if !ok || strings.TrimSpace(file) == "" {
		return "", false
	}
	return file, true
}

func (s Spec) Variant() EyeVariant {
	if s.EyeVariant == "" {
		return EyeDefault
	}
	return s.EyeVariant
}
