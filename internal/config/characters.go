package config

import (
	"fmt"
	"strings"

	"vnforge/internal/character"
)

// CharactersConfig replaces the built-in archetype catalog.
type CharactersConfig struct {
	Archetypes    []string          `yaml:"archetypes"`
	PoseArchetype string            `yaml:"pose_archetype"`
	EyeGroups     map[string]string `yaml:"eye_groups"`
}

// Catalog returns the configured catalog, or the built-in one when the file
// has no characters section.
func (c *ProjectConfig) Catalog() character.Catalog {
	if c.Characters == nil {
		return character.DefaultCatalog()
	}
	catalog := character.Catalog{
		Archetypes:    append([]string(nil), c.Characters.Archetypes...),
		PoseArchetype: c.Characters.PoseArchetype,
		EyeGroups:     make(map[character.EyeVariant]string, len(c.Characters.EyeGroups)),
	}
	for key, group := range c.Characters.EyeGroups {
		// keys were checked when the config was loaded
		variant, _ := character.ParseEyeVariant(key)
		catalog.EyeGroups[variant] = group
	}
	return catalog
}

func validateCharacters(chars *CharactersConfig) error {
	if len(chars.Archetypes) == 0 {
		return fmt.Errorf("characters: at least one archetype is required")
	}

	seen := make(map[string]struct{}, len(chars.Archetypes))
	for i, archetype := range chars.Archetypes {
		if strings.TrimSpace(archetype) == "" {
			return fmt.Errorf("characters: archetype %d name is required", i)
		}
		if _, exists := seen[archetype]; exists {
			return fmt.Errorf("characters: duplicate archetype: %s", archetype)
		}
		seen[archetype] = struct{}{}
	}

	if chars.PoseArchetype != "" {
		if _, ok := seen[chars.PoseArchetype]; !ok {
			return fmt.Errorf("characters: pose archetype %s is not listed", chars.PoseArchetype)
		}
	}

	for key, group := range chars.EyeGroups {
		if _, err := character.ParseEyeVariant(key); err != nil {
			return fmt.Errorf("characters: %w", err)
		}
		if strings.TrimSpace(group) == "" {
			return fmt.Errorf("characters: eye group for %s is empty", key)
		}
	}

	return nil
}
