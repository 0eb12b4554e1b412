package store

import (
	"context"
)

// Store persists the two records the editor owns: named character presets and
// the single current project.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	LoadPresets(ctx context.Context) ([]Preset, error)
	SavePreset(ctx context.Context, name string, data []byte) error
	DeletePreset(ctx context.Context, name string) error

	// LoadProject returns nil data when no project has been saved yet.
	LoadProject(ctx context.Context) ([]byte, error)
	SaveProject(ctx context.Context, data []byte) error
}

// Preset is a stored preset row; Data is the JSON-encoded character spec.
type Preset struct {
	Name string
	Data []byte
}
