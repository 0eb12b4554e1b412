// Package preset keeps named character specs. Every write is committed to
// the backend before the in-memory view changes.
package preset

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"vnforge/internal/character"
	"vnforge/internal/errs"
	"vnforge/internal/store"
)

// Backend is the slice of store.Store the preset store writes through.
type Backend interface {
	LoadPresets(ctx context.Context) ([]store.Preset, error)
	SavePreset(ctx context.Context, name string, data []byte) error
	DeletePreset(ctx context.Context, name string) error
}

type Store struct {
	mu      sync.RWMutex
	backend Backend
	presets map[string]character.Spec
	logger  *zap.Logger
}

// NewMemory returns a store that is not backed by persistence.
func NewMemory() *Store {
	return &Store{presets: make(map[string]character.Spec), logger: zap.NewNop()}
}

// Open reads every preset from the backend. Rows that cannot be decoded are
// skipped and logged.
func Open(ctx context.Context, backend Backend, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		backend: backend,
		presets: make(map[string]character.Spec),
		logger:  logger.Named("preset"),
	}

	rows, err := backend.LoadPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading presets: %w", err)
	}
	for _, row := range rows {
		var spec character.Spec
		if err := json.Unmarshal(row.Data, &spec); err != nil {
			s.logger.Warn("skipping unreadable preset", zap.String("name", row.Name), zap.Error(err))
			continue
		}
		s.presets[row.Name] = spec
	}
	s.logger.Debug("presets loaded", zap.Int("count", len(s.presets)))
	return s, nil
}

// Save inserts or overwrites name with a copy of spec.
func (s *Store) Save(ctx context.Context, name string, spec character.Spec) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: preset name is required", errs.ErrValidation)
	}
	stored := spec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("encoding preset %q: %w", name, err)
		}
		if err := s.backend.SavePreset(ctx, name, data); err != nil {
			return fmt.Errorf("saving preset: %w", err)
		}
	}
	s.presets[name] = stored
	return nil
}

// Load returns a copy of the named spec.
func (s *Store) Load(name string) (character.Spec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spec, ok := s.presets[strings.TrimSpace(name)]
	if !ok {
		return character.Spec{}, fmt.Errorf("%w: preset %q", errs.ErrNotFound, name)
	}
	return spec.Clone(), nil
}

// Delete removes name. Deleting a missing preset is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		if err := s.backend.DeletePreset(ctx, name); err != nil {
			return fmt.Errorf("deleting preset: %w", err)
		}
	}
	delete(s.presets, name)
	return nil
}

// List returns the preset names sorted; callers should not rely on order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
