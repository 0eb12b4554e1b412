package editor

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vnforge/internal/errs"
	"vnforge/internal/narrative"
)

// ProjectStore is the slice of store.Store holding the current project.
type ProjectStore interface {
	LoadProject(ctx context.Context) ([]byte, error)
	SaveProject(ctx context.Context, data []byte) error
}

// LoadProject reads the persisted project. Missing data yields a fresh
// project; unreadable or inconsistent data is logged and replaced by a fresh
// project. Only storage failures are returned.
func LoadProject(ctx context.Context, st ProjectStore, logger *zap.Logger) (*narrative.Project, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := st.LoadProject(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if data == nil {
		return narrative.NewProject(), nil
	}

	p, err := narrative.Decode(data)
	if errors.Is(err, errs.ErrCorruptState) {
		logger.Warn("stored project is corrupt, starting a new one", zap.Error(err))
		return narrative.NewProject(), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func SaveProject(ctx context.Context, st ProjectStore, p *narrative.Project) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	if err := st.SaveProject(ctx, data); err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}
