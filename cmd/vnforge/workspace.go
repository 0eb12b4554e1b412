package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"vnforge/internal/compositor"
	"vnforge/internal/config"
	"vnforge/internal/editor"
	"vnforge/internal/errs"
	"vnforge/internal/imageload"
	"vnforge/internal/logger"
	"vnforge/internal/manifest"
	"vnforge/internal/narrative"
	"vnforge/internal/preset"
	"vnforge/internal/store"
)

// workspace is everything a command needs to edit the stored project.
type workspace struct {
	cfg    *config.ProjectConfig
	logger *zap.Logger
	store  store.Store
	loader imageload.Loader
	// compositor is nil when no asset manifest has been built yet.
	compositor *compositor.Compositor
	session    *editor.Session
}

func openWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Encoding:   cfg.Log.Encoding,
		OutputPath: cfg.Log.Output,
	})
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	presets, err := preset.Open(ctx, st, log)
	if err != nil {
		st.Close(ctx)
		return nil, err
	}
	project, err := editor.LoadProject(ctx, st, log)
	if err != nil {
		st.Close(ctx)
		return nil, err
	}

	w := &workspace{
		cfg:    cfg,
		logger: log,
		store:  st,
		loader: imageload.NewCache(imageload.NewFileLoader(cfg.AssetsRoot()), log),
	}
	catalog := cfg.Catalog()
	opts := editor.Options{Presets: presets, Catalog: catalog, Logger: log}

	m, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		log.Warn("asset manifest unavailable, character rendering disabled", zap.Error(err))
	} else {
		w.compositor = compositor.New(m, catalog, w.loader, log, compositor.Options{
			Width:  cfg.Canvas.Width,
			Height: cfg.Canvas.Height,
		})
		opts.Renderer = w.compositor
	}

	w.session = editor.NewSession(project, opts)
	return w, nil
}

func (w *workspace) project() *narrative.Project {
	return w.session.Project()
}

func (w *workspace) save(ctx context.Context) error {
	return editor.SaveProject(ctx, w.store, w.project())
}

func (w *workspace) close(ctx context.Context) {
	if err := w.store.Close(ctx); err != nil {
		w.logger.Warn("closing store failed", zap.Error(err))
	}
	_ = w.logger.Sync()
}

// withWorkspace opens the workspace, runs fn and saves the project when fn
// reports a change.
func withWorkspace(fn func(ctx context.Context, w *workspace) (bool, error)) error {
	ctx := context.Background()
	w, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer w.close(ctx)

	changed, err := fn(ctx, w)
	if err != nil {
		return err
	}
	if changed {
		return w.save(ctx)
	}
	return nil
}

// resolveScene accepts a scene id or "<route>#<n>" with n counted from 1.
func resolveScene(p *narrative.Project, ref string) (narrative.SceneID, error) {
	ref = strings.TrimSpace(ref)
	if _, err := p.Scene(narrative.SceneID(ref)); err == nil {
		return narrative.SceneID(ref), nil
	}
	hash := strings.LastIndex(ref, "#")
	if hash < 0 {
		return "", fmt.Errorf("%w: scene %q", errs.ErrNotFound, ref)
	}
	route, ok := p.Route(narrative.RouteName(ref[:hash]))
	if !ok {
		return "", fmt.Errorf("%w: route %q", errs.ErrNotFound, ref[:hash])
	}
	n, err := strconv.Atoi(ref[hash+1:])
	if err != nil || n < 1 || n > len(route.Scenes) {
		return "", fmt.Errorf("%w: scene %q", errs.ErrNotFound, ref)
	}
	return route.Scenes[n-1], nil
}

// resolveIndex accepts an id from ids or a position counted from 1.
func resolveIndex(ids []string, ref string) (string, error) {
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
	}
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 || n > len(ids) {
		return "", fmt.Errorf("%w: %q", errs.ErrNotFound, ref)
	}
	return ids[n-1], nil
}
