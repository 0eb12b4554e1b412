// Package export turns a project into one self-contained HTML document that
// plays the story with no network access.
package export

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vnforge/internal/compositor"
	"vnforge/internal/errs"
	"vnforge/internal/imageload"
	"vnforge/internal/narrative"
)

//go:embed templates/player.html templates/player.js
var templatesFS embed.FS

var page = template.Must(template.ParseFS(templatesFS, "templates/player.html"))

// DataElementID is the id of the script element holding the project JSON.
const DataElementID = "vn-data"

const (
	dataOpen  = `<script type="application/json" id="` + DataElementID + `">`
	dataClose = `</script>`
)

type Options struct {
	Title   string
	Version string
	// Loader, when set, inlines scene backgrounds that are not data URIs yet.
	Loader imageload.Loader
	Logger *zap.Logger
}

type pageData struct {
	Title   string
	Version string
	DataID  string
	Data    template.JS
	Player  template.JS
}

// Export renders a snapshot of p. The project is cloned first and never
// mutated.
func Export(ctx context.Context, p *narrative.Project, opts Options) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%w: project is required", errs.ErrValidation)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	snapshot := p.Clone()

	if opts.Loader != nil {
		if err := inlineBackgrounds(ctx, snapshot, opts.Loader, logger); err != nil {
			return "", err
		}
	}

	data, err := Marshal(snapshot)
	if err != nil {
		return "", err
	}
	player, err := templatesFS.ReadFile("templates/player.js")
	if err != nil {
		return "", fmt.Errorf("reading player script: %w", err)
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "vnforge"
	}

	var buf bytes.Buffer
	err = page.Execute(&buf, pageData{
		Title:   title,
		Version: opts.Version,
		DataID:  DataElementID,
		Data:    template.JS(data),
		Player:  template.JS(player),
	})
	if err != nil {
		return "", fmt.Errorf("rendering export: %w", err)
	}

	logger.Debug("project exported",
		zap.Int("scenes", len(snapshot.Scenes)),
		zap.Int("routes", len(snapshot.Routes)),
		zap.Int("bytes", buf.Len()),
	)
	return buf.String(), nil
}

// Marshal encodes the project for embedding inside a script element. The
// encoder emits <, >, &, U+2028 and U+2029 as \u escapes, so the payload can
// neither close the element nor split a JS string literal.
func Marshal(p *narrative.Project) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encoding project for export: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Extract parses the embedded project back out of an exported document.
func Extract(doc string) (*narrative.Project, error) {
	start := strings.Index(doc, dataOpen)
	if start < 0 {
		return nil, fmt.Errorf("%w: export has no project data", errs.ErrCorruptState)
	}
	rest := doc[start+len(dataOpen):]
	end := strings.Index(rest, dataClose)
	if end < 0 {
		return nil, fmt.Errorf("%w: project data is not terminated", errs.ErrCorruptState)
	}
	return narrative.Decode([]byte(strings.TrimSpace(rest[:end])))
}

// inlineBackgrounds replaces background references with PNG data URIs. A
// background that fails to load keeps its original reference.
func inlineBackgrounds(ctx context.Context, p *narrative.Project, loader imageload.Loader, logger *zap.Logger) error {
	refs := make(map[string]struct{})
	for _, scene := range p.Scenes {
		if scene.Background != "" && !imageload.IsDataURI(scene.Background) {
			refs[scene.Background] = struct{}{}
		}
	}
	if len(refs) == 0 {
		return nil
	}
	ordered := make([]string, 0, len(refs))
	for ref := range refs {
		ordered = append(ordered, ref)
	}
	sort.Strings(ordered)

	var (
		mu      sync.Mutex
		encoded = make(map[string]string, len(ordered))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, ref := range ordered {
		g.Go(func() error {
			img, err := loader.Load(gctx, ref)
			if err != nil {
				logger.Warn("background kept as reference", zap.String("ref", ref), zap.Error(err))
				return nil
			}
			uri, err := compositor.EncodeDataURI(img)
			if err != nil {
				logger.Warn("background kept as reference", zap.String("ref", ref), zap.Error(err))
				return nil
			}
			mu.Lock()
			encoded[ref] = uri
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("inlining backgrounds: %w", err)
	}

	for _, scene := range p.Scenes {
		if uri, ok := encoded[scene.Background]; ok {
			scene.Background = uri
		}
	}
	return nil
}
