// Package ingest builds scenes from a directory tree of scene scripts.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"vnforge/internal/narrative"
	"vnforge/internal/parser"
)

type Result struct {
	ScenesCreated  int
	DialoguesAdded int
	ChoicesAdded   int
	FilesSkipped   int
	Errors         []error
}

type Options struct {
	Exclude []string
	Logger  *zap.Logger
}

type processedDoc struct {
	doc   *parser.Document
	scene narrative.SceneID
}

// Run appends one scene per script found under roots to p. Scripts are
// created in (order, path) order so routes keep a stable sequence. Choice
// targets name another script's key or an existing scene id. Per-file
// problems are collected in Result.Errors and do not stop the run.
func Run(ctx context.Context, p *narrative.Project, roots []string, options Options) (*Result, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("ingest")

	files, err := walkMarkdownFiles(roots, options.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking scene scripts: %w", err)
	}

	result := &Result{}
	var docs []*parser.Document
	byKey := make(map[string]string)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := parser.ParseFile(path)
		if err != nil {
			if err == parser.ErrNoFrontmatter {
				result.FilesSkipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		if other, ok := byKey[doc.Key]; ok {
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: key %q already used by %s", path, doc.Key, other))
			continue
		}
		byKey[doc.Key] = path
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Order != docs[j].Order {
			return docs[i].Order < docs[j].Order
		}
		return docs[i].SourceFile < docs[j].SourceFile
	})

	var processed []processedDoc
	keys := make(map[string]narrative.SceneID, len(docs))
	for _, doc := range docs {
		route := narrative.RouteName(doc.Route)
		if route == "" {
			route = narrative.DefaultRoute
		}
		scene, err := p.CreateScene(route)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("creating scene from %s: %w", doc.SourceFile, err))
			continue
		}
		if err := p.RenameScene(scene.ID, doc.Title); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("creating scene from %s: %w", doc.SourceFile, err))
			continue
		}
		if err := p.SetBackground(scene.ID, doc.Background); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("creating scene from %s: %w", doc.SourceFile, err))
			continue
		}
		for _, line := range doc.Lines {
			if _, err := p.AddDialogue(scene.ID, line.Speaker, line.Text); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("adding dialogue from %s: %w", doc.SourceFile, err))
				continue
			}
			result.DialoguesAdded++
		}
		result.ScenesCreated++
		keys[doc.Key] = scene.ID
		processed = append(processed, processedDoc{doc: doc, scene: scene.ID})
		logger.Debug("scene created", zap.String("file", doc.SourceFile), zap.String("scene", string(scene.ID)))
	}

	for _, item := range processed {
		for _, choice := range item.doc.Choices {
			target, err := resolveTarget(p, keys, choice.Target)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("choice %q in %s: %w", choice.Text, item.doc.SourceFile, err))
				continue
			}
			if _, err := p.AddChoice(item.scene, choice.Text, "", target); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("choice %q in %s: %w", choice.Text, item.doc.SourceFile, err))
				continue
			}
			result.ChoicesAdded++
		}
	}

	return result, nil
}

func resolveTarget(p *narrative.Project, keys map[string]narrative.SceneID, target string) (narrative.SceneID, error) {
	if target == "" {
		return "", nil
	}
	if id, ok := keys[target]; ok {
		return id, nil
	}
	if _, err := p.Scene(narrative.SceneID(target)); err == nil {
		return narrative.SceneID(target), nil
	}
	return "", fmt.Errorf("unknown target %q", target)
}

func walkMarkdownFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && isExcluded(path, excluded) {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			if isExcluded(path, excluded) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
