package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vnforge/internal/export"
	"vnforge/internal/narrative"
)

func exportCmd() *cobra.Command {
	var out string
	var title string
	var noInline bool
	var verify bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the story as a standalone playable HTML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
				opts := export.Options{
					Title:   title,
					Version: version,
					Logger:  w.logger,
				}
				if opts.Title == "" {
					opts.Title = w.cfg.Project
				}
				if !noInline {
					opts.Loader = w.loader
				}

				doc, err := export.Export(ctx, w.project(), opts)
				if err != nil {
					return false, err
				}
				if verify {
					if err := verifyExport(doc, w.project()); err != nil {
						return false, err
					}
				}
				if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
					return false, fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Fprintf(os.Stdout, "Wrote %s (%d bytes).\n", out, len(doc))
				return false, nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "story.html", "Output file")
	cmd.Flags().StringVar(&title, "title", "", "Document title (default: project name)")
	cmd.Flags().BoolVar(&noInline, "no-inline", false, "Keep background references instead of embedding images")
	cmd.Flags().BoolVar(&verify, "verify", false, "Parse the embedded data back and compare it with the project")
	return cmd
}

// verifyExport checks that the document carries the same story graph. Scene
// backgrounds may legitimately differ once inlined.
func verifyExport(doc string, p *narrative.Project) error {
	embedded, err := export.Extract(doc)
	if err != nil {
		return fmt.Errorf("verifying export: %w", err)
	}
	if len(embedded.Routes) != len(p.Routes) || len(embedded.Scenes) != len(p.Scenes) {
		return fmt.Errorf("verifying export: embedded story has %d routes and %d scenes, project has %d and %d",
			len(embedded.Routes), len(embedded.Scenes), len(p.Routes), len(p.Scenes))
	}
	for i, route := range p.Routes {
		got := embedded.Routes[i]
		if got.Name != route.Name || len(got.Scenes) != len(route.Scenes) {
			return fmt.Errorf("verifying export: route %q differs", route.Name)
		}
		for j, id := range route.Scenes {
			if got.Scenes[j] != id {
				return fmt.Errorf("verifying export: route %q differs at scene %d", route.Name, j+1)
			}
		}
	}
	for id, scene := range p.Scenes {
		got, err := embedded.Scene(id)
		if err != nil {
			return fmt.Errorf("verifying export: %w", err)
		}
		if len(got.Dialogues) != len(scene.Dialogues) || len(got.Choices) != len(scene.Choices) || len(got.Instances) != len(scene.Instances) {
			return fmt.Errorf("verifying export: scene %s differs", id)
		}
	}
	return nil
}
