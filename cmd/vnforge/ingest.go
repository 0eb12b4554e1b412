package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vnforge/internal/editor"
	"vnforge/internal/ingest"
	"vnforge/internal/narrative"
)

var (
	ingestReplace bool
	ingestExclude []string
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <dir>...",
		Short: "Build scenes from markdown scene scripts",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}
	cmd.Flags().BoolVar(&ingestReplace, "replace", false, "Replace the stored project instead of appending to it")
	cmd.Flags().StringArrayVar(&ingestExclude, "exclude", nil, "Directory to skip (repeatable)")
	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	w, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer w.close(ctx)

	target := w.project().Clone()
	if ingestReplace {
		target = &narrative.Project{Routes: []narrative.Route{}, Scenes: map[narrative.SceneID]*narrative.Scene{}}
	}

	result, err := ingest.Run(ctx, target, args, ingest.Options{Exclude: ingestExclude, Logger: w.logger})
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Ingestion complete.")
	fmt.Fprintf(os.Stdout, "  Scenes created:  %d\n", result.ScenesCreated)
	fmt.Fprintf(os.Stdout, "  Dialogue lines:  %d\n", result.DialoguesAdded)
	fmt.Fprintf(os.Stdout, "  Choices:         %d\n", result.ChoicesAdded)
	fmt.Fprintf(os.Stdout, "  Files skipped:   %d\n", result.FilesSkipped)

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("ingestion completed with errors; project not saved")
	}

	return editor.SaveProject(ctx, w.store, target)
}
