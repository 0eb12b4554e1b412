package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vnforge/internal/errs"
)

func renderCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "render <preset>",
		Short: "Render a preset to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = args[0] + ".png"
			}
			return runRender(args[0], out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default <preset>.png)")
	return cmd
}

func runRender(name, out string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		if w.compositor == nil {
			return false, fmt.Errorf("%w: no asset manifest, run `vnforge manifest build` first", errs.ErrValidation)
		}
		spec, err := w.session.Presets().Load(name)
		if err != nil {
			return false, err
		}

		f, err := os.Create(out)
		if err != nil {
			return false, fmt.Errorf("creating %s: %w", out, err)
		}
		if err := w.compositor.RenderPNG(ctx, spec, f); err != nil {
			f.Close()
			return false, err
		}
		if err := f.Close(); err != nil {
			return false, fmt.Errorf("writing %s: %w", out, err)
		}

		width, height := w.compositor.Size()
		fmt.Fprintf(os.Stdout, "Wrote %s (%dx%d).\n", out, width, height)
		return false, nil
	})
}
