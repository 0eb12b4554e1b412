package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vnforge/internal/character"
)

func presetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved character presets",
	}
	cmd.AddCommand(presetSaveCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Print a preset as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runPresetShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List preset names",
		Args:  cobra.NoArgs,
		RunE:  runPresetList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  runPresetDelete,
	})
	return cmd
}

func presetSaveCmd() *cobra.Command {
	var archetype string
	var eyes string
	var layers []string
	var fromFile string
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save or overwrite a character preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := buildSpec(fromFile, archetype, eyes, layers)
			if err != nil {
				return err
			}
			return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
				if err := w.session.SavePreset(ctx, args[0], spec); err != nil {
					return false, err
				}
				fmt.Fprintf(os.Stdout, "Saved preset %q.\n", strings.TrimSpace(args[0]))
				return false, nil
			})
		},
	}
	cmd.Flags().StringVar(&fromFile, "from", "", "Read the spec from a JSON file")
	cmd.Flags().StringVar(&archetype, "archetype", "", "Character archetype")
	cmd.Flags().StringVar(&eyes, "eyes", "", "Eye variant (default, green, lilac, brown)")
	cmd.Flags().StringArrayVar(&layers, "layer", nil, "Layer selection as category=file (repeatable)")
	return cmd
}

// buildSpec reads a spec file when given and applies flag overrides on top.
func buildSpec(fromFile, archetype, eyes string, layers []string) (character.Spec, error) {
	spec := character.Spec{Selections: map[character.Category]string{}}
	if fromFile != "" {
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return character.Spec{}, fmt.Errorf("reading %s: %w", fromFile, err)
		}
		if err := json.Unmarshal(data, &spec); err != nil {
			return character.Spec{}, fmt.Errorf("parsing %s: %w", fromFile, err)
		}
	}
	return applySpecFlags(spec, archetype, eyes, layers)
}

// applySpecFlags writes flag overrides into spec's selections. An empty file
// clears that layer.
func applySpecFlags(spec character.Spec, archetype, eyes string, layers []string) (character.Spec, error) {
	if spec.Selections == nil {
		spec.Selections = map[character.Category]string{}
	}
	if archetype != "" {
		spec.Archetype = archetype
	}
	if eyes != "" {
		variant, err := character.ParseEyeVariant(eyes)
		if err != nil {
			return character.Spec{}, err
		}
		spec.EyeVariant = variant
	}
	for _, layer := range layers {
		key, file, ok := strings.Cut(layer, "=")
		if !ok {
			return character.Spec{}, fmt.Errorf("--layer %q: expected category=file", layer)
		}
		category, err := character.ParseCategory(key)
		if err != nil {
			return character.Spec{}, err
		}
		if strings.TrimSpace(file) == "" {
			delete(spec.Selections, category)
			continue
		}
		spec.Selections[category] = strings.TrimSpace(file)
	}
	return spec, nil
}

func runPresetShow(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		spec, err := w.session.Presets().Load(args[0])
		if err != nil {
			return false, err
		}
		data, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return false, err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return false, nil
	})
}

func runPresetList(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		names := w.session.Presets().List()
		if len(names) == 0 {
			fmt.Fprintln(os.Stdout, "No presets saved.")
			return false, nil
		}
		for _, name := range names {
			fmt.Fprintln(os.Stdout, name)
		}
		return false, nil
	})
}

func runPresetDelete(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		if err := w.session.Presets().Delete(ctx, args[0]); err != nil {
			return false, err
		}
		fmt.Fprintf(os.Stdout, "Deleted preset %q.\n", args[0])
		return false, nil
	})
}
