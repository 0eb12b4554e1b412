package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"vnforge/internal/narrative"
)

func instanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instance",
		Short: "Place characters in scenes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "attach <scene> <preset>",
		Short: "Render a preset and place it in a scene",
		Args:  cobra.ExactArgs(2),
		RunE:  runInstanceAttach,
	})
	cmd.AddCommand(instanceEditCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "move <scene> <instance> <x> <y>",
		Short: "Move a character; x in [0,1], y in [0,1.2]",
		Args:  cobra.ExactArgs(4),
		RunE:  runInstanceMove,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "scale <scene> <instance> <scale>",
		Short: "Resize a character; scale in [0.4,1.6]",
		Args:  cobra.ExactArgs(3),
		RunE:  runInstanceScale,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <scene> <instance>",
		Short: "Remove a character from a scene",
		Args:  cobra.ExactArgs(2),
		RunE:  runInstanceRemove,
	})
	return cmd
}

func runInstanceAttach(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		id, err := resolveScene(w.project(), args[0])
		if err != nil {
			return false, err
		}
		inst, err := w.session.AttachInstance(ctx, id, args[1])
		if err != nil {
			return false, err
		}
		fmt.Fprintf(os.Stdout, "Placed %s: %s\n", inst.DisplayName, inst.ID)
		return true, nil
	})
}

func instanceEditCmd() *cobra.Command {
	var archetype string
	var eyes string
	var layers []string
	cmd := &cobra.Command{
		Use:   "edit <scene> <instance>",
		Short: "Change a placed character's layers and re-render it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
				sceneID, id, err := resolveInstance(w.project(), args[0], args[1])
				if err != nil {
					return false, err
				}
				inst, err := w.project().Instance(sceneID, id)
				if err != nil {
					return false, err
				}
				spec, err := applySpecFlags(inst.CharacterData, archetype, eyes, layers)
				if err != nil {
					return false, err
				}
				return true, w.session.EditInstance(ctx, sceneID, id, spec)
			})
		},
	}
	cmd.Flags().StringVar(&archetype, "archetype", "", "Character archetype")
	cmd.Flags().StringVar(&eyes, "eyes", "", "Eye variant (default, green, lilac, brown)")
	cmd.Flags().StringArrayVar(&layers, "layer", nil, "Layer selection as category=file (repeatable)")
	return cmd
}

func runInstanceMove(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return fmt.Errorf("y: %w", err)
	}
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		sceneID, id, err := resolveInstance(w.project(), args[0], args[1])
		if err != nil {
			return false, err
		}
		return true, w.session.Move(sceneID, id, x, y)
	})
}

func runInstanceScale(cmd *cobra.Command, args []string) error {
	scale, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("scale: %w", err)
	}
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		sceneID, id, err := resolveInstance(w.project(), args[0], args[1])
		if err != nil {
			return false, err
		}
		return true, w.session.Rescale(sceneID, id, scale)
	})
}

func runInstanceRemove(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		sceneID, id, err := resolveInstance(w.project(), args[0], args[1])
		if err != nil {
			return false, err
		}
		return true, w.project().RemoveInstance(sceneID, id)
	})
}

func resolveInstance(p *narrative.Project, sceneRef, instanceRef string) (narrative.SceneID, narrative.InstanceID, error) {
	sceneID, err := resolveScene(p, sceneRef)
	if err != nil {
		return "", "", err
	}
	scene, err := p.Scene(sceneID)
	if err != nil {
		return "", "", err
	}
	ids := make([]string, 0, len(scene.Instances))
	for _, inst := range scene.Instances {
		ids = append(ids, string(inst.ID))
	}
	id, err := resolveIndex(ids, instanceRef)
	if err != nil {
		return "", "", fmt.Errorf("instance: %w", err)
	}
	return sceneID, narrative.InstanceID(id), nil
}
