package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vnforge/internal/narrative"
)

func choiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "choice",
		Short: "Edit scene choices",
	}
	cmd.AddCommand(choiceAddCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <scene> <choice>",
		Short: "Remove a choice by id or position",
		Args:  cobra.ExactArgs(2),
		RunE:  runChoiceRemove,
	})
	return cmd
}

func choiceAddCmd() *cobra.Command {
	var target string
	var label string
	cmd := &cobra.Command{
		Use:   "add <scene> <text>",
		Short: "Append a choice; without --target it ends the route",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
				p := w.project()
				id, err := resolveScene(p, args[0])
				if err != nil {
					return false, err
				}
				var targetID narrative.SceneID
				if target != "" {
					targetID, err = resolveScene(p, target)
					if err != nil {
						return false, fmt.Errorf("choice target: %w", err)
					}
				}
				choice, err := p.AddChoice(id, args[1], label, targetID)
				if err != nil {
					return false, err
				}
				fmt.Fprintf(os.Stdout, "Added choice %s.\n", choice.ID)
				return true, nil
			})
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Scene the choice jumps to")
	cmd.Flags().StringVar(&label, "route", "", "Route label; defaults to the target's route")
	return cmd
}

func runChoiceRemove(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		sceneID, err := resolveScene(w.project(), args[0])
		if err != nil {
			return false, err
		}
		scene, err := w.project().Scene(sceneID)
		if err != nil {
			return false, err
		}
		ids := make([]string, 0, len(scene.Choices))
		for _, choice := range scene.Choices {
			ids = append(ids, string(choice.ID))
		}
		id, err := resolveIndex(ids, args[1])
		if err != nil {
			return false, fmt.Errorf("choice: %w", err)
		}
		return true, w.project().RemoveChoice(sceneID, narrative.ChoiceID(id))
	})
}
