package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vnforge/internal/narrative"
)

func dialogueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dialogue",
		Short: "Edit scene dialogue",
	}
	cmd.AddCommand(dialogueAddCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <scene> <line>",
		Short: "Remove a dialogue line by id or position",
		Args:  cobra.ExactArgs(2),
		RunE:  runDialogueRemove,
	})
	return cmd
}

func dialogueAddCmd() *cobra.Command {
	var speaker string
	cmd := &cobra.Command{
		Use:   "add <scene> <text>",
		Short: "Append a dialogue line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
				id, err := resolveScene(w.project(), args[0])
				if err != nil {
					return false, err
				}
				line, err := w.project().AddDialogue(id, speaker, args[1])
				if err != nil {
					return false, err
				}
				fmt.Fprintf(os.Stdout, "Added line %s.\n", line.ID)
				return true, nil
			})
		},
	}
	cmd.Flags().StringVar(&speaker, "speaker", "", "Speaker name; empty for narration")
	return cmd
}

func runDialogueRemove(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		sceneID, err := resolveScene(w.project(), args[0])
		if err != nil {
			return false, err
		}
		scene, err := w.project().Scene(sceneID)
		if err != nil {
			return false, err
		}
		ids := make([]string, 0, len(scene.Dialogues))
		for _, line := range scene.Dialogues {
			ids = append(ids, string(line.ID))
		}
		id, err := resolveIndex(ids, args[1])
		if err != nil {
			return false, fmt.Errorf("dialogue line: %w", err)
		}
		return true, w.project().RemoveDialogue(sceneID, narrative.DialogueID(id))
	})
}
