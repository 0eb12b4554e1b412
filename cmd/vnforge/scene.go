package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vnforge/internal/narrative"
)

func sceneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Manage scenes",
		Long:  "Scenes are addressed by id or as <route>#<n>, counting from 1.",
	}
	cmd.AddCommand(sceneCreateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "show <scene>",
		Short: "Print a scene's dialogue, choices and characters",
		Args:  cobra.ExactArgs(1),
		RunE:  runSceneShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "move <scene> <route>",
		Short: "Move a scene to the end of another route",
		Args:  cobra.ExactArgs(2),
		RunE:  runSceneMove,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <scene> <title>",
		Short: "Set a scene title",
		Args:  cobra.ExactArgs(2),
		RunE:  runSceneRename,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "background <scene> [image]",
		Short: "Set or clear a scene background",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runSceneBackground,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <scene>",
		Short: "Delete a scene",
		Args:  cobra.ExactArgs(1),
		RunE:  runSceneDelete,
	})
	return cmd
}

func sceneCreateCmd() *cobra.Command {
	var route string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Append a new scene to a route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
				scene, err := w.session.CreateScene(narrative.RouteName(route))
				if err != nil {
					return false, err
				}
				fmt.Fprintf(os.Stdout, "Created %q in %s: %s\n", scene.Title, scene.Route, scene.ID)
				return true, nil
			})
		},
	}
	cmd.Flags().StringVar(&route, "route", string(narrative.DefaultRoute), "Route to append to; created when missing")
	return cmd
}

func runSceneShow(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		id, err := resolveScene(w.project(), args[0])
		if err != nil {
			return false, err
		}
		scene, err := w.project().Scene(id)
		if err != nil {
			return false, err
		}

		fmt.Fprintf(os.Stdout, "Scene: %s\n", scene.Title)
		fmt.Fprintf(os.Stdout, "ID: %s\n", scene.ID)
		fmt.Fprintf(os.Stdout, "Route: %s\n", scene.Route)
		if scene.Background != "" {
			fmt.Fprintf(os.Stdout, "Background: %s\n", scene.Background)
		}
		if len(scene.Dialogues) > 0 {
			fmt.Fprintln(os.Stdout, "Dialogue:")
			for i, line := range scene.Dialogues {
				fmt.Fprintf(os.Stdout, "  %d. %s: %s\n", i+1, speakerOrNarrator(line.Speaker), line.Text)
			}
		}
		if len(scene.Choices) > 0 {
			fmt.Fprintln(os.Stdout, "Choices:")
			for i, choice := range scene.Choices {
				target := "(ends route)"
				if choice.TargetSceneID != "" {
					target = describeScene(w.project(), choice.TargetSceneID)
				}
				fmt.Fprintf(os.Stdout, "  %d. %s -> %s [%s]\n", i+1, choice.Text, target, choice.Route)
			}
		}
		if len(scene.Instances) > 0 {
			fmt.Fprintln(os.Stdout, "Characters:")
			for i, inst := range scene.Instances {
				fmt.Fprintf(os.Stdout, "  %d. %s at (%.2f, %.2f) x%.2f  %s\n", i+1, inst.DisplayName, inst.PosX, inst.PosY, inst.Scale, inst.ID)
			}
		}
		return false, nil
	})
}

func runSceneMove(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		id, err := resolveScene(w.project(), args[0])
		if err != nil {
			return false, err
		}
		if err := w.project().MoveScene(id, narrative.RouteName(args[1])); err != nil {
			return false, err
		}
		fmt.Fprintf(os.Stdout, "Moved %s to %s.\n", id, args[1])
		return true, nil
	})
}

func runSceneRename(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		id, err := resolveScene(w.project(), args[0])
		if err != nil {
			return false, err
		}
		return true, w.project().RenameScene(id, args[1])
	})
}

func runSceneBackground(cmd *cobra.Command, args []string) error {
	ref := ""
	if len(args) == 2 {
		ref = args[1]
	}
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		id, err := resolveScene(w.project(), args[0])
		if err != nil {
			return false, err
		}
		return true, w.project().SetBackground(id, ref)
	})
}

func runSceneDelete(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		id, err := resolveScene(w.project(), args[0])
		if err != nil {
			return false, err
		}
		if err := w.session.DeleteScene(id); err != nil {
			return false, err
		}
		fmt.Fprintf(os.Stdout, "Deleted %s.\n", id)
		return true, nil
	})
}

func describeScene(p *narrative.Project, id narrative.SceneID) string {
	scene, err := p.Scene(id)
	if err != nil {
		return fmt.Sprintf("%s (missing)", id)
	}
	return fmt.Sprintf("%s [%s]", scene.Title, scene.Route)
}

func speakerOrNarrator(speaker string) string {
	if speaker == "" {
		return "(narrator)"
	}
	return speaker
}
