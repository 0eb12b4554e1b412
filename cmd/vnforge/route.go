package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vnforge/internal/narrative"
)

func routeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Manage story routes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty route",
		Args:  cobra.ExactArgs(1),
		RunE:  runRouteCreate,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List routes and their scenes in order",
		Args:  cobra.NoArgs,
		RunE:  runRouteList,
	})
	return cmd
}

func runRouteCreate(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		if err := w.project().CreateRoute(narrative.RouteName(args[0])); err != nil {
			return false, err
		}
		fmt.Fprintf(os.Stdout, "Created route %q.\n", args[0])
		return true, nil
	})
}

func runRouteList(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(ctx context.Context, w *workspace) (bool, error) {
		p := w.project()
		for _, route := range p.Routes {
			fmt.Fprintf(os.Stdout, "%s (%d scenes)\n", route.Name, len(route.Scenes))
			for i, id := range route.Scenes {
				title := ""
				if scene, err := p.Scene(id); err == nil {
					title = scene.Title
				}
				fmt.Fprintf(os.Stdout, "  %s#%d  %s  %s\n", route.Name, i+1, title, id)
			}
		}
		return false, nil
	})
}
