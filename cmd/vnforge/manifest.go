package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"vnforge/internal/config"
	"vnforge/internal/manifest"
)

func manifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Manage the asset manifest",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "build",
		Short: "Scan the assets directory and rewrite the manifest",
		Args:  cobra.NoArgs,
		RunE:  runManifestBuild,
	})
	return cmd
}

func runManifestBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return err
	}

	m, err := manifest.Build(cfg.AssetsRoot())
	if err != nil {
		return err
	}
	if err := m.Write(cfg.ManifestPath()); err != nil {
		return err
	}

	archetypes := make([]string, 0, len(m))
	for archetype := range m {
		archetypes = append(archetypes, archetype)
	}
	sort.Strings(archetypes)

	fmt.Fprintf(os.Stdout, "Wrote %s.\n", cfg.ManifestPath())
	for _, archetype := range archetypes {
		files := 0
		for _, group := range m[archetype] {
			files += len(group)
		}
		fmt.Fprintf(os.Stdout, "  %s: %d groups, %d files\n", archetype, len(m[archetype]), files)
	}
	return nil
}
