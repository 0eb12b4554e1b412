package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vnforge/internal/config"
)

func initCmd() *cobra.Command {
	var projectName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new vnforge project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	return cmd
}

func runInit(projectName string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	cfg := config.Default(projectName)
	if err := config.Write(configPath, cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.AssetsRoot(), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", cfg.AssetsRoot(), err)
	}

	fmt.Fprintf(os.Stdout, "Created %s.\n", configPath)
	fmt.Fprintf(os.Stdout, "Put character layers under %s/<archetype>/<group>/ and run `vnforge manifest build`.\n", cfg.AssetsRoot())
	return nil
}
