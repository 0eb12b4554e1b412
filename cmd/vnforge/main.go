package main

import (
	"os"

	"github.com/spf13/cobra"

	"vnforge/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "vnforge",
		Short:        "Visual novel authoring tool",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile, "Path to the project config")
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	root.AddCommand(manifestCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(presetCmd())
	root.AddCommand(routeCmd())
	root.AddCommand(sceneCmd())
	root.AddCommand(dialogueCmd())
	root.AddCommand(choiceCmd())
	root.AddCommand(instanceCmd())
	root.AddCommand(renderCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(playCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(serveCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
