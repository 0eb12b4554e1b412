package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vnforge/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	w, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer w.close(ctx)

	server := mcp.NewServer(w.session, mcp.Options{
		Version: version,
		Store:   w.store,
		Loader:  w.loader,
		Logger:  w.logger,
	})
	w.logger.Info("serving MCP over stdio", zap.String("project", w.cfg.Project))
	return server.Run(ctx, &sdk.StdioTransport{})
}
