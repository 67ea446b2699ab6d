package main

import (
	"context"
	"fmt"

	"github.com/nvandessel/reportsummary/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve averaging tools over MCP (stdio)",
		Long: `Run a Model Context Protocol server on stdin/stdout.

Tools: summary_families, summary_average, summary_export, summary_history
and summary_backup. Reports directories and output paths must lie inside
the workspace root, ~/.reportsummary, or a directory in mcp.allowed_dirs.
Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "reportsummary",
				Version:  version,
				Root:     root,
				Settings: cfg,
				Logger:   newLogger(cmd, cfg),
			})
			if err != nil {
				return fmt.Errorf("failed to start MCP server: %w", err)
			}
			defer server.Close()

			ctx, cancel := signalContext(context.Background())
			defer cancel()
			return server.Run(ctx)
		},
	}
}
