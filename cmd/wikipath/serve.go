package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/wikipath-mcp/internal/mcp"
	"github.com/dshills/wikipath-mcp/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start the Model Context Protocol (MCP) server on stdio.

Tools: find_path, rank_links, get_page, get_status.
Logs go to stderr; stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	source, store, closeSource, err := openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	logger.Info("wikipath MCP server starting",
		"version", version,
		"build_mode", storage.BuildMode,
		"driver", storage.DriverName,
		"source", cfg.Source.Kind)

	server, err := mcp.NewServer(cfg, store, source, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Serve(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
