package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/wikipath-mcp/internal/config"
	"github.com/dshills/wikipath-mcp/internal/pagesource"
	"github.com/dshills/wikipath-mcp/internal/search"
	"github.com/dshills/wikipath-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "wikipath-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	cfg     *config.Config
	storage storage.Storage // nil when the page cache is disabled
	source  pagesource.Source
	logger  *slog.Logger

	// Live crawls are expensive; only one runs at a time
	lock search.RunLock
}

// NewServer creates a new MCP server instance. store may be nil.
func NewServer(cfg *config.Config, store storage.Storage, source pagesource.Source, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if source == nil {
		return nil, fmt.Errorf("page source is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		cfg:     cfg,
		storage: store,
		source:  source,
		logger:  logger,
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
// The caller owns the storage and closes it afterwards.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server started", "name", ServerName, "version", ServerVersion)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	// Register find_path tool
	s.mcp.AddTool(findPathTool(), s.handleFindPath)

	// Register rank_links tool
	s.mcp.AddTool(rankLinksTool(), s.handleRankLinks)

	// Register get_page tool
	s.mcp.AddTool(getPageTool(), s.handleGetPage)

	// Register get_status tool
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return nil
}
