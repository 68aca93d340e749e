package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/wikipath-mcp/internal/pagesource"
	"github.com/dshills/wikipath-mcp/internal/relevance"
	"github.com/dshills/wikipath-mcp/internal/search"
	"github.com/dshills/wikipath-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodePageNotFound     = -32001 // A title does not resolve to a page
	ErrorCodeSearchInProgress = -32002 // Another crawl is already running
	ErrorCodeEmptyTitle       = -32004 // Title parameter is empty
)

// Parameter bounds
const (
	maxNeighbors  = 100
	maxRankLimit  = 500
	maxTextLength = 20000
)

// handleFindPath handles the find_path tool invocation
func (s *Server) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	source, err := requireTitle(args, "source")
	if err != nil {
		return nil, err
	}
	target, err := requireTitle(args, "target")
	if err != nil {
		return nil, err
	}

	opts := s.cfg.SearchOptions(source, target)
	opts.NeighborsToCheck = getIntDefault(args, "neighbors_to_check", opts.NeighborsToCheck)
	if opts.NeighborsToCheck < 1 || opts.NeighborsToCheck > maxNeighbors {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("neighbors_to_check must be between 1 and %d", maxNeighbors), map[string]interface{}{
			"param": "neighbors_to_check",
			"value": opts.NeighborsToCheck,
		})
	}
	opts.UseBFS = getBoolDefault(args, "use_bfs", opts.UseBFS)
	opts.WordUniqueness = getBoolDefault(args, "word_uniqueness", opts.WordUniqueness)
	opts.MaxSteps = getIntDefault(args, "max_steps", opts.MaxSteps)
	if opts.MaxSteps < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_steps must be >= 0", map[string]interface{}{
			"param": "max_steps",
			"value": opts.MaxSteps,
		})
	}

	if !s.lock.TryAcquire() {
		return nil, newMCPError(ErrorCodeSearchInProgress, "another search is already running", nil)
	}
	defer s.lock.Release()

	engine := search.NewEngine(s.source, opts, s.logger)
	result, err := engine.Search(ctx)
	if err != nil {
		return nil, mapError("search failed", err)
	}

	// Format response
	path := result.Path
	if path == nil {
		path = []string{}
	}
	response := map[string]interface{}{
		"found":           result.Found,
		"source":          result.Source,
		"target":          result.Target,
		"path":            path,
		"path_length":     result.PathLength(),
		"visited_count":   result.VisitedCount,
		"adjacency_list":  result.Adjacency,
		"duration_ms":     result.Duration.Milliseconds(),
		"budget_exceeded": result.BudgetExceeded,
		"strategy":        strategyName(opts.UseBFS),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRankLinks handles the rank_links tool invocation
func (s *Server) handleRankLinks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	title, err := requireTitle(args, "title")
	if err != nil {
		return nil, err
	}
	target, err := requireTitle(args, "target")
	if err != nil {
		return nil, err
	}

	limit := getIntDefault(args, "limit", s.cfg.Search.NeighborsToCheck)
	if limit < 1 || limit > maxRankLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", maxRankLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}
	wordUniqueness := getBoolDefault(args, "word_uniqueness", s.cfg.Search.WordUniqueness)

	profile, err := relevance.TargetProfile(ctx, s.source, target)
	if err != nil {
		return nil, mapError("failed to build target profile", err)
	}

	scorer := relevance.NewScorer(s.source, wordUniqueness)
	top, err := scorer.TopCandidates(ctx, title, profile, limit)
	if err != nil {
		return nil, mapError("failed to rank links", err)
	}

	candidates := make([]map[string]interface{}, 0, len(top))
	targetInTop := false
	for i, c := range top {
		if types.SameTitle(c.Title, target) {
			targetInTop = true
		}
		candidates = append(candidates, map[string]interface{}{
			"rank":  i + 1,
			"title": c.Title,
			"score": c.Score,
		})
	}

	response := map[string]interface{}{
		"title":           title,
		"target":          target,
		"word_uniqueness": wordUniqueness,
		"candidates":      candidates,
		"target_in_top":   targetInTop,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetPage handles the get_page tool invocation
func (s *Server) handleGetPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	title, err := requireTitle(args, "title")
	if err != nil {
		return nil, err
	}
	includeText := getBoolDefault(args, "include_text", false)

	exists, err := s.source.PageExists(ctx, title)
	if err != nil {
		return nil, mapError("failed to check page", err)
	}
	if !exists {
		response := map[string]interface{}{
			"title":  title,
			"exists": false,
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	links, err := s.source.Outlinks(ctx, title)
	if err != nil {
		return nil, mapError("failed to fetch links", err)
	}
	if links == nil {
		links = []string{}
	}

	response := map[string]interface{}{
		"title":       title,
		"exists":      true,
		"links_count": len(links),
		"links":       links,
	}

	if includeText {
		text, err := s.source.Text(ctx, title)
		if err != nil {
			return nil, mapError("failed to fetch text", err)
		}
		truncated := truncateText(text, maxTextLength)
		response["text"] = truncated
		if len(truncated) < len(text) {
			response["text_truncated"] = true
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// cacheStatser is implemented by sources that keep a page cache
type cacheStatser interface {
	Stats() pagesource.CacheStats
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"source":         s.cfg.Source.Kind,
		"search_running": s.lock.Busy(),
		"defaults": map[string]interface{}{
			"neighbors_to_check": s.cfg.Search.NeighborsToCheck,
			"use_bfs":            s.cfg.Search.UseBFS,
			"word_uniqueness":    s.cfg.Search.WordUniqueness,
			"max_steps":          s.cfg.Search.MaxSteps,
		},
	}

	if cached, ok := s.source.(cacheStatser); ok {
		stats := cached.Stats()
		response["memory_cache"] = map[string]interface{}{
			"hits":    stats.Hits,
			"misses":  stats.Misses,
			"entries": stats.Entries,
		}
	}

	if s.storage == nil {
		response["cache_enabled"] = false
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	// Get detailed status
	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	statistics := map[string]interface{}{
		"pages_count":            status.PagesCount,
		"missing_pages_count":    status.MissingPagesCount,
		"links_count":            status.LinksCount,
		"word_frequencies_count": status.WordFrequenciesCount,
		"cache_size_mb":          fmt.Sprintf("%.2f", status.CacheSizeMB),
	}
	if !status.OldestFetch.IsZero() {
		statistics["oldest_fetch"] = status.OldestFetch.Format(time.RFC3339)
		statistics["newest_fetch"] = status.NewestFetch.Format(time.RFC3339)
	}

	response["cache_enabled"] = true
	response["statistics"] = statistics
	response["health"] = map[string]interface{}{
		"database_accessible":     status.Health.DatabaseAccessible,
		"word_frequencies_loaded": status.Health.WordFrequenciesLoaded,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// mapError converts a domain error into an MCPError
func mapError(message string, err error) error {
	data := map[string]interface{}{
		"error": err.Error(),
	}
	switch {
	case errors.Is(err, types.ErrPageNotFound):
		return newMCPError(ErrorCodePageNotFound, message, data)
	case errors.Is(err, types.ErrConfiguration):
		return newMCPError(ErrorCodeInvalidParams, message, data)
	default:
		return newMCPError(ErrorCodeInternalError, message, data)
	}
}

// requireTitle extracts a non-empty, normalized title parameter
func requireTitle(args map[string]interface{}, key string) (string, error) {
	raw, _ := args[key].(string)
	title := types.NormalizeTitle(raw)
	if title == "" {
		return "", newMCPError(ErrorCodeEmptyTitle, key+" parameter is required and cannot be empty", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return title, nil
}

// truncateText cuts text to at most limit bytes without splitting a rune
func truncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func strategyName(bfs bool) string {
	if bfs {
		return "bfs"
	}
	return "greedy"
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}
