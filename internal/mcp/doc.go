// Package mcp implements the Model Context Protocol (MCP) server for wikipath.
//
// The MCP server exposes four tools to AI assistants:
//   - find_path: Crawl from a source page to a target page
//   - rank_links: Score a page's outbound links against a target
//   - get_page: Look up a page's existence, links and text
//   - get_status: Report page cache statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server is started via the serve command:
//
//	wikipath serve
//
// # Tool: find_path
//
//	Request:
//	{
//	  "name": "find_path",
//	  "arguments": {
//	    "source": "Howard Schultz",
//	    "target": "Strawberry",
//	    "neighbors_to_check": 5,
//	    "use_bfs": false,
//	    "word_uniqueness": true,
//	    "max_steps": 500
//	  }
//	}
//
//	Response:
//	{
//	  "found": true,
//	  "path": ["Howard Schultz", "Starbucks", "Frappuccino", "Strawberry"],
//	  "path_length": 3,
//	  "visited_count": 14,
//	  "adjacency_list": {"Howard Schultz": ["Starbucks"], ...},
//	  "duration_ms": 5230,
//	  "budget_exceeded": false,
//	  "strategy": "greedy"
//	}
//
// Only one find_path crawl runs at a time. A second call while one is
// running fails with ErrorCodeSearchInProgress.
//
// # Tool: rank_links
//
//	Request:
//	{"name": "rank_links", "arguments": {"title": "Starbucks", "target": "Strawberry", "limit": 5}}
//
//	Response:
//	{
//	  "candidates": [{"rank": 1, "title": "Frappuccino", "score": 41.5}, ...],
//	  "target_in_top": false
//	}
//
// # Error Handling
//
// Handlers return *MCPError values:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (fetch failures, database)
//   - -32001: Page not found
//   - -32002: Search in progress
//   - -32004: Empty title
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "wikipath": {
//	      "command": "/usr/local/bin/wikipath",
//	      "args": ["serve"],
//	      "env": {
//	        "WIKIPATH_SEARCH_MAX_STEPS": "500"
//	      }
//	    }
//	  }
//	}
//
// # Logging
//
// The server logs to stderr; stdout is reserved for the protocol.
package mcp
