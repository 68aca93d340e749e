package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// findPathTool returns the tool definition for find_path
func findPathTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_path",
		Description: "Find a chain of Wikipedia links from a source page to a target page using a relevance guided crawl",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Title of the page to start from",
				},
				"target": map[string]interface{}{
					"type":        "string",
					"description": "Title of the page to reach (matched case-insensitively)",
				},
				"neighbors_to_check": map[string]interface{}{
					"type":        "integer",
					"description": "Best scoring links kept per expanded page (1-100)",
					"minimum":     1,
					"maximum":     maxNeighbors,
				},
				"use_bfs": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, expand breadth first instead of greedy best first",
				},
				"word_uniqueness": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, weight title words by how rare they are in the corpus",
				},
				"max_steps": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of pages to expand, 0 for no limit",
					"minimum":     0,
				},
			},
			Required: []string{"source", "target"},
		},
	}
}

// rankLinksTool returns the tool definition for rank_links
func rankLinksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "rank_links",
		Description: "Score the outbound links of a page against a target page's word profile",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Title of the page whose links are ranked",
				},
				"target": map[string]interface{}{
					"type":        "string",
					"description": "Title of the page whose text builds the profile",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of candidates to return (1-500)",
					"minimum":     1,
					"maximum":     maxRankLimit,
				},
				"word_uniqueness": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, weight title words by how rare they are in the corpus",
				},
			},
			Required: []string{"title", "target"},
		},
	}
}

// getPageTool returns the tool definition for get_page
func getPageTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_page",
		Description: "Look up a page: whether it exists, its outbound links and optionally its plain text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Page title",
				},
				"include_text": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include the page's plain text",
					"default":     false,
				},
			},
			Required: []string{"title"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report page cache statistics and the server's search defaults",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
