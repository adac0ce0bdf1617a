package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Composition
		{
			Name:        "mosaic_compose",
			Description: "Rebuild an image as a photo mosaic from the tile repository and write it as PNG into the results directory. Returns the output path, size and grid.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"target": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image to rebuild",
					},
					"single": map[string]interface{}{
						"type":        "boolean",
						"description": "Compose on a single thread. Default false",
						"default":     false,
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Number of parallel workers; 4 splits the image into quadrants. Default from configuration",
					},
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Seed for tile selection; the same seed reproduces the same mosaic. Default from configuration",
					},
					"on_tile_error": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"abort", "skip", "fallback"},
						"description": "What to do when a tile cannot be decoded. Default abort",
					},
				},
				"required": []string{"target"},
			},
		},

		// Tile repository
		{
			Name:        "mosaic_scan",
			Description: "Recursively import JPEG and PNG images from a folder into the tile repository, then rebuild and save the color index.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the folder of source images",
					},
				},
				"required": []string{"dir"},
			},
		},

		// Index inspection
		{
			Name:        "mosaic_index_info",
			Description: "Report the number of colors and tiles in the color index and list the first colors in index order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of colors to list. Default 10",
						"default":     10,
					},
				},
			},
		},
		{
			Name:        "mosaic_nearest_color",
			Description: "Find the index color nearest to a given color and the tiles recorded under it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"hex": map[string]interface{}{
						"type":        "string",
						"description": "Color as #RRGGBB",
					},
				},
				"required": []string{"hex"},
			},
		},

		// Color extraction
		{
			Name:        "mosaic_average_color",
			Description: "Compute the average color of an image file, as used to index tiles.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
