package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the scanned sheet image",
	}
}

func areaProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Real-world area of the reference square (e.g. 1.0 for a 1 cm² square). Defaults to the configured value",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "leaf_analyze",
			Description: "Measure every leaf on a scanned sheet. Returns per-leaf area, perimeter, width, length and " +
				"width/length ratio calibrated against the reference square, plus aggregated statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":             pathProperty(),
					"real_area_square": areaProperty(),
					"include_overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Attach the annotated image as base64 PNG in processedImage",
						"default":     false,
					},
					"include_centroids": map[string]interface{}{
						"type":        "boolean",
						"description": "Add each leaf's pixel centroid (cx, cy)",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "leaf_detect_shapes",
			Description: "List every traced boundary with its classification (square, leaf or discard), pixel area, " +
				"perimeter, simplified vertex count, convexity and maximum corner cosine. Useful to tune thresholds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "leaf_calibrate",
			Description: "Find the reference square and return the linear and area scale factors derived from it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":             pathProperty(),
					"real_area_square": areaProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "leaf_overlay",
			Description: "Render the sheet with leaf outlines, the reference square and leaf numbers drawn on top. Returns a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":             pathProperty(),
					"real_area_square": areaProperty(),
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
