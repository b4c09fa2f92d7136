package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var shapeEnum = []string{"circle", "square", "circle_plate", "square_plate"}

// cellSchema is the input schema of tools addressing a single stud.
func cellSchema(extra map[string]interface{}, required ...string) map[string]interface{} {
	props := map[string]interface{}{
		"row": map[string]interface{}{
			"type":        "integer",
			"description": "Stud row (0-based, from top)",
		},
		"col": map[string]interface{}{
			"type":        "integer",
			"description": "Stud column (0-based, from left)",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   append([]string{"row", "col"}, required...),
	}
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Source
		{
			Name:        "mosaic_load_image",
			Description: "Load the source image for the mosaic. Optionally crops a centered region with the given aspect ratio first. Returns dimensions, format and the content key.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file (PNG, JPEG, GIF, WebP, BMP, TIFF)",
					},
					"crop_aspect_width": map[string]interface{}{
						"type":        "integer",
						"description": "Aspect ratio width for a centered crop. Requires crop_aspect_height.",
					},
					"crop_aspect_height": map[string]interface{}{
						"type":        "integer",
						"description": "Aspect ratio height for a centered crop.",
					},
					"crop_fraction": map[string]interface{}{
						"type":        "number",
						"description": "Fraction of the limiting side kept by the crop. Default 0.9",
						"default":     0.9,
					},
				},
				"required": []string{"path"},
			},
		},

		// Generation
		{
			Name:        "mosaic_generate",
			Description: "Map the loaded image onto a stud grid using the palette for the chosen shape plus custom colors. Changing size, filter or image clears manual edits.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Grid width in studs. Default: last width, else 32",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Grid height in studs. Default: last height, else 32",
					},
					"snap_to_base": map[string]interface{}{
						"type":        "boolean",
						"description": "Round width and height to the nearest multiple of 32 up to 384",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        shapeEnum,
						"description": "Stud shape; selects the built-in palette and the render style",
					},
					"filter": map[string]interface{}{
						"type":        "string",
						"description": "Tone filter, e.g. \"hue-rotate(30deg) saturate(1.2)\". Overrides the adjustment fields.",
					},
					"hue":        map[string]interface{}{"type": "number", "description": "Hue rotation in degrees"},
					"saturation": map[string]interface{}{"type": "number", "description": "Saturation adjustment in percent (-100..100)"},
					"brightness": map[string]interface{}{"type": "number", "description": "Brightness adjustment in percent (-100..100)"},
					"contrast":   map[string]interface{}{"type": "number", "description": "Contrast adjustment in percent (-100..100)"},
				},
			},
		},

		// Palette
		{
			Name:        "mosaic_set_custom_colors",
			Description: "Replace the custom colors. Custom colors are matched before built-in colors. Regenerates the mosaic if one exists.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"colors": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"id":   map[string]interface{}{"type": "string"},
								"name": map[string]interface{}{"type": "string"},
								"hex":  map[string]interface{}{"type": "string", "description": "#RRGGBB"},
							},
							"required": []string{"name", "hex"},
						},
						"description": "Custom colors in priority order",
					},
				},
				"required": []string{"colors"},
			},
		},
		{
			Name:        "mosaic_import_colors",
			Description: "Import custom colors from CSV with \"Color Name\" and \"Hex Code\" columns. Invalid and duplicate rows are skipped and reported.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path to a CSV file",
					},
					"csv": map[string]interface{}{
						"type":        "string",
						"description": "CSV content, used when path is empty",
					},
					"replace": map[string]interface{}{
						"type":        "boolean",
						"description": "Replace existing custom colors instead of appending",
					},
				},
			},
		},
		{
			Name:        "mosaic_remove_color",
			Description: "Exclude a color from the palette. Cells painted with it revert to their base color and the mosaic is regenerated.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": map[string]interface{}{
						"type":        "string",
						"description": "Palette color id",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "mosaic_reset_palette",
			Description: "Restore every excluded color and regenerate.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "mosaic_palette",
			Description: "List the built-in colors for a shape, the custom colors, excluded ids and the active palette.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        shapeEnum,
						"description": "Shape whose built-in colors to list. Default: current mode",
					},
				},
			},
		},

		// Editing
		{
			Name:        "mosaic_paint",
			Description: "Paint one stud with a palette color and/or shape. Omitting color_id changes only the shape.",
			InputSchema: cellSchema(map[string]interface{}{
				"color_id": map[string]interface{}{
					"type":        "string",
					"description": "Palette color id",
				},
				"shape": map[string]interface{}{
					"type":        "string",
					"enum":        shapeEnum,
					"description": "Per-stud shape override",
				},
			}),
		},
		{
			Name:        "mosaic_erase",
			Description: "Remove the manual edit on one stud, restoring its generated color and shape.",
			InputSchema: cellSchema(nil),
		},
		{
			Name:        "mosaic_pick_color",
			Description: "Return the color currently shown on one stud.",
			InputSchema: cellSchema(nil),
		},
		{
			Name:        "mosaic_pointer_to_cell",
			Description: "Map a pointer position over a displayed preview to a stud. The preview is assumed scaled to fit and centered in the container.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": "number", "description": "Pointer X"},
					"y": map[string]interface{}{"type": "number", "description": "Pointer Y"},
					"container": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"left":   map[string]interface{}{"type": "number"},
							"top":    map[string]interface{}{"type": "number"},
							"width":  map[string]interface{}{"type": "number"},
							"height": map[string]interface{}{"type": "number"},
						},
						"required": []string{"width", "height"},
					},
				},
				"required": []string{"x", "y", "container"},
			},
		},
		{
			Name:        "mosaic_reset_edits",
			Description: "Discard every manual edit.",
			InputSchema: emptySchema(),
		},

		// Output
		{
			Name:        "mosaic_usage",
			Description: "Stud counts per color, built-in and custom, sorted by count.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "mosaic_grid",
			Description: "Grid dimensions and, optionally, every stud with its color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"include_cells": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the full cell list",
					},
				},
			},
		},
		{
			Name:        "mosaic_render",
			Description: "Render the mosaic preview as PNG. Returns base64 image data, or writes to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"cell_size": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels per stud. Default: computed from grid size",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        shapeEnum,
						"description": "Override the render shape",
					},
					"sections": map[string]interface{}{
						"type":        "boolean",
						"description": "Overlay instruction section lines and numbers",
					},
					"section_size": map[string]interface{}{
						"type":        "integer",
						"description": "Section size in studs. Default 32",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Write the PNG here instead of returning it",
					},
				},
			},
		},
		{
			Name:        "mosaic_export_instructions",
			Description: "Split the mosaic into numbered sections with a global color legend ordered by usage. Returns the document, or writes instructions.json and legend.csv to output_dir.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"section_size": map[string]interface{}{
						"type":        "integer",
						"description": "Section size in studs. Default 32",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for instructions.json and legend.csv",
					},
				},
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
