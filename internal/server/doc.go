// Package server implements the MCP (Model Context Protocol) server for brick mosaic tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the mosaic engine,
// renderer and instruction exporter through the MCP protocol. A session holds
// one source image, one custom color list and one engine, so tools build on
// each other: load an image, generate, edit, then render or export.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Source and generation:
//   - mosaic_load_image: Load (and optionally crop) the source image
//   - mosaic_generate: Map the image onto a stud grid
//
// Palette:
//   - mosaic_set_custom_colors: Replace custom colors
//   - mosaic_import_colors: Import custom colors from CSV
//   - mosaic_remove_color: Exclude a color and regenerate
//   - mosaic_reset_palette: Restore excluded colors
//   - mosaic_palette: List built-in, custom and active colors
//
// Editing:
//   - mosaic_paint: Recolor or reshape one stud
//   - mosaic_erase: Remove the edit on one stud
//   - mosaic_pick_color: Read the color of one stud
//   - mosaic_pointer_to_cell: Map preview coordinates to a stud
//   - mosaic_reset_edits: Discard all edits
//
// Output:
//   - mosaic_usage: Stud counts per color
//   - mosaic_grid: Dimensions and cells
//   - mosaic_render: PNG preview, optionally with section lines
//   - mosaic_export_instructions: Sectioned build instructions
//
// # Rendering
//
// Every tool that changes the grid schedules a preview render. Grids above
// render.LargeGridCells are coalesced, so a burst of paints costs one render.
// mosaic_render flushes any pending render before answering.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Edits on cells outside the grid are not errors; they report changed=false.
//
// # Usage
//
//	srv := server.New(server.Options{Config: cfg, Logger: log})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
