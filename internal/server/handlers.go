package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/brick-mosaic-mcp/internal/geometry"
	"github.com/ironsheep/brick-mosaic-mcp/internal/imaging"
	"github.com/ironsheep/brick-mosaic-mcp/internal/instructions"
	"github.com/ironsheep/brick-mosaic-mcp/internal/mosaic"
	"github.com/ironsheep/brick-mosaic-mcp/internal/palette"
	"github.com/ironsheep/brick-mosaic-mcp/internal/render"
	"github.com/ironsheep/brick-mosaic-mcp/internal/shape"
)

// Output file names written by mosaic_export_instructions.
const (
	InstructionsFile = "instructions.json"
	LegendFile       = "legend.csv"
)

// ErrNoImage is returned by tools that need a loaded source image.
var ErrNoImage = errors.New("no image loaded; call mosaic_load_image first")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mosaic_generate", "mosaic_paint").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.WithField("tool", params.Name).WithError(err).Warn("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Calls the engine, renderer or exporter
//  4. Schedules a preview render when the grid changed
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Source
	case "mosaic_load_image":
		return s.handleLoadImage(args)

	// Generation
	case "mosaic_generate":
		return s.handleGenerate(ctx, args)

	// Palette
	case "mosaic_set_custom_colors":
		return s.handleSetCustomColors(ctx, args)
	case "mosaic_import_colors":
		return s.handleImportColors(ctx, args)
	case "mosaic_remove_color":
		return s.handleRemoveColor(ctx, args)
	case "mosaic_reset_palette":
		return s.handleResetPalette(ctx)
	case "mosaic_palette":
		return s.handlePalette(args)

	// Editing
	case "mosaic_paint":
		return s.handlePaint(args)
	case "mosaic_erase":
		return s.handleErase(args)
	case "mosaic_pick_color":
		return s.handlePickColor(args)
	case "mosaic_pointer_to_cell":
		return s.handlePointerToCell(args)
	case "mosaic_reset_edits":
		return s.handleResetEdits()

	// Output
	case "mosaic_usage":
		return s.engine.Usage(), nil
	case "mosaic_grid":
		return s.handleGrid(args)
	case "mosaic_render":
		return s.handleRender(args)
	case "mosaic_export_instructions":
		return s.handleExportInstructions(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// currentMode is the shape of the last generation, or the configured default.
func (s *Server) currentMode() shape.Mode {
	if req, ok := s.engine.Request(); ok && req.Mode != shape.None {
		return shape.Normalize(string(req.Mode))
	}
	return s.cfg.PixelMode
}

// renderCurrent draws the effective grid. A non-positive cellSize uses the
// grid's computed cell size.
func (s *Server) renderCurrent(cellSize int, mode shape.Mode) (*image.RGBA, error) {
	dims := s.engine.Dimensions()
	if cellSize <= 0 {
		cellSize = dims.CellSize
	}
	return render.Render(s.engine.Grid(), dims.Width, dims.Height, cellSize, mode)
}

// scheduleRender queues a preview of the current grid.
func (s *Server) scheduleRender() {
	dims := s.engine.Dimensions()
	s.scheduler.Trigger(dims.Cells(), func() (*image.RGBA, error) {
		return s.renderCurrent(0, s.currentMode())
	})
}

// === Source Handlers ===

type loadImageArgs struct {
	Path             string  `json:"path"`
	CropAspectWidth  int     `json:"crop_aspect_width"`
	CropAspectHeight int     `json:"crop_aspect_height"`
	CropFraction     float64 `json:"crop_fraction"`
}

type loadImageResult struct {
	*imaging.ImageInfo

	Path    string `json:"path"`
	Cropped bool   `json:"cropped"`

	// SourceWidth, SourceHeight and SourceKey describe the image used for
	// sampling, which differs from the file when cropped.
	SourceWidth  int    `json:"source_width"`
	SourceHeight int    `json:"source_height"`
	SourceKey    string `json:"source_key"`
}

func (s *Server) handleLoadImage(args json.RawMessage) (interface{}, error) {
	var a loadImageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	// Re-read the file on every load so edits on disk are picked up.
	s.cache.Evict(a.Path)
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	src, err := s.cache.LoadSource(a.Path)
	if err != nil {
		return nil, err
	}

	cropped := false
	if a.CropAspectWidth > 0 || a.CropAspectHeight > 0 {
		fraction := a.CropFraction
		if fraction == 0 {
			fraction = imaging.DefaultCropFraction
		}
		img, err := imaging.CropToAspect(src.Image, a.CropAspectWidth, a.CropAspectHeight, fraction)
		if err != nil {
			return nil, err
		}
		src = imaging.NewSource(img)
		src.Path = a.Path
		cropped = true
	}

	s.session.Lock()
	s.source = src
	s.session.Unlock()

	b := src.Bounds()
	s.log.WithField("path", a.Path).WithField("key", src.Key).Info("image loaded")
	return &loadImageResult{
		ImageInfo:    info,
		Path:         a.Path,
		Cropped:      cropped,
		SourceWidth:  b.Dx(),
		SourceHeight: b.Dy(),
		SourceKey:    src.Key,
	}, nil
}

// === Generation Handlers ===

type generateArgs struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	SnapToBase bool    `json:"snap_to_base"`
	Mode       string  `json:"mode"`
	Filter     *string `json:"filter"`
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
}

type generateResult struct {
	*mosaic.Result
	Mode   shape.Mode    `json:"mode"`
	Filter string        `json:"filter"`
	Usage  mosaic.Report `json:"usage"`
}

func (s *Server) handleGenerate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a generateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	s.session.Lock()
	src := s.source
	custom := append([]palette.Color(nil), s.custom...)
	s.session.Unlock()
	if src == nil {
		return nil, ErrNoImage
	}

	prev, hasPrev := s.engine.Request()
	req := mosaic.Request{
		Source: src,
		Width:  a.Width,
		Height: a.Height,
		Mode:   s.currentMode(),
		Custom: custom,
	}
	if hasPrev {
		req.Filter = prev.Filter
		if req.Width == 0 {
			req.Width = prev.Width
		}
		if req.Height == 0 {
			req.Height = prev.Height
		}
	}
	if req.Width == 0 {
		req.Width = geometry.DefaultBaseGrid
	}
	if req.Height == 0 {
		req.Height = geometry.DefaultBaseGrid
	}
	if a.SnapToBase {
		sizes := geometry.AllowedSizes(geometry.DefaultBaseGrid, geometry.DefaultMaxGrid)
		req.Width = geometry.ClampToAllowed(req.Width, sizes)
		req.Height = geometry.ClampToAllowed(req.Height, sizes)
	}
	if a.Mode != "" {
		m, ok := shape.Parse(a.Mode)
		if !ok || m == shape.None {
			return nil, fmt.Errorf("unknown mode %q", a.Mode)
		}
		req.Mode = m
	}
	switch {
	case a.Filter != nil:
		req.Filter = *a.Filter
	case a.Hue != 0 || a.Saturation != 0 || a.Brightness != 0 || a.Contrast != 0:
		req.Filter = imaging.FilterFromAdjustments(a.Hue, a.Saturation, a.Brightness, a.Contrast)
	}

	res, err := s.engine.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	s.scheduleRender()

	return &generateResult{
		Result: res,
		Mode:   req.Mode,
		Filter: req.Filter,
		Usage:  s.engine.Usage(),
	}, nil
}

// regenerate repeats the last generation with the current custom colors.
// It is a no-op before the first generation.
func (s *Server) regenerate(ctx context.Context) (*mosaic.Result, error) {
	req, ok := s.engine.Request()
	if !ok {
		return nil, nil
	}
	s.session.Lock()
	req.Custom = append([]palette.Color(nil), s.custom...)
	s.session.Unlock()

	res, err := s.engine.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	s.scheduleRender()
	return res, nil
}

// === Palette Handlers ===

type setCustomColorsArgs struct {
	Colors []palette.Color `json:"colors"`
}

type customColorsResult struct {
	Colors      []palette.Color      `json:"colors"`
	Skipped     []palette.SkippedRow `json:"skipped,omitempty"`
	Regenerated *mosaic.Result       `json:"regenerated,omitempty"`
}

func (s *Server) handleSetCustomColors(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a setCustomColorsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	colors, err := palette.NormalizeCustom(a.Colors)
	if err != nil {
		return nil, err
	}
	return s.applyCustom(ctx, colors, nil)
}

type importColorsArgs struct {
	Path    string `json:"path"`
	CSV     string `json:"csv"`
	Replace bool   `json:"replace"`
}

func (s *Server) handleImportColors(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a importColorsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var r io.Reader
	switch {
	case a.Path != "":
		f, err := os.Open(a.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV: %w", err)
		}
		defer f.Close()
		r = f
	case a.CSV != "":
		r = strings.NewReader(a.CSV)
	default:
		return nil, errors.New("path or csv is required")
	}

	var existing []palette.Color
	if !a.Replace {
		s.session.Lock()
		existing = append(existing, s.custom...)
		s.session.Unlock()
	}

	imported, err := palette.ImportCSV(r, existing)
	if err != nil {
		return nil, err
	}
	colors, err := palette.NormalizeCustom(append(existing, imported.Colors...))
	if err != nil {
		return nil, err
	}
	return s.applyCustom(ctx, colors, imported.Skipped)
}

func (s *Server) applyCustom(ctx context.Context, colors []palette.Color, skipped []palette.SkippedRow) (interface{}, error) {
	s.session.Lock()
	previous := s.custom
	s.custom = colors
	s.session.Unlock()

	kept := make(map[string]bool, len(colors))
	for _, c := range colors {
		kept[c.ID] = true
	}
	for _, c := range previous {
		if !kept[c.ID] {
			s.engine.RevertColorOnly(c.ID)
		}
	}

	res, err := s.regenerate(ctx)
	if err != nil {
		return nil, err
	}
	return &customColorsResult{Colors: colors, Skipped: skipped, Regenerated: res}, nil
}

type removeColorArgs struct {
	ID string `json:"id"`
}

type paletteChangeResult struct {
	Changed  bool          `json:"changed"`
	Excluded []string      `json:"excluded"`
	Usage    mosaic.Report `json:"usage"`
}

func (s *Server) handleRemoveColor(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a removeColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ID == "" {
		return nil, errors.New("id is required")
	}
	changed, err := s.engine.RemovePaletteColor(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if changed {
		s.scheduleRender()
	}
	return &paletteChangeResult{Changed: changed, Excluded: s.engine.ExcludedColors(), Usage: s.engine.Usage()}, nil
}

func (s *Server) handleResetPalette(ctx context.Context) (interface{}, error) {
	changed, err := s.engine.ResetExcludedColors(ctx)
	if err != nil {
		return nil, err
	}
	if changed {
		s.scheduleRender()
	}
	return &paletteChangeResult{Changed: changed, Excluded: s.engine.ExcludedColors(), Usage: s.engine.Usage()}, nil
}

type paletteArgs struct {
	Mode string `json:"mode"`
}

type paletteResult struct {
	Mode     shape.Mode      `json:"mode"`
	BuiltIn  []palette.Color `json:"built_in"`
	Custom   []palette.Color `json:"custom"`
	Excluded []string        `json:"excluded"`
	// Active is the palette the current grid was matched against, in
	// matching priority order.
	Active []palette.Color `json:"active"`
}

func (s *Server) handlePalette(args json.RawMessage) (interface{}, error) {
	var a paletteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	mode := s.currentMode()
	if a.Mode != "" {
		m, ok := shape.Parse(a.Mode)
		if !ok || m == shape.None {
			return nil, fmt.Errorf("unknown mode %q", a.Mode)
		}
		mode = m
	}

	s.session.Lock()
	custom := append([]palette.Color{}, s.custom...)
	s.session.Unlock()

	active := []palette.Color{}
	for _, e := range s.engine.Palette().Entries() {
		active = append(active, e.Color)
	}
	return &paletteResult{
		Mode:     mode,
		BuiltIn:  palette.BuiltIn(mode),
		Custom:   custom,
		Excluded: s.engine.ExcludedColors(),
		Active:   active,
	}, nil
}

// === Editing Handlers ===

type cellArgs struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type paintArgs struct {
	cellArgs
	ColorID string `json:"color_id"`
	Shape   string `json:"shape"`
}

type editResult struct {
	Changed bool               `json:"changed"`
	Cell    *mosaic.MappedPixel `json:"cell,omitempty"`
}

func (s *Server) editResult(changed bool, row, col int) *editResult {
	res := &editResult{Changed: changed}
	if px, ok := s.engine.Cell(row, col); ok {
		res.Cell = &px
	}
	if changed {
		s.scheduleRender()
	}
	return res
}

func (s *Server) handlePaint(args json.RawMessage) (interface{}, error) {
	var a paintArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	mode, ok := shape.Parse(a.Shape)
	if !ok {
		return nil, fmt.Errorf("unknown shape %q", a.Shape)
	}
	if a.ColorID == "" && mode == shape.None {
		return nil, errors.New("color_id or shape is required")
	}
	changed := s.engine.Paint(a.Row, a.Col, a.ColorID, mode)
	return s.editResult(changed, a.Row, a.Col), nil
}

func (s *Server) handleErase(args json.RawMessage) (interface{}, error) {
	var a cellArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	changed := s.engine.Erase(a.Row, a.Col)
	return s.editResult(changed, a.Row, a.Col), nil
}

type pickColorResult struct {
	Found bool   `json:"found"`
	ID    string `json:"color_id,omitempty"`
	Name  string `json:"name,omitempty"`
	Hex   string `json:"hex,omitempty"`
}

func (s *Server) handlePickColor(args json.RawMessage) (interface{}, error) {
	var a cellArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	id, ok := s.engine.PickColor(a.Row, a.Col)
	if !ok {
		return &pickColorResult{}, nil
	}
	res := &pickColorResult{Found: true, ID: id}
	if px, ok := s.engine.Cell(a.Row, a.Col); ok {
		res.Hex = px.Hex
	}
	if entry, ok := s.engine.Palette().Lookup(id); ok {
		res.Name = entry.Name
	}
	return res, nil
}

type pointerArgs struct {
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Container geometry.Rect `json:"container"`
}

type pointerResult struct {
	Inside bool                `json:"inside"`
	Row    int                 `json:"row"`
	Col    int                 `json:"col"`
	Cell   *mosaic.MappedPixel `json:"cell,omitempty"`
}

func (s *Server) handlePointerToCell(args json.RawMessage) (interface{}, error) {
	var a pointerArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	cell, ok := geometry.PointerToCell(a.X, a.Y, a.Container, s.engine.Dimensions())
	if !ok {
		return &pointerResult{}, nil
	}
	res := &pointerResult{Inside: true, Row: cell.Row, Col: cell.Col}
	if px, ok := s.engine.Cell(cell.Row, cell.Col); ok {
		res.Cell = &px
	}
	return res, nil
}

func (s *Server) handleResetEdits() (interface{}, error) {
	changed := s.engine.ResetAll()
	if changed {
		s.scheduleRender()
	}
	return &editResult{Changed: changed}, nil
}

// === Output Handlers ===

type gridArgs struct {
	IncludeCells bool `json:"include_cells"`
}

type gridResult struct {
	geometry.Dimensions
	Generation uint64               `json:"generation"`
	Mode       shape.Mode           `json:"mode"`
	Overrides  int                  `json:"overrides"`
	LastError  string               `json:"last_error,omitempty"`
	Cells      []mosaic.MappedPixel `json:"cells,omitempty"`
}

func (s *Server) handleGrid(args json.RawMessage) (interface{}, error) {
	var a gridArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	res := &gridResult{
		Dimensions: s.engine.Dimensions(),
		Generation: s.engine.Generation(),
		Mode:       s.currentMode(),
		Overrides:  len(s.engine.Overrides()),
	}
	if err := s.engine.LastError(); err != nil {
		res.LastError = err.Error()
	}
	if a.IncludeCells {
		res.Cells = s.engine.Grid()
	}
	return res, nil
}

type renderArgs struct {
	CellSize    int    `json:"cell_size"`
	Mode        string `json:"mode"`
	Sections    bool   `json:"sections"`
	SectionSize int    `json:"section_size"`
	OutputPath  string `json:"output_path"`
}

type savedImageResult struct {
	Path     string `json:"path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	CellSize int    `json:"cell_size"`
}

func (s *Server) handleRender(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if !s.engine.HasGrid() {
		return nil, instructions.ErrNoGrid
	}

	mode := s.currentMode()
	custom := a.CellSize > 0
	if a.Mode != "" {
		m, ok := shape.Parse(a.Mode)
		if !ok || m == shape.None {
			return nil, fmt.Errorf("unknown mode %q", a.Mode)
		}
		custom = custom || m != mode
		mode = m
	}

	var img *image.RGBA
	var err error
	if !custom {
		// The scheduled preview already reflects every edit once flushed.
		img, err = s.scheduler.Latest()
	}
	if img == nil && err == nil {
		img, err = s.renderCurrent(a.CellSize, mode)
	}
	if err != nil {
		return nil, err
	}

	cellSize := a.CellSize
	if cellSize <= 0 {
		cellSize = s.engine.Dimensions().CellSize
	}
	var out image.Image = img
	if a.Sections {
		size := a.SectionSize
		if size <= 0 {
			size = s.cfg.SectionSize
		}
		out = render.DrawSections(img, render.SectionOptions{
			SectionSize: size,
			CellSize:    cellSize,
			ShowNumbers: true,
		})
	}

	if a.OutputPath != "" {
		if err := render.SavePNG(a.OutputPath, out); err != nil {
			return nil, err
		}
		b := out.Bounds()
		return &savedImageResult{Path: a.OutputPath, Width: b.Dx(), Height: b.Dy(), CellSize: cellSize}, nil
	}
	return render.Encode(out, cellSize)
}

type exportArgs struct {
	SectionSize int    `json:"section_size"`
	OutputDir   string `json:"output_dir"`
}

type exportFilesResult struct {
	Overview         instructions.Overview `json:"overview"`
	InstructionsPath string                `json:"instructions_path"`
	LegendPath       string                `json:"legend_path"`
}

func (s *Server) handleExportInstructions(args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	doc, err := s.buildInstructions(a.SectionSize)
	if err != nil {
		return nil, err
	}
	if a.OutputDir == "" {
		return doc, nil
	}

	if err := os.MkdirAll(a.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	res := &exportFilesResult{
		Overview:         doc.Overview,
		InstructionsPath: filepath.Join(a.OutputDir, InstructionsFile),
		LegendPath:       filepath.Join(a.OutputDir, LegendFile),
	}
	if err := instructions.WriteJSON(doc, res.InstructionsPath); err != nil {
		return nil, fmt.Errorf("failed to write instructions: %w", err)
	}
	if err := instructions.SaveLegendCSV(doc.Legend, res.LegendPath); err != nil {
		return nil, fmt.Errorf("failed to write legend: %w", err)
	}
	return res, nil
}

// buildInstructions exports the current grid. A generation that matched
// against an empty palette exports blank sections with an empty legend.
func (s *Server) buildInstructions(sectionSize int) (*instructions.Document, error) {
	req, ok := s.engine.Request()
	if !ok {
		return nil, instructions.ErrNoGrid
	}
	if sectionSize <= 0 {
		sectionSize = s.cfg.SectionSize
	}
	width, height := req.Width, req.Height
	if dims := s.engine.Dimensions(); dims.Cells() > 0 {
		width, height = dims.Width, dims.Height
	}
	return instructions.Build(s.engine.Grid(), width, height, sectionSize, s.engine.Usage().Combined())
}
