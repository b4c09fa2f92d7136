package mosaic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/brick-mosaic-mcp/internal/colorspace"
	"github.com/ironsheep/brick-mosaic-mcp/internal/geometry"
	"github.com/ironsheep/brick-mosaic-mcp/internal/imaging"
	"github.com/ironsheep/brick-mosaic-mcp/internal/palette"
	"github.com/ironsheep/brick-mosaic-mcp/internal/shape"
)

var (
	// ErrNoSource is returned when a run has no source image.
	ErrNoSource = errors.New("no source image")
	// ErrStale is returned by a run that was superseded before it finished.
	// Its results were discarded.
	ErrStale = errors.New("superseded by a newer generation")
	// ErrInvalidSize is returned for a non-positive target width or height.
	ErrInvalidSize = errors.New("grid width and height must be positive")
)

// Config holds engine settings that do not change between runs.
type Config struct {
	// BatchSize is passed to MapPixels.
	BatchSize int

	// DeviceScale is the device pixel ratio used for cell sizing.
	DeviceScale float64

	Metric colorspace.Metric

	// Background is composited under transparent source pixels.
	// The zero value means white.
	Background *colorspace.RGB

	// Logger receives generation events. Nil uses the standard logger.
	Logger *logrus.Entry

	// Yield is passed to MapPixels.
	Yield func()
}

// Request describes one generation.
type Request struct {
	Source *imaging.Source
	Width  int
	Height int

	// Filter is a tone descriptor for imaging.ParseFilter.
	Filter string

	// Mode selects the built-in palette. shape.None uses the full catalog.
	Mode shape.Mode

	// Custom colors are placed ahead of the built-ins. They must already be
	// validated (see palette.NormalizeCustom).
	Custom []palette.Color

	// BuiltIn, when non-nil, replaces the catalog colors for Mode.
	BuiltIn []palette.Color
}

// Result summarizes a committed generation.
type Result struct {
	Generation  uint64              `json:"generation"`
	Dimensions  geometry.Dimensions `json:"dimensions"`
	Resampled   bool                `json:"resampled"`
	PaletteSize int                 `json:"palette_size"`
	Overrides   int                 `json:"overrides"`
}

// Override is a manual edit of one cell.
//
// An empty ColorID keeps the base color and only changes the shape.
type Override struct {
	ColorID  string     `json:"color_id,omitempty"`
	Hex      string     `json:"hex,omitempty"`
	IsCustom bool       `json:"is_custom"`
	Shape    shape.Mode `json:"pixel_mode_override,omitempty"`
}

// Engine owns a mosaic's base grid, overlay and usage counts.
//
// Engine is safe for concurrent use. Edits are applied synchronously and are
// visible to the next read.
type Engine struct {
	cfg        Config
	background colorspace.RGB
	log        *logrus.Entry

	mu         sync.RWMutex
	generation uint64
	cancelRun  context.CancelFunc

	lastReq   *Request
	sampleKey imaging.SampleKey
	samples   []imaging.SampledPixel
	available *palette.Palette
	excluded  []string
	known     map[string]palette.Color

	dims    geometry.Dimensions
	base    []MappedPixel
	overlay map[int]Override
	counts  map[string]int

	usageDirty bool
	usage      Report
	lastErr    error
}

// NewEngine creates an engine with no grid.
func NewEngine(cfg Config) *Engine {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.DeviceScale <= 0 {
		cfg.DeviceScale = 1
	}
	bg := colorspace.White
	if cfg.Background != nil {
		bg = *cfg.Background
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		cfg:        cfg,
		background: bg,
		log:        log.WithField("component", "mosaic"),
		overlay:    make(map[int]Override),
		counts:     make(map[string]int),
		known:      make(map[string]palette.Color),
		usageDirty: true,
	}
}

// runState is what a run reads from the engine when it starts.
type runState struct {
	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	samples  []imaging.SampledPixel
	resample bool
	excluded []string
}

// Generate samples (or reuses samples of) req.Source and matches them
// against the palette req describes.
//
// It supersedes any run in progress. See the package documentation for how
// generations and the sample cache interact.
func (e *Engine) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Source == nil || req.Source.Image == nil {
		return nil, ErrNoSource
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, req.Width, req.Height)
	}
	filter, err := imaging.ParseFilter(req.Filter)
	if err != nil {
		return nil, err
	}
	builtIn := req.BuiltIn
	if builtIn == nil {
		builtIn = palette.BuiltIn(req.Mode)
	}
	full, err := palette.New(req.Custom, builtIn)
	if err != nil {
		return nil, fmt.Errorf("failed to build palette: %w", err)
	}

	key := imaging.SampleKey{
		Source: req.Source.Key,
		Width:  req.Width,
		Height: req.Height,
		Filter: filter.String(),
	}
	run := e.begin(ctx, key)
	defer run.cancel()

	log := e.log.WithFields(logrus.Fields{
		"generation": run.gen,
		"width":      req.Width,
		"height":     req.Height,
		"resample":   run.resample,
	})
	log.Debug("generation started")

	samples := run.samples
	if run.resample {
		samples, err = imaging.Sample(run.ctx, req.Source.Image, req.Width, req.Height, filter, e.background)
		if err != nil {
			return nil, e.fail(run.gen, log, fmt.Errorf("failed to sample image: %w", err))
		}
	}

	available := full.Without(run.excluded...)
	mapped, err := MapPixels(run.ctx, samples, available, MapOptions{
		BatchSize: e.cfg.BatchSize,
		Metric:    e.cfg.Metric,
		Yield:     e.cfg.Yield,
	})
	if err != nil {
		return nil, e.fail(run.gen, log, fmt.Errorf("failed to map pixels: %w", err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if run.gen != e.generation {
		log.Debug("stale generation discarded")
		return nil, ErrStale
	}
	e.cancelRun = nil

	reqCopy := req
	reqCopy.Custom = append([]palette.Color(nil), req.Custom...)
	if req.BuiltIn != nil {
		reqCopy.BuiltIn = append([]palette.Color{}, req.BuiltIn...)
	}
	e.lastReq = &reqCopy
	e.sampleKey = key
	e.samples = samples
	e.available = available
	for _, entry := range full.Entries() {
		e.known[entry.ID] = entry.Color
	}
	if run.resample {
		e.overlay = make(map[int]Override)
		e.excluded = nil
	}

	if len(mapped.Pixels) == 0 {
		e.base = nil
		e.dims = geometry.Dimensions{}
		e.overlay = make(map[int]Override)
	} else {
		e.base = mapped.Pixels
		e.dims = geometry.NewDimensions(req.Width, req.Height, e.cfg.DeviceScale)
		e.dropForeignOverridesLocked()
	}
	e.recountLocked()
	e.lastErr = nil

	log.WithFields(logrus.Fields{
		"palette":   available.Len(),
		"overrides": len(e.overlay),
	}).Debug("generation committed")

	return &Result{
		Generation:  run.gen,
		Dimensions:  e.dims,
		Resampled:   run.resample,
		PaletteSize: available.Len(),
		Overrides:   len(e.overlay),
	}, nil
}

// Regenerate repeats the last successful request with the current
// exclusions. It returns ErrNoSource if nothing was generated yet.
func (e *Engine) Regenerate(ctx context.Context) (*Result, error) {
	e.mu.RLock()
	req := e.lastReq
	e.mu.RUnlock()
	if req == nil {
		return nil, ErrNoSource
	}
	return e.Generate(ctx, *req)
}

// begin takes the next generation, cancels the run it supersedes and
// snapshots the state the new run needs.
func (e *Engine) begin(ctx context.Context, key imaging.SampleKey) runState {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelRun != nil {
		e.cancelRun()
	}
	e.generation++
	runCtx, cancel := context.WithCancel(ctx)
	e.cancelRun = cancel

	run := runState{
		gen:    e.generation,
		ctx:    runCtx,
		cancel: cancel,
	}
	if e.samples != nil && e.sampleKey == key {
		run.samples = e.samples
		run.excluded = append([]string(nil), e.excluded...)
	} else {
		run.resample = true
	}
	return run
}

// fail records err for a run that is still current, or turns it into
// ErrStale for one that was superseded.
func (e *Engine) fail(gen uint64, log *logrus.Entry, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		log.Debug("stale generation discarded")
		return ErrStale
	}
	e.cancelRun = nil
	e.lastErr = err
	log.WithError(err).Warn("generation failed, keeping previous grid")
	return err
}

// dropForeignOverridesLocked reverts overrides whose color is not in the
// available palette. Shape edits on those cells are kept.
func (e *Engine) dropForeignOverridesLocked() {
	for i, ov := range e.overlay {
		if i >= len(e.base) {
			delete(e.overlay, i)
			continue
		}
		if ov.ColorID == "" || e.available.Contains(ov.ColorID) {
			continue
		}
		if ov.Shape == shape.None {
			delete(e.overlay, i)
			continue
		}
		e.overlay[i] = Override{Shape: ov.Shape}
	}
}

// RemovePaletteColor excludes id from the palette, reverts edits that used
// it and regenerates. It returns false if id was already excluded or is not
// in the palette.
func (e *Engine) RemovePaletteColor(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	if e.lastReq == nil {
		e.mu.Unlock()
		return false, ErrNoSource
	}
	if !e.available.Contains(id) {
		e.mu.Unlock()
		return false, nil
	}
	e.excluded = append(e.excluded, id)
	e.available = e.available.Without(id)
	e.revertColorLocked(id)
	e.mu.Unlock()

	if _, err := e.Regenerate(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// ResetExcludedColors clears all exclusions and regenerates. It returns
// false when nothing was excluded.
func (e *Engine) ResetExcludedColors(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if len(e.excluded) == 0 {
		e.mu.Unlock()
		return false, nil
	}
	e.excluded = nil
	e.mu.Unlock()

	if _, err := e.Regenerate(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// ExcludedColors returns the excluded ids in the order they were removed.
func (e *Engine) ExcludedColors() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.excluded...)
}

// Generation returns the number of the latest run started.
func (e *Engine) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// LastError returns the error of the most recent failed run that was not
// superseded, cleared by the next successful commit.
func (e *Engine) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

// Dimensions returns the current grid dimensions. They are zero when there
// is no grid.
func (e *Engine) Dimensions() geometry.Dimensions {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dims
}

// HasGrid reports whether a non-empty grid has been generated.
func (e *Engine) HasGrid() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.base) > 0
}

// Palette returns the palette the current grid was matched against, minus
// any colors removed since.
func (e *Engine) Palette() *palette.Palette {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.available
}

// Request returns a copy of the last committed request.
func (e *Engine) Request() (Request, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastReq == nil {
		return Request{}, false
	}
	return *e.lastReq, true
}

// BaseGrid returns a copy of the base grid.
func (e *Engine) BaseGrid() []MappedPixel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]MappedPixel(nil), e.base...)
}

// Grid returns a copy of the effective grid: base cells with overrides
// applied, in row-major order.
func (e *Engine) Grid() []MappedPixel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]MappedPixel, len(e.base))
	for i := range e.base {
		out[i] = e.effectiveLocked(i)
	}
	return out
}

// Overrides returns a copy of the overlay keyed by flat index.
func (e *Engine) Overrides() map[int]Override {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[int]Override, len(e.overlay))
	for k, v := range e.overlay {
		out[k] = v
	}
	return out
}

func (e *Engine) effectiveLocked(i int) MappedPixel {
	px := e.base[i]
	ov, ok := e.overlay[i]
	if !ok {
		return px
	}
	if ov.ColorID != "" {
		px.ColorID = ov.ColorID
		px.Hex = ov.Hex
		px.IsCustom = ov.IsCustom
	}
	px.Shape = ov.Shape
	return px
}

// recountLocked rebuilds usage counts from the effective grid.
func (e *Engine) recountLocked() {
	counts := make(map[string]int)
	for i := range e.base {
		counts[e.effectiveLocked(i).ColorID]++
	}
	e.counts = counts
	e.usageDirty = true
}

func (e *Engine) moveCountLocked(from, to string) {
	if from == to {
		return
	}
	if from != "" {
		if e.counts[from] > 0 {
			e.counts[from]--
		}
		if e.counts[from] == 0 {
			delete(e.counts, from)
		}
	}
	if to != "" {
		e.counts[to]++
	}
	e.usageDirty = true
}
