package render

import (
	"image"
	"sync"
	"time"
)

const (
	// LargeGridCells is the cell count above which renders are coalesced.
	LargeGridCells = 4096
	// DefaultDelay is the coalescing window for large grids.
	DefaultDelay = 50 * time.Millisecond
)

// Func produces a preview. It is called at run time, not at trigger time, so
// it should read the current grid.
type Func func() (*image.RGBA, error)

// Scheduler runs preview renders, coalescing bursts of requests for large
// grids into a single trailing render. Results are kept in request order:
// a render finishing after a newer one never replaces the newer result.
type Scheduler struct {
	delay time.Duration

	mu      sync.Mutex
	seq     uint64
	pending Func
	timer   *time.Timer
	stored  uint64
	latest  *image.RGBA
	err     error
	renders int

	runMu sync.Mutex
}

// NewScheduler returns a scheduler with the given coalescing delay. A
// non-positive delay renders every request immediately.
func NewScheduler(delay time.Duration) *Scheduler {
	return &Scheduler{delay: delay}
}

// Trigger requests a render of a grid with the given number of cells.
func (s *Scheduler) Trigger(cells int, fn Func) {
	s.mu.Lock()
	s.seq++
	seq := s.seq

	if cells <= LargeGridCells || s.delay <= 0 {
		s.stopLocked()
		s.mu.Unlock()
		s.run(seq, fn)
		return
	}

	s.pending = fn
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.fire(seq) })
	s.mu.Unlock()
}

// Flush runs any pending render now and waits for in-flight renders.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	fn, seq := s.pending, s.seq
	s.stopLocked()
	s.mu.Unlock()

	if fn != nil {
		s.run(seq, fn)
		return
	}
	// wait for an in-flight render
	s.runMu.Lock()
	defer s.runMu.Unlock()
}

// Latest flushes and returns the most recent render result. The image is nil
// when nothing has been rendered yet.
func (s *Scheduler) Latest() (*image.RGBA, error) {
	s.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.err
}

// Renders reports how many renders have actually run.
func (s *Scheduler) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Pending reports whether a coalesced render is waiting to run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Stop drops any pending render.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
}

func (s *Scheduler) fire(seq uint64) {
	s.mu.Lock()
	if seq != s.seq || s.pending == nil {
		s.mu.Unlock()
		return
	}
	fn := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	s.run(seq, fn)
}

func (s *Scheduler) run(seq uint64, fn Func) {
	s.runMu.Lock()
	img, err := fn()
	s.runMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders++
	if seq < s.stored {
		return
	}
	s.stored = seq
	s.latest, s.err = img, err
}
