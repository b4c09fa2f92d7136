package mosaic

import "github.com/ironsheep/brick-mosaic-mcp/internal/shape"

// Paint writes an override at (row, col).
//
// colorID must name a color in the available palette; an empty colorID
// keeps the cell's current effective color, so a call with only mode changes
// just the stud shape. An empty mode keeps any shape override already on
// the cell. Usage counts move only when the effective color id changes.
//
// It returns false, changing nothing, when the cell is out of range, the
// color is unknown, or neither a color nor a shape was given.
func (e *Engine) Paint(row, col int, colorID string, mode shape.Mode) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.indexLocked(row, col)
	if !ok {
		return false
	}
	if colorID == "" && mode == shape.None {
		return false
	}

	current := e.effectiveLocked(i)
	next := Override{
		ColorID:  current.ColorID,
		Hex:      current.Hex,
		IsCustom: current.IsCustom,
		Shape:    current.Shape,
	}
	if colorID != "" {
		entry, found := e.available.Lookup(colorID)
		if !found {
			return false
		}
		next.ColorID = entry.ID
		next.Hex = entry.Hex
		next.IsCustom = entry.IsCustom
	}
	if mode != shape.None {
		next.Shape = shape.Normalize(string(mode))
	}

	e.overlay[i] = next
	e.moveCountLocked(current.ColorID, next.ColorID)
	return true
}

// Erase removes the override at (row, col), restoring the base color and
// shape. It returns false if the cell is out of range or has no override.
func (e *Engine) Erase(row, col int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.indexLocked(row, col)
	if !ok {
		return false
	}
	if _, edited := e.overlay[i]; !edited {
		return false
	}

	prev := e.effectiveLocked(i).ColorID
	delete(e.overlay, i)
	e.moveCountLocked(prev, e.base[i].ColorID)
	return true
}

// RevertColorOnly restores the base color of every cell painted with
// colorID. Cells that also carry a shape override keep it; all others lose
// their override entirely. It returns the number of cells reverted.
func (e *Engine) RevertColorOnly(colorID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revertColorLocked(colorID)
}

func (e *Engine) revertColorLocked(colorID string) int {
	if colorID == "" {
		return 0
	}
	n := 0
	for i, ov := range e.overlay {
		if ov.ColorID != colorID {
			continue
		}
		if ov.Shape == shape.None {
			delete(e.overlay, i)
		} else {
			e.overlay[i] = Override{Shape: ov.Shape}
		}
		e.moveCountLocked(colorID, e.base[i].ColorID)
		n++
	}
	return n
}

// ResetAll discards every override and recounts usage from the base grid.
// It returns false when there is no grid.
func (e *Engine) ResetAll() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.overlay = make(map[int]Override)
	if len(e.base) == 0 {
		return false
	}
	e.recountLocked()
	return true
}

// PickColor returns the effective color id at (row, col) if that color is
// in the available palette.
func (e *Engine) PickColor(row, col int) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	i, ok := e.indexLocked(row, col)
	if !ok {
		return "", false
	}
	id := e.effectiveLocked(i).ColorID
	if id == "" || !e.available.Contains(id) {
		return "", false
	}
	return id, true
}

// Cell returns the effective cell at (row, col).
func (e *Engine) Cell(row, col int) (MappedPixel, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	i, ok := e.indexLocked(row, col)
	if !ok {
		return MappedPixel{}, false
	}
	return e.effectiveLocked(i), true
}

func (e *Engine) indexLocked(row, col int) (int, bool) {
	if len(e.base) == 0 || !e.dims.Contains(row, col) {
		return 0, false
	}
	i := e.dims.Index(row, col)
	if i >= len(e.base) {
		return 0, false
	}
	return i, true
}
