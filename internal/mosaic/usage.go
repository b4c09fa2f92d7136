package mosaic

import (
	"sort"

	"github.com/ironsheep/brick-mosaic-mcp/internal/palette"
)

// UsageEntry counts the cells whose effective color is one palette color.
type UsageEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Hex      string `json:"hex"`
	IsCustom bool   `json:"is_custom"`
	Count    int    `json:"count"`
}

// Report is a sorted usage snapshot.
type Report struct {
	// BuiltIn lists built-in colors in use, by descending count.
	BuiltIn []UsageEntry `json:"built_in"`

	// Custom lists every available custom color, used or not, by
	// descending count.
	Custom []UsageEntry `json:"custom"`

	// Total is the number of cells in the grid.
	Total int `json:"total"`
}

// Combined returns custom entries followed by built-in entries.
func (r Report) Combined() []UsageEntry {
	out := make([]UsageEntry, 0, len(r.Custom)+len(r.BuiltIn))
	out = append(out, r.Custom...)
	return append(out, r.BuiltIn...)
}

// Count returns the count for id, or 0.
func (r Report) Count(id string) int {
	for _, u := range r.Combined() {
		if u.ID == id {
			return u.Count
		}
	}
	return 0
}

// Usage returns the current usage report.
//
// Counts are updated with every edit; the sorted report is rebuilt lazily
// on the first read after a change.
func (e *Engine) Usage() Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.usageDirty {
		e.usage = e.buildReportLocked()
		e.usageDirty = false
	}
	return Report{
		BuiltIn: append([]UsageEntry(nil), e.usage.BuiltIn...),
		Custom:  append([]UsageEntry(nil), e.usage.Custom...),
		Total:   e.usage.Total,
	}
}

// Counts returns a copy of the raw per-id counts. Ids with no cells are
// absent.
func (e *Engine) Counts() map[string]int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]int, len(e.counts))
	for id, n := range e.counts {
		if n > 0 {
			out[id] = n
		}
	}
	return out
}

func (e *Engine) buildReportLocked() Report {
	r := Report{Total: len(e.base)}
	listed := make(map[string]bool)

	entry := func(c palette.Color) UsageEntry {
		return UsageEntry{ID: c.ID, Name: c.Name, Hex: c.Hex, IsCustom: c.IsCustom, Count: e.counts[c.ID]}
	}

	for _, p := range e.available.Entries() {
		listed[p.ID] = true
		u := entry(p.Color)
		switch {
		case p.IsCustom:
			r.Custom = append(r.Custom, u)
		case u.Count > 0:
			r.BuiltIn = append(r.BuiltIn, u)
		}
	}

	// Colors still on the grid after leaving the palette, until the next
	// generation replaces them.
	var stray []string
	for id, n := range e.counts {
		if n > 0 && !listed[id] {
			stray = append(stray, id)
		}
	}
	sort.Strings(stray)
	for _, id := range stray {
		c, ok := e.known[id]
		if !ok {
			c = palette.Color{ID: id}
		}
		if c.IsCustom {
			r.Custom = append(r.Custom, entry(c))
		} else {
			r.BuiltIn = append(r.BuiltIn, entry(c))
		}
	}

	byCount := func(list []UsageEntry) func(i, j int) bool {
		return func(i, j int) bool { return list[i].Count > list[j].Count }
	}
	sort.SliceStable(r.BuiltIn, byCount(r.BuiltIn))
	sort.SliceStable(r.Custom, byCount(r.Custom))
	return r
}
