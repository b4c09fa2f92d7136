// Package mosaic turns sampled images into stud grids and tracks manual
// edits on top of them.
//
// An Engine owns three pieces of state:
//
//   - the base grid, produced only by Generate from nearest-color matching;
//   - the overlay, a sparse map from flat cell index to Override, written
//     only by the edit operations (Paint, Erase, RevertColorOnly, ResetAll);
//   - usage counts, kept equal to the number of cells whose effective color
//     (override if present, else base) is each palette id.
//
// Callers never see these directly. Grid, BaseGrid and Usage return copies.
//
// # Generations
//
// Every Generate call takes the next generation number and cancels the
// context of the run it supersedes. A run commits only if its generation is
// still the latest when it finishes; otherwise it returns ErrStale and
// leaves all state untouched. A run that fails for any other reason also
// leaves the previous grid in place.
//
// # Sample Cache
//
// The Lab samples of the last successful run are kept with their
// imaging.SampleKey. When a new request has the same source key, size and
// filter, only palette matching is repeated and existing overrides survive,
// except those whose color left the palette. Any change to the key clears
// the overlay and the palette exclusions.
package mosaic
