// Package palette holds the colors a mosaic can be built from and finds the
// nearest one for a sampled pixel.
//
// # Ordering Contract
//
// A Palette is an ordered list. New always places custom colors first and
// built-in colors second, each group in the order it was supplied. The
// nearest-color search keeps the first entry it meets among equally distant
// candidates, so this order decides ties and is part of the observable
// behavior. Palettes are immutable; Without returns a new palette that keeps
// the remaining entries in their original order.
//
// # Prepared Entries
//
// Every color is converted to RGB and Lab once, when the palette is built.
// Entries are never mutated; any palette edit produces a new Palette.
//
// # Validation
//
// Hex codes must match ^#[0-9A-Fa-f]{6}$. Custom color names are required and
// unique without regard to case. NormalizeCustom applies both rules to user
// input and is the boundary at which malformed colors are rejected.
package palette
