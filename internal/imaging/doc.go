// Package imaging loads source pictures and turns them into per-cell Lab
// samples for the mosaic pipeline.
//
// The pipeline for one sampling is:
//
//  1. Load: decode PNG, JPEG, GIF, WebP, BMP or TIFF into a Source keyed by
//     an xxhash of its content.
//  2. Prepare: optionally crop to the grid's aspect ratio (CropToAspect).
//  3. Resize: scale to exactly width x height studs (ResizeExact), so every
//     stud corresponds to exactly one pixel.
//  4. Filter: apply the tone descriptor (Filter), e.g. "saturate(1.2)".
//  5. Sample: composite each pixel over white and convert it to Lab.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Sources are never mutated
// after loading, and all other functions return new images.
//
// # Filter Descriptors
//
// A descriptor is a space-separated list of hue-rotate, saturate, brightness
// and contrast functions. It is treated as an opaque part of a sampling's
// identity: the same descriptor string always yields the same samples.
package imaging
