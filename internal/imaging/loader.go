package imaging

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Source is a decoded image together with a key identifying its content.
//
// Two sources with the same Key hold the same pixels. The mosaic engine uses
// the key, not the path, to decide whether a previous sampling can be reused,
// so an overwritten file at an unchanged path is still resampled.
type Source struct {
	// Key is a 16-digit hex xxhash64 of the encoded file bytes, or of the
	// pixel data for sources built in memory.
	Key string

	// Path is the file the source was loaded from, empty for in-memory sources.
	Path string

	// Format is the decoder name reported by image.Decode ("png", "jpeg", ...).
	Format string

	Image image.Image
}

// Bounds returns the size of the source image.
func (s *Source) Bounds() image.Rectangle {
	return s.Image.Bounds()
}

// DecodeSource reads and decodes an image, keying it by its encoded bytes.
func DecodeSource(r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Source{
		Key:    formatKey(xxhash.Sum64(data)),
		Format: format,
		Image:  img,
	}, nil
}

// NewSource wraps an in-memory image, keying it by its bounds and 8-bit
// non-premultiplied pixel data.
func NewSource(img image.Image) *Source {
	nrgba := imaging.Clone(img)
	d := xxhash.New()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[:4], uint32(nrgba.Rect.Dx()))
	binary.LittleEndian.PutUint32(dims[4:], uint32(nrgba.Rect.Dy()))
	_, _ = d.Write(dims[:])
	_, _ = d.Write(nrgba.Pix)
	return &Source{
		Key:    formatKey(d.Sum64()),
		Format: "memory",
		Image:  img,
	}
}

func formatKey(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}

// ImageCache provides thread-safe caching of loaded sources to avoid redundant disk reads.
//
// The cache stores decoded sources keyed by their file path. Once a source is
// loaded, subsequent Load() calls for the same path return the cached copy
// without disk I/O. Call Evict to pick up a file that changed on disk.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	src, err := cache.LoadSource("/path/to/photo.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// src.Key identifies the pixels, src.Image holds them.
type ImageCache struct {
	mu      sync.RWMutex
	sources map[string]*Source
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		sources: make(map[string]*Source),
	}
}

// LoadSource retrieves a source from the cache or loads it from disk if not cached.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     PNG, JPEG, GIF, WebP, BMP and TIFF.
//
// Returns:
//   - *Source: The decoded image and its content key.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The source is cached using the exact path string provided. Different paths
// to the same file result in separate cache entries with equal keys.
func (c *ImageCache) LoadSource(path string) (*Source, error) {
	c.mu.RLock()
	if src, ok := c.sources[path]; ok {
		c.mu.RUnlock()
		return src, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	src, err := DecodeSource(f)
	if err != nil {
		return nil, err
	}
	src.Path = path

	c.mu.Lock()
	c.sources[path] = src
	c.mu.Unlock()

	return src, nil
}

// Load is like LoadSource but returns only the decoded image.
func (c *ImageCache) Load(path string) (image.Image, error) {
	src, err := c.LoadSource(path)
	if err != nil {
		return nil, err
	}
	return src.Image, nil
}

// Clear removes all sources from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.sources = make(map[string]*Source)
	c.mu.Unlock()
}

// Evict removes a specific source from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
// After eviction, the next Load() call for this path will read from disk.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.sources, path)
	c.mu.Unlock()
}

// Len returns the number of cached sources.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that read the file: "png", "jpeg", "gif", "webp",
	// "bmp" or "tiff". Detection is based on file contents.
	Format string `json:"format"`

	// Extension is the lower-cased file extension, without the dot.
	Extension string `json:"extension"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	// Transparent areas are composited onto white before color matching.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// Key is the content key of the source.
	Key string `json:"key"`
}

// LoadImageInfo loads an image and returns metadata about it.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//
// Returns:
//   - *ImageInfo: Metadata about the image.
//   - error: Non-nil if the image cannot be loaded or the file cannot be stat'd.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	src, err := cache.LoadSource(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasAlpha := false
	switch src.Image.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.Paletted:
		hasAlpha = true
	}

	bounds := src.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        src.Format,
		Extension:     strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
		Key:           src.Key,
	}, nil
}
