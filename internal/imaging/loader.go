package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrDecode reports that image bytes could not be read or understood:
// the file is missing or unreadable, the format is unsupported, or the data
// is corrupt.
var ErrDecode = errors.New("image decode failed")

// Open reads and decodes the image file at path.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. EXIF orientation
// is honoured for JPEG files.
//
// # Errors
//
// Every failure wraps ErrDecode. A failure to open the file additionally
// wraps the underlying fs error, so errors.Is(err, fs.ErrNotExist) works.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open image: %w", ErrDecode, err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return img, nil
}

// ImageCache provides thread-safe caching of decoded images to avoid decoding
// the same tile file more than once.
//
// The cache stores decoded image.Image objects keyed by their file path. Once
// an image is loaded, subsequent Load() calls for the same path return the
// cached copy without disk I/O. Failed loads are not cached.
//
// A mosaic composition creates one ImageCache per operation and shares it
// between its workers; frequently matched tiles are then decoded once. The
// cache is not meant to outlive the operation.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or
// Clear(), or until the cache itself is dropped.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image

	// prepare, if set, transforms each freshly decoded image before caching.
	prepare func(image.Image) image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it with Open if not
// cached.
//
// Two goroutines missing on the same path at the same time may both decode
// it; the last one to finish wins the slot. Both receive a valid image.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	if c.prepare != nil {
		img = c.prepare(img)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}
