package imaging

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// ResizeTile scales img to exactly edge x edge pixels with a Lanczos filter.
// The aspect ratio is not preserved.
func ResizeTile(img image.Image, edge int) *image.NRGBA {
	return imaging.Resize(img, edge, edge, imaging.Lanczos)
}

// FitTile returns img as an *image.RGBA of exactly edge x edge pixels with
// its origin at (0,0). Images already at that size are copied without
// resampling.
func FitTile(img image.Image, edge int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() != edge || b.Dy() != edge {
		img = ResizeTile(img, edge)
	}
	return clone.AsRGBA(img)
}

// NewTileCache returns an ImageCache whose entries are normalized with
// FitTile before being stored, so cached tiles can be pasted directly into a
// composite.
func NewTileCache(edge int) *ImageCache {
	c := NewImageCache()
	c.prepare = func(img image.Image) image.Image {
		return FitTile(img, edge)
	}
	return c
}

// SaveJPEG writes img to path as a JPEG with the given quality.
func SaveJPEG(img image.Image, path string, quality int) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// EncodePNG writes img to w as a lossless PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := imgio.PNGEncoder()
	if err := enc(w, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory followed by a rename, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit %s: %w", path, err)
	}
	return nil
}
