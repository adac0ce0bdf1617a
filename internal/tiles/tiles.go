package tiles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ironsheep/mosaic-tools/internal/imaging"
	"github.com/ironsheep/mosaic-tools/internal/logging"
)

// JPEGQuality is the encoder quality of stored tiles.
const JPEGQuality = 90

// TileExt is the extension of every tile in the repository.
const TileExt = ".jpg"

// sourceExts are the source extensions Collect accepts, lower case.
var sourceExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Stats summarizes one Collect run.
type Stats struct {
	Seen    int `json:"seen"`    // candidate source images found
	Added   int `json:"added"`   // tiles written
	Skipped int `json:"skipped"` // stem already present
	Failed  int `json:"failed"`  // unreadable or unwritable sources
}

// IsSource reports whether path has an extension Collect ingests.
func IsSource(path string) bool {
	return sourceExts[strings.ToLower(filepath.Ext(path))]
}

// TilePath returns the repository path for the tile made from source.
func TilePath(tilesDir, source string) string {
	base := filepath.Base(source)
	return filepath.Join(tilesDir, strings.TrimSuffix(base, filepath.Ext(base))+TileExt)
}

// Collect walks srcDir recursively and stores every new JPEG or PNG image as
// an edge x edge JPEG tile in tilesDir.
//
// Sources whose stem is already present in tilesDir are skipped, so the
// first of several same-named sources wins. A source that cannot be decoded
// or saved is logged and counted in Stats.Failed without stopping the walk.
// The returned error reports only an unreadable srcDir, a missing tilesDir,
// or cancellation.
func Collect(ctx context.Context, srcDir, tilesDir string, edge int) (Stats, error) {
	var stats Stats
	log := logging.Logger()

	if edge <= 0 {
		return stats, fmt.Errorf("tile edge must be positive, got %d", edge)
	}
	if info, err := os.Stat(tilesDir); err != nil {
		return stats, fmt.Errorf("tile directory: %w", err)
	} else if !info.IsDir() {
		return stats, fmt.Errorf("tile directory %s is not a directory", tilesDir)
	}

	absTiles, _ := filepath.Abs(tilesDir)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == srcDir {
				return err
			}
			log.Warn("cannot read entry", "path", path, "err", err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			// Never ingest the repository into itself.
			if abs, _ := filepath.Abs(path); abs == absTiles && path != srcDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSource(path) {
			return nil
		}
		stats.Seen++

		dst := TilePath(tilesDir, path)
		if _, err := os.Stat(dst); err == nil {
			log.Debug("tile name already used", "source", path, "tile", dst)
			stats.Skipped++
			return nil
		}

		if err := ingest(path, dst, edge); err != nil {
			log.Warn("failed to ingest image", "source", path, "err", err)
			stats.Failed++
			return nil
		}
		log.Debug("tile added", "source", path, "tile", dst)
		stats.Added++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("scan %s: %w", srcDir, err)
	}

	log.Info("tile scan finished", "dir", srcDir,
		"seen", stats.Seen, "added", stats.Added, "skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}

func ingest(src, dst string, edge int) error {
	img, err := imaging.Open(src)
	if err != nil {
		return err
	}
	return imaging.SaveJPEG(imaging.ResizeTile(img, edge), dst, JPEGQuality)
}

// List returns the paths of all tiles in tilesDir in lexical order.
// Subdirectories and files without the tile extension are ignored.
func List(tilesDir string) ([]string, error) {
	entries, err := os.ReadDir(tilesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiles: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), TileExt) {
			continue
		}
		paths = append(paths, filepath.Join(tilesDir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// EnsureDir creates dir, and any missing parents, if it does not exist.
// It reports whether the directory was created.
func EnsureDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", dir)
		}
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return true, nil
}
