package index

import (
	"context"
	"runtime"
	"sync"

	"github.com/ironsheep/mosaic-tools/internal/imaging"
	"github.com/ironsheep/mosaic-tools/internal/logging"
)

// extractFunc computes the representative color of one tile.
type extractFunc func(path string) (imaging.Color, error)

type extraction struct {
	color imaging.Color
	err   error
}

// BuildFromFiles extracts the average color of every tile in paths and
// groups the tiles by exact color.
//
// Colors are extracted concurrently, but tiles are added in the order of
// paths, so the per-color tile order is the discovery order. Tiles that fail
// to decode are skipped with a warning. If no tile survives, the error is
// ErrEmptyIndex. Cancelling ctx stops the build and returns ctx.Err().
func BuildFromFiles(ctx context.Context, paths []string) (*Index, error) {
	return buildWith(ctx, paths, imaging.AverageColorFile, runtime.NumCPU())
}

func buildWith(ctx context.Context, paths []string, extract extractFunc, numWorkers int) (*Index, error) {
	log := logging.Logger()

	if numWorkers < 1 {
		numWorkers = 1
	}

	var (
		wg      sync.WaitGroup
		jobs    = make(chan int)
		results = make([]extraction, len(paths))
	)

	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				c, err := extract(paths[j])
				results[j] = extraction{color: c, err: err}
			}
		}()
	}

	var cancelled error
feed:
	for j := range paths {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		select {
		case jobs <- j:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return nil, cancelled
	}

	var (
		b       Builder
		skipped int
	)
	for j, r := range results {
		if r.err != nil {
			log.Warn("skipping tile", "path", paths[j], "err", r.err)
			skipped++
			continue
		}
		b.Add(r.color, paths[j])
	}

	idx, err := b.Build()
	if err != nil {
		return nil, err
	}
	log.Info("color index built", "colors", idx.Len(), "tiles", idx.TileCount(), "skipped", skipped)
	return idx, nil
}
