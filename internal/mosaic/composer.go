package mosaic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/ironsheep/mosaic-tools/internal/imaging"
	"github.com/ironsheep/mosaic-tools/internal/index"
	"github.com/ironsheep/mosaic-tools/internal/logging"
)

var (
	// ErrWorkerFailed is in the chain of every *WorkerError.
	ErrWorkerFailed = errors.New("composition worker failed")

	// ErrTargetTooSmall is returned for targets narrower or shorter than one
	// cell, which would produce an empty composite.
	ErrTargetTooSmall = errors.New("target image smaller than one tile")
)

// WorkerError reports the failure of one composition worker.
type WorkerError struct {
	ID  int
	Err error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %d: %v", e.ID, e.Err)
}

// Unwrap exposes both ErrWorkerFailed and the underlying cause.
func (e *WorkerError) Unwrap() []error {
	return []error{ErrWorkerFailed, e.Err}
}

// Composer builds mosaics against one color index. It holds no per-call
// state and may be used by several goroutines at once.
type Composer struct {
	index *index.Index
	opts  Options
	seed  uint64

	// afterRegion, if set, runs in each worker between composing its region
	// and sending the result.
	afterRegion func(id int)

	// afterReceive, if set, runs on the coordinator after each result is
	// received and before it is checked or pasted.
	afterReceive func(id int)
}

// New returns a Composer for idx. The index must not be modified while the
// Composer is in use.
func New(idx *index.Index, opts Options) (*Composer, error) {
	if idx == nil {
		return nil, errors.New("nil color index")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Composer{index: idx, opts: opts, seed: seed}, nil
}

// Seed returns the seed in effect, including one picked from the clock.
func (c *Composer) Seed() uint64 {
	return c.seed
}

// Options returns the options the Composer was created with.
func (c *Composer) Options() Options {
	return c.opts
}

func (c *Composer) workerRand(id int) *rand.Rand {
	return rand.New(rand.NewPCG(c.seed, uint64(id)))
}

// ComposeSingle composes the whole grid on the calling goroutine, row by row.
func (c *Composer) ComposeSingle(ctx context.Context, target image.Image) (*image.RGBA, error) {
	edge := c.opts.TileEdge
	cols, rows := GridSize(target.Bounds(), edge)
	if cols == 0 || rows == 0 {
		return nil, ErrTargetTooSmall
	}

	src := newTileSource(c.index, edge, c.opts.OnTileError)
	whole := Region{ID: 0, Cells: image.Rect(0, 0, cols, rows)}

	start := time.Now()
	out, err := c.composeRegion(ctx, target, whole, c.workerRand(0), src)
	if err != nil {
		return nil, err
	}
	logging.Logger().Debug("composed sequentially",
		"cols", cols, "rows", rows, "decoded_tiles", src.cache.Len(), "elapsed", time.Since(start))
	return out, nil
}

type result struct {
	id  int
	buf *image.RGBA
	err error
}

// Compose composes the grid with one goroutine per region (see Partition)
// and assembles the regions by worker id.
func (c *Composer) Compose(ctx context.Context, target image.Image) (*image.RGBA, error) {
	edge := c.opts.TileEdge
	cols, rows := GridSize(target.Bounds(), edge)
	if cols == 0 || rows == 0 {
		return nil, ErrTargetTooSmall
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	regions := Partition(cols, rows, c.opts.Workers)
	src := newTileSource(c.index, edge, c.opts.OnTileError)
	log := logging.Logger()

	// Buffered so that no worker blocks on send once the coordinator has
	// returned early.
	results := make(chan result, len(regions))

	for _, r := range regions {
		go func(r Region) {
			start := time.Now()
			buf, err := c.composeRegion(ctx, target, r, c.workerRand(r.ID), src)
			if c.afterRegion != nil {
				c.afterRegion(r.ID)
			}
			log.Debug("worker finished", "worker", r.ID, "cells", r.Cells, "elapsed", time.Since(start), "err", err)
			results <- result{id: r.ID, buf: buf, err: err}
		}(r)
	}

	out := image.NewRGBA(image.Rect(0, 0, cols*edge, rows*edge))
	for range regions {
		res := <-results
		if c.afterReceive != nil {
			c.afterReceive(res.id)
		}
		if res.err != nil {
			cancel()
			return nil, &WorkerError{ID: res.id, Err: res.err}
		}
		dst := regions[res.id].Pixels(edge)
		draw.Draw(out, dst, res.buf, image.Point{}, draw.Src)
	}

	log.Debug("composed in parallel",
		"cols", cols, "rows", rows, "workers", len(regions), "decoded_tiles", src.cache.Len())
	return out, nil
}

// composeRegion fills a buffer the size of r, whose origin corresponds to the
// top-left cell of r.
func (c *Composer) composeRegion(ctx context.Context, target image.Image, r Region, rng *rand.Rand, src *tileSource) (*image.RGBA, error) {
	edge := c.opts.TileEdge
	origin := target.Bounds().Min
	buf := image.NewRGBA(image.Rect(0, 0, r.Cells.Dx()*edge, r.Cells.Dy()*edge))

	for cy := r.Cells.Min.Y; cy < r.Cells.Max.Y; cy++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for cx := r.Cells.Min.X; cx < r.Cells.Max.X; cx++ {
			px, err := imaging.SampleColor(target, origin.X+cx*edge, origin.Y+cy*edge)
			if err != nil {
				return nil, err
			}

			tile, err := src.tileFor(px, rng)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", cx, cy, err)
			}
			if tile == nil {
				continue
			}

			x := (cx - r.Cells.Min.X) * edge
			y := (cy - r.Cells.Min.Y) * edge
			draw.Draw(buf, image.Rect(x, y, x+edge, y+edge), tile, tile.Bounds().Min, draw.Src)
		}
	}
	return buf, nil
}

// tileSource turns a cell color into a decoded tile. It is shared by the
// workers of one composition.
type tileSource struct {
	index  *index.Index
	cache  *imaging.ImageCache
	policy Policy

	// broken remembers tiles that failed to decode in this composition.
	broken sync.Map
}

func newTileSource(idx *index.Index, edge int, policy Policy) *tileSource {
	return &tileSource{
		index:  idx,
		cache:  imaging.NewTileCache(edge),
		policy: policy,
	}
}

// tileFor returns the tile for a cell whose representative color is px. A
// nil image with a nil error means the cell is to be left empty.
func (s *tileSource) tileFor(px imaging.Color, rng *rand.Rand) (image.Image, error) {
	nearest := s.index.Nearest(px)
	ref, _ := s.index.Pick(nearest, rng)

	img, err := s.load(ref)
	if err == nil {
		return img, nil
	}

	switch s.policy {
	case Skip:
		logging.Logger().Warn("tile unreadable, leaving cell empty", "tile", ref, "err", err)
		return nil, nil
	case Fallback:
		return s.fallback(px, ref, err)
	default:
		return nil, err
	}
}

func (s *tileSource) load(ref string) (image.Image, error) {
	if cause, ok := s.broken.Load(ref); ok {
		return nil, cause.(error)
	}
	img, err := s.cache.Load(ref)
	if err != nil {
		s.broken.Store(ref, err)
		return nil, err
	}
	return img, nil
}

// fallback walks colors from nearest to farthest and returns the first tile
// that decodes.
func (s *tileSource) fallback(px imaging.Color, failed string, cause error) (image.Image, error) {
	for _, col := range s.index.Ranked(px) {
		for _, ref := range s.index.Tiles(col) {
			if ref == failed {
				continue
			}
			img, err := s.load(ref)
			if err != nil {
				continue
			}
			logging.Logger().Warn("tile unreadable, using substitute", "tile", failed, "substitute", ref, "err", cause)
			return img, nil
		}
	}
	return nil, fmt.Errorf("no decodable tile for color %v: %w", px, cause)
}
