package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/ironsheep/mosaic-tools/internal/imaging"
	"github.com/ironsheep/mosaic-tools/internal/index"
	"github.com/ironsheep/mosaic-tools/internal/logging"
	"github.com/ironsheep/mosaic-tools/internal/mosaic"
	"github.com/ironsheep/mosaic-tools/internal/tiles"
)

// Status codes returned by MainWork.
const (
	StatusOK     = 0
	StatusFailed = -1
)

// ErrNoTarget is returned when the image to compose does not exist.
var ErrNoTarget = errors.New("target image does not exist")

// Request is one invocation of the workflow.
type Request struct {
	// Target is the image to compose. Ignored when Scan is set.
	Target string

	// Scan ingests ScanDir into the tile repository and rebuilds the index
	// instead of composing.
	Scan    bool
	ScanDir string

	// Single composes on one goroutine.
	Single bool
}

// MainWork runs req with cfg and reports StatusOK or StatusFailed. Failures
// are logged, not returned.
func MainWork(ctx context.Context, cfg Config, req Request) int {
	log := logging.Logger()

	a, err := New(cfg)
	if err != nil {
		log.Error("invalid configuration", "err", err)
		return StatusFailed
	}
	if err := a.Run(ctx, req); err != nil {
		log.Error("mosaic failed", "err", err)
		return StatusFailed
	}
	return StatusOK
}

// App ties the tile repository, the persisted index and the composer
// together. The loaded index is kept between calls; Scan replaces it.
// An App is safe for concurrent use.
type App struct {
	cfg Config

	mu    sync.Mutex
	index *index.Index
}

// New returns an App for cfg.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &App{cfg: cfg}, nil
}

// Config returns the configuration the App was created with.
func (a *App) Config() Config {
	return a.cfg
}

// Bootstrap creates the tile repository and results directories if they are
// missing.
func (a *App) Bootstrap() error {
	for _, dir := range []string{a.cfg.TilesDir, a.cfg.ResultsDir} {
		created, err := tiles.EnsureDir(dir)
		if err != nil {
			return err
		}
		if created {
			logging.Logger().Info("folder created", "dir", dir)
		}
	}
	return nil
}

// Run executes req: a scan when req.Scan is set, otherwise a composition.
func (a *App) Run(ctx context.Context, req Request) error {
	if err := a.Bootstrap(); err != nil {
		return err
	}
	if req.Scan {
		_, err := a.Scan(ctx, req.ScanDir)
		return err
	}
	_, err := a.Compose(ctx, ComposeRequest{Target: req.Target, Single: req.Single})
	return err
}

// ScanResult summarizes a Scan.
type ScanResult struct {
	tiles.Stats
	Colors int `json:"colors"`
	Tiles  int `json:"tiles"`
}

// Scan ingests dir into the tile repository, then rebuilds and saves the
// index from the whole repository.
func (a *App) Scan(ctx context.Context, dir string) (ScanResult, error) {
	if dir == "" {
		return ScanResult{}, errors.New("no directory to scan")
	}
	if err := a.Bootstrap(); err != nil {
		return ScanResult{}, err
	}
	stats, err := tiles.Collect(ctx, dir, a.cfg.TilesDir, a.cfg.TileEdge)
	if err != nil {
		return ScanResult{Stats: stats}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	idx, err := a.rebuildLocked(ctx)
	if err != nil {
		return ScanResult{Stats: stats}, err
	}
	return ScanResult{Stats: stats, Colors: idx.Len(), Tiles: idx.TileCount()}, nil
}

// Index returns the color index: the one already held, else the persisted
// one, else one rebuilt from the tile repository. A persisted index that
// cannot be read is replaced by a rebuild.
func (a *App) Index(ctx context.Context) (*index.Index, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.index != nil {
		return a.index, nil
	}

	log := logging.Logger()
	idx, err := index.Load(a.cfg.IndexPath)
	if err == nil {
		log.Info("color index loaded", "path", a.cfg.IndexPath, "colors", idx.Len(), "tiles", idx.TileCount())
		a.index = idx
		return idx, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("no saved color index, building one", "path", a.cfg.IndexPath)
	} else {
		log.Warn("saved color index unusable, rebuilding", "path", a.cfg.IndexPath, "err", err)
	}
	return a.rebuildLocked(ctx)
}

// rebuildLocked builds the index from the tile repository and saves it.
// A failed save is logged; the fresh index is still used. a.mu must be held.
func (a *App) rebuildLocked(ctx context.Context) (*index.Index, error) {
	paths, err := tiles.List(a.cfg.TilesDir)
	if err != nil {
		return nil, err
	}
	idx, err := index.BuildFromFiles(ctx, paths)
	if err != nil {
		if errors.Is(err, index.ErrEmptyIndex) {
			return nil, fmt.Errorf("%w: no usable tiles in %s, scan a folder of images first", err, a.cfg.TilesDir)
		}
		return nil, err
	}
	if err := index.Save(a.cfg.IndexPath, idx); err != nil {
		logging.Logger().Warn("failed to save color index", "path", a.cfg.IndexPath, "err", err)
	}
	a.index = idx
	return idx, nil
}

// ComposeRequest describes one composition. Zero values fall back to the
// App's configuration.
type ComposeRequest struct {
	Target  string
	Single  bool
	Workers int
	Seed    uint64

	// OnTileError overrides the configured policy when non-nil.
	OnTileError *mosaic.Policy
}

// ComposeResult describes a written composite.
type ComposeResult struct {
	Output  string        `json:"output"`
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	Columns int           `json:"columns"`
	Rows    int           `json:"rows"`
	Seed    uint64        `json:"seed"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Compose builds the mosaic of req.Target and writes it into the results
// directory.
func (a *App) Compose(ctx context.Context, req ComposeRequest) (ComposeResult, error) {
	if _, err := os.Stat(req.Target); err != nil {
		return ComposeResult{}, fmt.Errorf("%w: %s: %w", ErrNoTarget, req.Target, err)
	}
	if err := a.Bootstrap(); err != nil {
		return ComposeResult{}, err
	}

	idx, err := a.Index(ctx)
	if err != nil {
		return ComposeResult{}, err
	}

	opts := a.cfg.ComposerOptions()
	if req.Workers > 0 {
		opts.Workers = req.Workers
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}
	if req.OnTileError != nil {
		opts.OnTileError = *req.OnTileError
	}
	c, err := mosaic.New(idx, opts)
	if err != nil {
		return ComposeResult{}, err
	}

	start := time.Now()
	img, err := c.ComposeFile(ctx, req.Target, req.Single)
	if err != nil {
		return ComposeResult{}, err
	}
	out, err := mosaic.WriteComposite(img, a.cfg.ResultsDir, req.Target)
	if err != nil {
		return ComposeResult{}, err
	}

	b := img.Bounds()
	res := ComposeResult{
		Output:  out,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Columns: b.Dx() / opts.TileEdge,
		Rows:    b.Dy() / opts.TileEdge,
		Seed:    c.Seed(),
		Elapsed: time.Since(start),
	}
	logging.Logger().Info("new image was successfully created",
		"output", out, "single", req.Single, "seed", res.Seed, "elapsed", res.Elapsed)
	return res, nil
}

// NearestColor returns the index color nearest to c and its tiles.
func (a *App) NearestColor(ctx context.Context, c imaging.Color) (imaging.Color, []index.TileRef, error) {
	idx, err := a.Index(ctx)
	if err != nil {
		return imaging.Color{}, nil, err
	}
	nearest := idx.Nearest(c)
	return nearest, idx.Tiles(nearest), nil
}
