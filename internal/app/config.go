package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/mosaic-tools/internal/mosaic"
)

// Environment variables read by FromEnv.
const (
	EnvTileEdge    = "MOSAIC_TILE_EDGE"
	EnvTilesDir    = "MOSAIC_TILES_DIR"
	EnvResultsDir  = "MOSAIC_RESULTS_DIR"
	EnvIndexPath   = "MOSAIC_INDEX_PATH"
	EnvWorkers     = "MOSAIC_WORKERS"
	EnvSeed        = "MOSAIC_SEED"
	EnvOnTileError = "MOSAIC_ON_TILE_ERROR"
	EnvLogLevel    = "MOSAIC_LOG_LEVEL"
)

// Config holds the settings shared by every operation.
type Config struct {
	// TileEdge is the tile and cell edge in pixels.
	TileEdge int

	// TilesDir is the tile repository.
	TilesDir string

	// ResultsDir receives composites.
	ResultsDir string

	// IndexPath is the persisted color index.
	IndexPath string

	// Workers is the number of composition workers in parallel mode.
	Workers int

	// Seed for tile selection; zero means time-derived.
	Seed uint64

	// OnTileError is the policy for tiles that fail to decode while
	// composing.
	OnTileError mosaic.Policy

	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string
}

// DefaultConfig returns the built-in settings: 10 pixel tiles in images_db,
// composites in results, the index in db.bin, four workers.
func DefaultConfig() Config {
	opts := mosaic.DefaultOptions()
	return Config{
		TileEdge:    opts.TileEdge,
		TilesDir:    "images_db",
		ResultsDir:  "results",
		IndexPath:   "db.bin",
		Workers:     opts.Workers,
		OnTileError: opts.OnTileError,
		LogLevel:    "info",
	}
}

// FromEnv returns DefaultConfig overridden by the MOSAIC_* environment
// variables.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields for every variable getenv reports as non-empty.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvTileEdge); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTileEdge, err)
		}
		c.TileEdge = n
	}
	if v := getenv(EnvTilesDir); v != "" {
		c.TilesDir = v
	}
	if v := getenv(EnvResultsDir); v != "" {
		c.ResultsDir = v
	}
	if v := getenv(EnvIndexPath); v != "" {
		c.IndexPath = v
	}
	if v := getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v := getenv(EnvSeed); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Seed = n
	}
	if v := getenv(EnvOnTileError); v != "" {
		p, err := mosaic.ParsePolicy(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvOnTileError, err)
		}
		c.OnTileError = p
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return c.Validate()
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	if c.TileEdge <= 0 {
		return fmt.Errorf("tile edge must be positive, got %d", c.TileEdge)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", c.Workers)
	}
	if c.TilesDir == "" || c.ResultsDir == "" || c.IndexPath == "" {
		return errors.New("tile directory, results directory and index path must be set")
	}
	return nil
}

// ComposerOptions returns the mosaic options implied by c.
func (c Config) ComposerOptions() mosaic.Options {
	return mosaic.Options{
		TileEdge:    c.TileEdge,
		Workers:     c.Workers,
		Seed:        c.Seed,
		OnTileError: c.OnTileError,
	}
}
