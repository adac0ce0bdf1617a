package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/mosaic-tools/internal/app"
	"github.com/ironsheep/mosaic-tools/internal/logging"
	"github.com/ironsheep/mosaic-tools/internal/mosaic"
	"github.com/ironsheep/mosaic-tools/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "mosaic %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := app.FromEnv()
	if err != nil {
		log.Printf("Configuration error: %v", err)
		return 2
	}
	logging.SetLogger(logging.NewText(stderr, cfg.LogLevel))
	if cfg.LogLevel == "debug" {
		log.Printf("mosaic v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "compose":
		return runCompose(ctx, cfg, args[1:], stderr)
	case "scan":
		return runScan(ctx, cfg, args[1:], stderr)
	case "serve":
		return runServe(ctx, cfg)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func runCompose(ctx context.Context, cfg app.Config, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("compose", flag.ContinueOnError)
	fs.SetOutput(stderr)
	single := fs.Bool("single", false, "compose on a single goroutine")
	workers := fs.Int("workers", cfg.Workers, "number of parallel workers (4 gives quadrants)")
	seed := fs.Uint64("seed", cfg.Seed, "tile selection seed, 0 for time-derived")
	policy := fs.String("on-tile-error", cfg.OnTileError.String(), "abort, skip or fallback")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: mosaic compose [flags] <target image>")
		return 2
	}

	p, err := mosaic.ParsePolicy(*policy)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	cfg.Workers = *workers
	cfg.Seed = *seed
	cfg.OnTileError = p

	return exitCode(app.MainWork(ctx, cfg, app.Request{Target: fs.Arg(0), Single: *single}))
}

func runScan(ctx context.Context, cfg app.Config, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: mosaic scan <image folder>")
		return 2
	}
	return exitCode(app.MainWork(ctx, cfg, app.Request{Scan: true, ScanDir: fs.Arg(0)}))
}

// exitCode maps a workflow status to a process exit code.
func exitCode(status int) int {
	if status != app.StatusOK {
		return 1
	}
	return 0
}

func runServe(ctx context.Context, cfg app.Config) int {
	a, err := app.New(cfg)
	if err != nil {
		log.Printf("Configuration error: %v", err)
		return 2
	}
	if err := a.Bootstrap(); err != nil {
		log.Printf("Startup error: %v", err)
		return 1
	}

	srv := server.New(a, Version)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("Server error: %v", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "mosaic - build photo mosaics from a library of tile images")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mosaic scan <folder>            Import JPEG/PNG images as tiles and rebuild the index")
	fmt.Fprintln(w, "  mosaic compose [flags] <image>  Rebuild an image from tiles into the results folder")
	fmt.Fprintln(w, "  mosaic serve                    Run the MCP server over stdin/stdout")
	fmt.Fprintln(w, "  mosaic version                  Print version information")
	fmt.Fprintln(w, "  mosaic help                     Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compose flags:")
	fmt.Fprintln(w, "  -single                 Compose on a single thread")
	fmt.Fprintln(w, "  -workers N              Parallel workers (default 4, quadrants)")
	fmt.Fprintln(w, "  -seed S                 Tile selection seed (0 = time-derived)")
	fmt.Fprintln(w, "  -on-tile-error POLICY   abort, skip or fallback (default abort)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  MOSAIC_TILE_EDGE       Tile edge in pixels (default 10)")
	fmt.Fprintln(w, "  MOSAIC_TILES_DIR       Tile repository (default images_db)")
	fmt.Fprintln(w, "  MOSAIC_RESULTS_DIR     Output folder (default results)")
	fmt.Fprintln(w, "  MOSAIC_INDEX_PATH      Saved color index (default db.bin)")
	fmt.Fprintln(w, "  MOSAIC_WORKERS         Default worker count")
	fmt.Fprintln(w, "  MOSAIC_SEED            Default seed")
	fmt.Fprintln(w, "  MOSAIC_ON_TILE_ERROR   Default tile error policy")
	fmt.Fprintln(w, "  MOSAIC_LOG_LEVEL=debug Enable debug logging")
}
