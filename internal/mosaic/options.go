package mosaic

import (
	"fmt"
	"strings"
)

// Policy decides what happens when a matched tile cannot be decoded during
// composition.
type Policy int

const (
	// Abort fails the whole composition.
	Abort Policy = iota
	// Skip leaves the cell empty (transparent).
	Skip
	// Fallback tries the other tiles of the matched color, then the tiles of
	// the next-nearest colors, and fails only when nothing decodes.
	Fallback
)

var policyNames = map[Policy]string{
	Abort:    "abort",
	Skip:     "skip",
	Fallback: "fallback",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses "abort", "skip" or "fallback" (case insensitive).
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return Abort, fmt.Errorf("unknown tile error policy %q (want abort, skip or fallback)", s)
}

// Options configures a Composer.
type Options struct {
	// TileEdge is the cell width and height in pixels.
	TileEdge int

	// Workers is the number of regions composed in parallel by Compose.
	// Four gives the quadrant layout.
	Workers int

	// Seed drives tile selection. Worker i draws from a PCG generator seeded
	// with (Seed, i); ComposeSingle uses worker 0's generator. Zero picks a
	// seed from the clock.
	Seed uint64

	// OnTileError is the policy for tiles that fail to decode.
	OnTileError Policy
}

// DefaultOptions returns 10 pixel cells, four workers and the Abort policy.
func DefaultOptions() Options {
	return Options{
		TileEdge:    10,
		Workers:     4,
		OnTileError: Abort,
	}
}

func (o Options) validate() error {
	if o.TileEdge <= 0 {
		return fmt.Errorf("tile edge must be positive, got %d", o.TileEdge)
	}
	if o.Workers <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", o.Workers)
	}
	if _, ok := policyNames[o.OnTileError]; !ok {
		return fmt.Errorf("invalid tile error policy %v", o.OnTileError)
	}
	return nil
}
