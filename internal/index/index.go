package index

import (
	"errors"
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/ironsheep/mosaic-tools/internal/imaging"
)

// ErrEmptyIndex is returned when an index would contain no colors, for
// example after scanning an empty or entirely unreadable tile directory.
var ErrEmptyIndex = errors.New("color index is empty")

// TileRef identifies a tile image by its file path.
type TileRef = string

// Index is an immutable mapping from color to the non-empty, ordered list of
// tiles whose average color it is.
type Index struct {
	tiles map[imaging.Color][]TileRef
	keys  []imaging.Color // sorted, see Color.Less
	count int
}

// Builder accumulates (color, tile) pairs. The zero value is ready to use.
// A Builder is not safe for concurrent use.
type Builder struct {
	tiles map[imaging.Color][]TileRef
	count int
}

// Add records tile under c. Tiles sharing a color keep the order in which
// they were added.
func (b *Builder) Add(c imaging.Color, tile TileRef) {
	if b.tiles == nil {
		b.tiles = make(map[imaging.Color][]TileRef)
	}
	b.tiles[c] = append(b.tiles[c], tile)
	b.count++
}

// Len returns the number of distinct colors added so far.
func (b *Builder) Len() int {
	return len(b.tiles)
}

// Build freezes the accumulated entries into an Index. It returns
// ErrEmptyIndex if nothing was added. The Builder must not be reused.
func (b *Builder) Build() (*Index, error) {
	if len(b.tiles) == 0 {
		return nil, ErrEmptyIndex
	}
	idx := &Index{
		tiles: b.tiles,
		keys:  make([]imaging.Color, 0, len(b.tiles)),
		count: b.count,
	}
	for c := range b.tiles {
		idx.keys = append(idx.keys, c)
	}
	sort.Slice(idx.keys, func(i, j int) bool { return idx.keys[i].Less(idx.keys[j]) })
	b.tiles = nil
	b.count = 0
	return idx, nil
}

// Len returns the number of distinct colors.
func (idx *Index) Len() int {
	return len(idx.keys)
}

// TileCount returns the total number of tiles across all colors.
func (idx *Index) TileCount() int {
	return idx.count
}

// Colors returns the keys in index order.
func (idx *Index) Colors() []imaging.Color {
	return slices.Clone(idx.keys)
}

// Tiles returns a copy of the tiles recorded under c, or nil.
func (idx *Index) Tiles(c imaging.Color) []TileRef {
	return slices.Clone(idx.tiles[c])
}

// Nearest returns the key closest to target under imaging.Distance.
//
// The scan starts from a minimum just above imaging.MaxDistance, so some key
// is always returned, and replaces it only on a strictly smaller distance:
// the first key in index order wins ties.
func (idx *Index) Nearest(target imaging.Color) imaging.Color {
	var (
		best    imaging.Color
		minDist = imaging.MaxDistance + 1
	)
	for _, k := range idx.keys {
		if d := imaging.Distance(target, k); d < minDist {
			best = k
			minDist = d
		}
	}
	return best
}

// Ranked returns every key ordered by distance to target, nearest first.
// Keys at equal distance keep index order, so Ranked(t)[0] == Nearest(t).
func (idx *Index) Ranked(target imaging.Color) []imaging.Color {
	ranked := slices.Clone(idx.keys)
	sort.SliceStable(ranked, func(i, j int) bool {
		return imaging.Distance(target, ranked[i]) < imaging.Distance(target, ranked[j])
	})
	return ranked
}

// Pick selects one of the tiles recorded under c uniformly at random.
// It returns false if c is not a key.
func (idx *Index) Pick(c imaging.Color, rng *rand.Rand) (TileRef, bool) {
	tiles := idx.tiles[c]
	if len(tiles) == 0 {
		return "", false
	}
	return tiles[rng.IntN(len(tiles))], true
}

// Equal reports whether both indexes hold the same colors, each with the same
// tiles in the same order.
func (idx *Index) Equal(other *Index) bool {
	if idx.Len() != other.Len() || idx.count != other.count {
		return false
	}
	for c, tiles := range idx.tiles {
		if !slices.Equal(tiles, other.tiles[c]) {
			return false
		}
	}
	return true
}
