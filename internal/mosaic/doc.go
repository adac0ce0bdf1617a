// Package mosaic composes photographic mosaics from a target image and a
// color index of tiles.
//
// The target is divided into a grid of TileEdge x TileEdge cells; any strip at
// the right or bottom narrower than a cell is dropped. Each cell is
// represented by the single pixel at its top-left corner. That pixel's
// nearest index color selects a tile, chosen at random among the tiles that
// share the color, which is pasted over the cell.
//
// # Parallel Composition
//
// Compose splits the grid into regions, one per worker. With four workers
// the regions are the quadrants formed by the column and row midpoints
// (integer division; the right and bottom quadrants absorb odd remainders):
//
//	0: columns [0, w/2)  rows [0, h/2)
//	1: columns [w/2, w)  rows [0, h/2)
//	2: columns [0, w/2)  rows [h/2, h)
//	3: columns [w/2, w)  rows [h/2, h)
//
// Any other worker count uses horizontal strips of roughly equal height.
//
// Every worker owns its random generator, seeded from Options.Seed and its
// worker id, and its output buffer. The target image and the index are only
// read. Finished buffers are sent back tagged with the worker id and pasted
// at the position that id implies, so the composite does not depend on which
// worker finishes first. The first worker failure cancels the others and is
// returned as a *WorkerError.
//
// # Tile Failures
//
// A matched tile that cannot be decoded is handled according to
// Options.OnTileError: Abort fails the composition, Skip leaves the cell
// transparent, and Fallback tries the remaining tiles of the matched color
// and then the next-nearest colors.
package mosaic
