// Package index maps representative tile colors to the tile images that share
// them.
//
// An Index is built once, from the average colors of a tile repository, or
// loaded wholesale from its persisted form. It is never modified afterwards,
// so a single *Index may be shared by any number of goroutines without
// locking.
//
// # Key Order
//
// Keys are kept sorted lexicographically by (R, G, B). Every scan walks them
// in that order, which makes nearest-color ties deterministic: the color that
// sorts first wins. For an index holding black and white, the exact midpoint
// (127,127,127) resolves to black.
//
// # Persisted Form
//
// Save and Encode write an 8-byte magic ("MOSAICIX"), a one-byte format
// version, and a zstd-compressed gob stream of the entries in key order, each
// with its tiles in discovery order. Load and Decode reject anything else with
// an error wrapping ErrPersistence; callers are expected to rebuild the index
// from the tile repository in that case.
package index
