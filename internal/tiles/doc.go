// Package tiles maintains the tile repository: a flat directory of
// normalized, fixed-size JPEG tiles from which the color index is built.
//
// Collect ingests source photos into the repository, and List enumerates the
// tiles for an index build. A tile is named after the stem of its source
// file, and a stem that is already present is never overwritten.
package tiles
