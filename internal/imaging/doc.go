// Package imaging provides the pixel-level operations behind mosaic building.
//
// This package implements the color primitives (the Color type, the Euclidean
// RGB metric and single-pixel sampling), tile feature extraction (the average
// color of an image) and image I/O (decoding, tile normalization, PNG output
// and atomic file writes). All operations work with standard Go image.Image
// types and use a coordinate system where (0,0) is at the top-left corner, X
// increases rightward, and Y increases downward.
//
// # Color Representation
//
// Colors are exact 8-bit RGB triples. Alpha is discarded and pixels are read
// non-premultiplied, so a half transparent red pixel is still (255,0,0).
//
// # Distance
//
// Distance is the plain Euclidean distance in RGB space. It is not
// perceptually uniform. MaxDistance, sqrt(3)*255, bounds every distance and is
// used as the starting minimum of nearest-color scans.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and can be called concurrently on images that are not being
// mutated.
//
// # Error Handling
//
// Every decode failure, including failure to open the file, wraps ErrDecode:
//
//	if errors.Is(err, imaging.ErrDecode) {
//	    // skip this tile
//	}
package imaging
