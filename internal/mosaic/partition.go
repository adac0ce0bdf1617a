package mosaic

import "image"

// Region is the part of the cell grid composed by one worker.
type Region struct {
	// ID is the worker id; results are placed by it.
	ID int

	// Cells is the region in grid-cell units: Min inclusive, Max exclusive.
	Cells image.Rectangle
}

// Pixels returns the region's extent in composite pixel coordinates.
func (r Region) Pixels(edge int) image.Rectangle {
	return image.Rectangle{
		Min: r.Cells.Min.Mul(edge),
		Max: r.Cells.Max.Mul(edge),
	}
}

// GridSize returns the number of whole cells across and down bounds.
func GridSize(bounds image.Rectangle, edge int) (cols, rows int) {
	return bounds.Dx() / edge, bounds.Dy() / edge
}

// OutputBounds returns the composite's bounds for a target with the given
// bounds: whole cells only, anchored at the origin.
func OutputBounds(bounds image.Rectangle, edge int) image.Rectangle {
	cols, rows := GridSize(bounds, edge)
	return image.Rect(0, 0, cols*edge, rows*edge)
}

// Partition divides a cols x rows grid among workers.
//
// Four workers get the quadrants split at cols/2 and rows/2, ids 0 to 3 in
// row-major order. Any other count gets horizontal strips, strip i covering
// rows [i*rows/n, (i+1)*rows/n). Regions may be empty when the grid is
// smaller than the worker layout; they still get an id.
func Partition(cols, rows, workers int) []Region {
	if workers == 4 {
		midX, midY := cols/2, rows/2
		return []Region{
			{ID: 0, Cells: image.Rect(0, 0, midX, midY)},
			{ID: 1, Cells: image.Rect(midX, 0, cols, midY)},
			{ID: 2, Cells: image.Rect(0, midY, midX, rows)},
			{ID: 3, Cells: image.Rect(midX, midY, cols, rows)},
		}
	}

	regions := make([]Region, workers)
	for i := range regions {
		regions[i] = Region{
			ID:    i,
			Cells: image.Rect(0, i*rows/workers, cols, (i+1)*rows/workers),
		}
	}
	return regions
}
