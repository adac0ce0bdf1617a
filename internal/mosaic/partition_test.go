package mosaic

import (
	"image"
	"testing"
)

func TestPartition_Quadrants(t *testing.T) {
	regions := Partition(9, 7, 4)

	want := []image.Rectangle{
		image.Rect(0, 0, 4, 3),
		image.Rect(4, 0, 9, 3),
		image.Rect(0, 3, 4, 7),
		image.Rect(4, 3, 9, 7),
	}
	if len(regions) != 4 {
		t.Fatalf("got %d regions, want 4", len(regions))
	}
	for i, r := range regions {
		if r.ID != i {
			t.Errorf("region %d has ID %d", i, r.ID)
		}
		if r.Cells != want[i] {
			t.Errorf("region %d cells = %v, want %v", i, r.Cells, want[i])
		}
	}
}

func TestPartition_CoversGridOnce(t *testing.T) {
	tests := []struct {
		cols, rows, workers int
	}{
		{10, 10, 4},
		{9, 7, 4},
		{1, 1, 4},
		{1, 5, 4},
		{10, 10, 1},
		{10, 10, 3},
		{7, 2, 5},
		{3, 13, 8},
	}

	for _, tt := range tests {
		regions := Partition(tt.cols, tt.rows, tt.workers)
		if len(regions) != tt.workers {
			t.Errorf("Partition(%d,%d,%d) returned %d regions", tt.cols, tt.rows, tt.workers, len(regions))
			continue
		}

		counts := make(map[image.Point]int)
		for _, r := range regions {
			for y := r.Cells.Min.Y; y < r.Cells.Max.Y; y++ {
				for x := r.Cells.Min.X; x < r.Cells.Max.X; x++ {
					counts[image.Pt(x, y)]++
				}
			}
		}
		for y := 0; y < tt.rows; y++ {
			for x := 0; x < tt.cols; x++ {
				if n := counts[image.Pt(x, y)]; n != 1 {
					t.Errorf("Partition(%d,%d,%d): cell (%d,%d) covered %d times",
						tt.cols, tt.rows, tt.workers, x, y, n)
				}
			}
		}
		if len(counts) != tt.cols*tt.rows {
			t.Errorf("Partition(%d,%d,%d): regions cover cells outside the grid",
				tt.cols, tt.rows, tt.workers)
		}
	}
}

func TestRegion_Pixels(t *testing.T) {
	r := Region{ID: 3, Cells: image.Rect(4, 3, 9, 7)}
	if got := r.Pixels(10); got != image.Rect(40, 30, 90, 70) {
		t.Errorf("Pixels = %v, want (40,30)-(90,70)", got)
	}
}

func TestOutputBounds(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
		edge   int
		want   image.Rectangle
	}{
		{"drops remainder", image.Rect(0, 0, 103, 97), 10, image.Rect(0, 0, 100, 90)},
		{"exact", image.Rect(0, 0, 100, 50), 10, image.Rect(0, 0, 100, 50)},
		{"offset origin", image.Rect(5, 5, 108, 102), 10, image.Rect(0, 0, 100, 90)},
		{"smaller than a tile", image.Rect(0, 0, 9, 30), 10, image.Rect(0, 0, 0, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputBounds(tt.bounds, tt.edge); got != tt.want {
				t.Errorf("OutputBounds = %v, want %v", got, tt.want)
			}
		})
	}
}
