package imaging

import (
	"image"
	"image/color"
	"math"
)

// AverageColor computes the mean RGB color of every pixel in img.
//
// The mean is accumulated incrementally (avg += pixel/total per channel)
// instead of summing first, which keeps intermediate values bounded for very
// large images. Each final channel mean is truncated toward zero to 8 bits;
// the truncation is checked against exact integer channel sums, so floating
// point drift in the running mean never moves the result across an integer.
//
// Pixels are read non-premultiplied, so alpha does not darken the result.
// An image with empty bounds returns the zero Color.
func AverageColor(img image.Image) Color {
	bounds := img.Bounds()
	if bounds.Empty() {
		return Color{}
	}

	n := uint64(bounds.Dx()) * uint64(bounds.Dy())
	total := float64(n)
	var (
		avgR, avgG, avgB float64
		sumR, sumG, sumB uint64
	)

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := nrgba.NRGBAAt(x, y)
				avgR += float64(c.R) / total
				avgG += float64(c.G) / total
				avgB += float64(c.B) / total
				sumR += uint64(c.R)
				sumG += uint64(c.G)
				sumB += uint64(c.B)
			}
		}
	} else {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				avgR += float64(c.R) / total
				avgG += float64(c.G) / total
				avgB += float64(c.B) / total
				sumR += uint64(c.R)
				sumG += uint64(c.G)
				sumB += uint64(c.B)
			}
		}
	}

	return Color{
		R: truncChannel(avgR, sumR, n),
		G: truncChannel(avgG, sumG, n),
		B: truncChannel(avgB, sumB, n),
	}
}

// truncChannel floors the running mean avg and corrects it by one step
// against the exact channel sum over n pixels, so that k*n <= sum < (k+1)*n.
func truncChannel(avg float64, sum, n uint64) uint8 {
	k := int64(math.Floor(avg))
	if k < 0 {
		k = 0
	}
	if k > 255 {
		k = 255
	}
	if k < 255 && uint64(k+1)*n <= sum {
		k++
	} else if k > 0 && uint64(k)*n > sum {
		k--
	}
	return uint8(k)
}

// AverageColorFile decodes the image at path and returns its average color.
//
// Any failure to open or decode the file is reported as an error wrapping
// ErrDecode. During an index build such errors mean "skip this tile"; for a
// target image they are fatal.
func AverageColorFile(path string) (Color, error) {
	img, err := Open(path)
	if err != nil {
		return Color{}, err
	}
	return AverageColor(img), nil
}
