package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxDistance is the largest Euclidean distance two 8-bit RGB colors can be
// apart: the length of the black-to-white diagonal, sqrt(3)*255.
const MaxDistance float64 = 441.6729559300637

// Color is an exact 8-bit RGB triple.
//
// Color is a comparable value type and is used directly as a map key.
// Equality is exact; there is no tolerance.
type Color struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// FromColor converts any color.Color to a Color using its non-premultiplied
// 8-bit components. Alpha is discarded.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B}
}

// NRGBA returns the color as a fully opaque color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Hex renders the color as "#rrggbb".
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// Less reports whether c sorts before other in lexicographic (R, G, B) order.
//
// This is the fixed key order of the color index; nearest-color ties are
// broken in favour of the color that sorts first.
func (c Color) Less(other Color) bool {
	if c.R != other.R {
		return c.R < other.R
	}
	if c.G != other.G {
		return c.G < other.G
	}
	return c.B < other.B
}

// ParseHex parses "#RRGGBB" (the leading '#' is required, case insensitive).
func ParseHex(s string) (Color, error) {
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := cf.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Distance returns the Euclidean distance between a and b in RGB space.
//
// Channels are widened to float64 before subtraction. The result is
// symmetric and zero only when a == b.
func Distance(a, b Color) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// SampleColor reads the color of the single pixel at (x, y).
//
// Coordinates are absolute, in the image's own coordinate space, so callers
// working with images whose bounds do not start at the origin must add
// Bounds().Min themselves.
//
// Returns an error if (x, y) lies outside the image bounds.
func SampleColor(img image.Image, x, y int) (Color, error) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return Color{}, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	if n, ok := img.(*image.NRGBA); ok {
		c := n.NRGBAAt(x, y)
		return Color{R: c.R, G: c.G, B: c.B}, nil
	}
	return FromColor(img.At(x, y)), nil
}
