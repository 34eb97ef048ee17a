// Package export renders a two-dimensional plane of an ICS image as an
// ordinary picture.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"math/cmplx"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/robert-malhotra/go-ics/ics"
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/layout"
)

// Format is an output picture format.
type Format string

const (
	TIFF Format = "tiff"
	BMP  Format = "bmp"
	PNG  Format = "png"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrNoPlane       = errors.New("plane index out of range")
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case TIFF, BMP, PNG:
		return f, nil
	case "tif":
		return TIFF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Plane is one x/y plane of sample values, x varying fastest.
type Plane struct {
	Width, Height int
	Values        []float64
}

// Planes returns the number of x/y planes in an image of dims.
func Planes(dims []int) int {
	if len(dims) <= 2 {
		return 1
	}
	return layout.Count(dims[2:])
}

// ReadPlane reads plane index of f. Planes are numbered in file order over
// all dimensions past the second. Complex samples are reduced to their
// magnitude.
func ReadPlane(f *ics.File, index int) (Plane, error) {
	dt, dims, err := f.Layout()
	if err != nil {
		return Plane{}, err
	}
	if len(dims) == 0 {
		return Plane{}, ics.ErrNoLayout
	}
	if index < 0 || index >= Planes(dims) {
		return Plane{}, fmt.Errorf("%w: %d of %d", ErrNoPlane, index, Planes(dims))
	}

	offset := make([]int, len(dims))
	size := make([]int, len(dims))
	copy(size, dims)
	rest := index
	for i := 2; i < len(dims); i++ {
		offset[i] = rest % dims[i]
		rest /= dims[i]
		size[i] = 1
	}
	buf, err := f.ReadROI(offset, size, nil)
	if err != nil {
		return Plane{}, err
	}

	p := Plane{Width: dims[0], Height: 1}
	if len(dims) > 1 {
		p.Height = dims[1]
	}
	if dt.IsComplex() {
		c, err := dtype.ConvertToSlice[complex128](dt, buf)
		if err != nil {
			return Plane{}, err
		}
		p.Values = make([]float64, len(c))
		for i, v := range c {
			p.Values[i] = cmplx.Abs(v)
		}
		return p, nil
	}
	p.Values, err = dtype.ConvertToSlice[float64](dt, buf)
	return p, err
}

// bounds returns the smallest and largest finite value.
func (p Plane) bounds() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range p.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// Gray maps the plane linearly onto the full gray range, 16-bit when deep
// is set and 8-bit otherwise. The first row of the plane is the top row of
// the picture.
func Gray(p Plane, deep bool) image.Image {
	lo, hi := p.bounds()
	scale := 0.0
	if hi > lo {
		scale = 1 / (hi - lo)
	}
	norm := func(v float64) float64 {
		if math.IsNaN(v) {
			return 0
		}
		return math.Min(math.Max((v-lo)*scale, 0), 1)
	}

	rect := image.Rect(0, 0, p.Width, p.Height)
	if deep {
		img := image.NewGray16(rect)
		for i, v := range p.Values {
			img.SetGray16(i%p.Width, i/p.Width, color.Gray16{Y: uint16(math.Round(norm(v) * 0xffff))})
		}
		return img
	}
	img := image.NewGray(rect)
	for i, v := range p.Values {
		img.SetGray(i%p.Width, i/p.Width, color.Gray{Y: uint8(math.Round(norm(v) * 0xff))})
	}
	return img
}

// Fit scales img down so that neither side exceeds maxSide. Smaller images
// and a maxSide of zero leave img unchanged.
func Fit(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return img
	}
	scale := float64(maxSide) / float64(max(b.Dx(), b.Dy()))
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))

	var dst draw.Image
	if _, ok := img.(*image.Gray16); ok {
		dst = image.NewGray16(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewGray(image.Rect(0, 0, w, h))
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes img to w in format f. BMP has no 16-bit gray, so deep images
// are reduced to 8 bits.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case BMP:
		if g16, ok := img.(*image.Gray16); ok {
			g := image.NewGray(g16.Bounds())
			draw.Draw(g, g.Bounds(), g16, g16.Bounds().Min, draw.Src)
			img = g
		}
		return bmp.Encode(w, img)
	case PNG:
		return png.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
