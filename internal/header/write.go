package header

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/history"
)

// lineWriter emits header lines and remembers the first error.
type lineWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (lw *lineWriter) line(fields ...string) {
	if lw.err != nil {
		return
	}
	s := strings.Join(fields, string(history.FieldSep)) + string(history.LineSep)
	if len(s) > history.MaxLineLength {
		lw.err = fmt.Errorf("%w: %q line of %d bytes", ErrLineOverflow, fields[0], len(s))
		return
	}
	n, err := lw.w.WriteString(s)
	lw.n += int64(n)
	lw.err = err
}

// separators writes the line declaring the field and line separators.
func (lw *lineWriter) separators() {
	n, err := lw.w.WriteString(string([]byte{history.FieldSep, history.LineSep}))
	lw.n += int64(n)
	lw.err = err
}

// Write serializes d. When withEnd is set the header is closed with an
// "end" line, after which inline version 2 data may follow. It returns the
// number of bytes written.
func Write(w io.Writer, d *Descriptor, withEnd bool) (int64, error) {
	if len(d.Dims) == 0 {
		return 0, ErrNoLayout
	}
	if len(d.Dims) > MaxDims {
		return 0, fmt.Errorf("%w: %d", ErrTooManyDims, len(d.Dims))
	}
	format, signed, bits, err := dtype.Props(d.DataType)
	if err != nil {
		return 0, err
	}
	if d.Version != 1 && d.Version != 2 {
		return 0, fmt.Errorf("%w: version %d", ErrNotIcsFile, d.Version)
	}

	lw := &lineWriter{w: bufio.NewWriter(w)}
	lw.separators()
	lw.line("ics_version", fmt.Sprintf("%d.0", d.Version))
	lw.line("filename", d.Filename)
	if d.Version == 2 && d.Source.File != "" {
		lw.line("source", "file", d.Source.File)
		lw.line("source", "offset", strconv.FormatInt(d.Source.Offset, 10))
	}

	n := len(d.Dims)
	order := []string{"layout", "order", bitsKeyword}
	sizes := []string{"layout", "sizes", strconv.Itoa(bits)}
	origin := []string{"parameter", "origin", ftoa(d.Imel.Origin)}
	scale := []string{"parameter", "scale", ftoa(d.Imel.Scale)}
	units := []string{"parameter", "units", orDefault(d.Imel.Unit, UnitsRelative)}
	labels := []string{"parameter", "labels", LabelIntensity}
	for _, dim := range d.Dims {
		order = append(order, dim.Order)
		sizes = append(sizes, strconv.Itoa(dim.Size))
		origin = append(origin, ftoa(dim.Origin))
		scale = append(scale, ftoa(dim.Scale))
		units = append(units, orDefault(dim.Unit, UnitsUndefined))
		labels = append(labels, orDefault(dim.Label, dim.Order))
	}

	lw.line("layout", "parameters", strconv.Itoa(n+1))
	lw.line(order...)
	lw.line(sizes...)
	lw.line("layout", "coordinates", orDefault(d.Coord, CoordVideo))
	sigBits := d.SigBits
	if sigBits == 0 {
		sigBits = bits
	}
	lw.line("layout", "significant_bits", strconv.Itoa(sigBits))

	sign := "unsigned"
	if signed {
		sign = "signed"
	}
	lw.line("representation", "format", format.String())
	lw.line("representation", "sign", sign)
	lw.line("representation", "compression", d.Compression.String())
	byteOrder := d.ByteOrder
	if byteOrder.Empty() {
		byteOrder = binary.Machine(d.DataType.ComponentSize())
	}
	bo := []string{"representation", "byte_order"}
	for _, v := range byteOrder {
		bo = append(bo, strconv.Itoa(v))
	}
	lw.line(bo...)
	if d.ScilType != "" {
		lw.line("representation", "SCIL_TYPE", d.ScilType)
	}

	lw.line(origin...)
	lw.line(scale...)
	lw.line(units...)
	lw.line(labels...)

	if s := d.Sensor; s != nil {
		if len(s.Type) > 0 {
			lw.line(append([]string{"sensor", "type"}, s.Type...)...)
		}
		if s.Model != "" {
			lw.line("sensor", "model", s.Model)
		}
		lw.line("sensor", "s_params", channelsKeyword, strconv.Itoa(s.Channels))
		for _, p := range s.Params {
			if len(p.Values) == 0 {
				continue
			}
			lw.line(append([]string{"sensor", "s_params", p.Name}, p.Values...)...)
		}
	}

	for _, r := range d.History.All() {
		lw.line(append([]string{history.Category}, r.Fields()...)...)
	}

	if withEnd {
		lw.line("end")
	}
	if lw.err != nil {
		return lw.n, lw.err
	}
	return lw.n, lw.w.Flush()
}

// ftoa formats a number the way it is read back, independent of locale.
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
