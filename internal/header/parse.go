package header

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/filter"
	"github.com/robert-malhotra/go-ics/internal/history"
)

// maxReadLine bounds the lines Parse accepts. It is more generous than
// MaxLineLength so headers written by other tools can still be read.
const maxReadLine = 16 * history.MaxLineLength

// scanner splits a header into lines and tracks the byte offset consumed.
type scanner struct {
	r        *bufio.Reader
	fieldSep byte
	lineSep  byte
	offset   int64
}

func newScanner(r io.Reader) (*scanner, error) {
	br := bufio.NewReaderSize(r, maxReadLine)
	var seps [2]byte
	if _, err := io.ReadFull(br, seps[:]); err != nil {
		return nil, fmt.Errorf("%w: reading separators: %v", ErrNotIcsFile, err)
	}
	if seps[0] == seps[1] || isWordByte(seps[0]) || isWordByte(seps[1]) {
		return nil, fmt.Errorf("%w: bad separator line %q", ErrNotIcsFile, seps[:])
	}
	return &scanner{r: br, fieldSep: seps[0], lineSep: seps[1], offset: 2}, nil
}

func isWordByte(b byte) bool {
	return b == '_' || b == '.' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// line returns the next line without its separator, or io.EOF.
func (s *scanner) line() (string, error) {
	b, err := s.r.ReadSlice(s.lineSep)
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		return "", fmt.Errorf("%w: header line longer than %d bytes", ErrLineOverflow, maxReadLine)
	case err == io.EOF && len(b) == 0:
		return "", io.EOF
	case err != nil && err != io.EOF:
		return "", err
	}
	s.offset += int64(len(b))
	b = bytes.TrimSuffix(b, []byte{s.lineSep})
	if s.lineSep == '\n' {
		b = bytes.TrimSuffix(b, []byte{'\r'})
	}
	return string(b), nil
}

// fields returns the next non-empty line split on the field separator.
// Repeated separators count as one.
func (s *scanner) fields() ([]string, error) {
	for {
		l, err := s.line()
		if err != nil {
			return nil, err
		}
		f := strings.FieldsFunc(l, func(r rune) bool { return r == rune(s.fieldSep) })
		if len(f) > 0 {
			return f, nil
		}
	}
}

func (s *scanner) version() (int, error) {
	f, err := s.fields()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotIcsFile, err)
	}
	if f[0] != "ics_version" || len(f) < 2 {
		return 0, fmt.Errorf("%w: first keyword is %q", ErrNotIcsFile, f[0])
	}
	switch f[1] {
	case "1.0":
		return 1, nil
	case "2.0":
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: version %q", ErrNotIcsFile, f[1])
	}
}

// ReadVersion reads only as much of a header as needed to return its
// version.
func ReadVersion(r io.Reader) (int, error) {
	s, err := newScanner(r)
	if err != nil {
		return 0, err
	}
	return s.version()
}

// Parse reads a header up to and including its "end" line, or to the end of
// r. It returns the descriptor and the number of bytes consumed, which is
// where inline version 2 data starts.
func Parse(r io.Reader) (*Descriptor, int64, error) {
	s, err := newScanner(r)
	if err != nil {
		return nil, 0, err
	}
	version, err := s.version()
	if err != nil {
		return nil, 0, err
	}

	p := &parser{d: New(version), fieldSep: string(s.fieldSep)}
	for {
		f, err := s.fields()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		if f[0] == "end" {
			break
		}
		if err := p.line(f); err != nil {
			return nil, 0, err
		}
	}
	if err := p.finish(); err != nil {
		return nil, 0, err
	}
	return p.d, s.offset, nil
}

// parser collects header lines; the layout and parameter lines can only be
// interpreted once all of them are known.
type parser struct {
	d        *Descriptor
	fieldSep string

	order, sizes                 []string
	origin, scale, units, labels []string
	format, sign                 string
	sigBits, byteOrder           string
	haveSigBits                  bool
}

func (p *parser) line(f []string) error {
	cat, rest := f[0], f[1:]
	switch cat {
	case "ics_version":
		return nil
	case "filename":
		p.d.Filename = strings.Join(rest, p.fieldSep)
		return nil
	case history.Category:
		if len(rest) == 0 {
			return nil
		}
		r, err := history.FromFields(rest)
		if err != nil {
			return err
		}
		p.d.History.Append(r)
		return nil
	case "source":
		return p.source(rest)
	case "layout":
		return p.layout(rest)
	case "representation":
		return p.representation(rest)
	case "parameter":
		return p.parameter(rest)
	case "sensor":
		return p.sensor(rest)
	default:
		return fmt.Errorf("%w: %q", ErrMissCat, cat)
	}
}

func (p *parser) source(f []string) error {
	if len(f) == 0 {
		return fmt.Errorf("%w: source", ErrMissSubCat)
	}
	switch f[0] {
	case "file":
		p.d.Source.File = strings.Join(f[1:], p.fieldSep)
	case "offset":
		if len(f) < 2 {
			return fmt.Errorf("%w: source offset has no value", ErrIllIcsToken)
		}
		off, err := strconv.ParseInt(f[1], 10, 64)
		if err != nil || off < 0 {
			return fmt.Errorf("%w: source offset %q", ErrIllIcsToken, f[1])
		}
		p.d.Source.Offset = off
	default:
		return fmt.Errorf("%w: source %q", ErrMissSubCat, f[0])
	}
	return nil
}

func (p *parser) layout(f []string) error {
	if len(f) == 0 {
		return ErrMissLayoutSubCat
	}
	vals := f[1:]
	switch f[0] {
	case "parameters":
		// Redundant with the length of "order".
	case "order":
		p.order = vals
	case "sizes":
		p.sizes = vals
	case "coordinates":
		if len(vals) > 0 {
			p.d.Coord = vals[0]
		}
	case "significant_bits":
		if len(vals) > 0 {
			p.sigBits = vals[0]
			p.haveSigBits = true
		}
	default:
		return fmt.Errorf("%w: %q", ErrMissLayoutSubCat, f[0])
	}
	return nil
}

func (p *parser) representation(f []string) error {
	if len(f) == 0 {
		return ErrMissRepresSubCat
	}
	vals := f[1:]
	first := ""
	if len(vals) > 0 {
		first = vals[0]
	}
	switch f[0] {
	case "format":
		p.format = first
	case "sign":
		p.sign = first
	case "compression":
		c, err := filter.ParseCompression(first)
		if err != nil {
			return err
		}
		p.d.Compression = c
	case "byte_order":
		p.byteOrder = strings.Join(vals, " ")
	case "SCIL_TYPE":
		p.d.ScilType = first
	default:
		return fmt.Errorf("%w: %q", ErrMissRepresSubCat, f[0])
	}
	return nil
}

func (p *parser) parameter(f []string) error {
	if len(f) == 0 {
		return ErrMissParamSubCat
	}
	vals := f[1:]
	switch f[0] {
	case "origin":
		p.origin = vals
	case "scale":
		p.scale = vals
	case "units":
		p.units = vals
	case "labels":
		p.labels = vals
	default:
		return fmt.Errorf("%w: %q", ErrMissParamSubCat, f[0])
	}
	return nil
}

func (p *parser) sensor(f []string) error {
	if len(f) == 0 {
		return ErrMissSensorSubCat
	}
	if p.d.Sensor == nil {
		p.d.Sensor = &Sensor{}
	}
	sn := p.d.Sensor
	switch f[0] {
	case "type":
		sn.Type = append([]string(nil), f[1:]...)
	case "model":
		sn.Model = strings.Join(f[1:], p.fieldSep)
	case "s_params":
		if len(f) < 2 {
			return ErrMissSensorSubSubCat
		}
		name, vals := f[1], f[2:]
		if name == channelsKeyword {
			if len(vals) == 0 {
				return fmt.Errorf("%w: sensor channel count", ErrIllIcsToken)
			}
			n, err := strconv.Atoi(vals[0])
			if err != nil || n < 0 {
				return fmt.Errorf("%w: sensor channel count %q", ErrIllIcsToken, vals[0])
			}
			if n > MaxChannels {
				return fmt.Errorf("%w: %d", ErrTooManyChans, n)
			}
			sn.Channels = n
			return nil
		}
		sn.SetParam(name, append([]string(nil), vals...)...)
	default:
		return fmt.Errorf("%w: %q", ErrMissSensorSubCat, f[0])
	}
	return nil
}

func (p *parser) finish() error {
	d := p.d
	if p.order == nil || p.sizes == nil {
		return ErrNoLayout
	}
	if len(p.order) != len(p.sizes) {
		return fmt.Errorf("%w: %d order entries but %d sizes", ErrNoLayout, len(p.order), len(p.sizes))
	}
	bitsIdx := -1
	for i, o := range p.order {
		if o == bitsKeyword {
			bitsIdx = i
			break
		}
	}
	if bitsIdx < 0 {
		return ErrMissBits
	}
	if n := len(p.order) - 1; n > MaxDims {
		return fmt.Errorf("%w: %d", ErrTooManyDims, n)
	}

	bits, err := atoi(p.sizes[bitsIdx])
	if err != nil {
		return err
	}
	format := dtype.FormatInteger
	if p.format != "" {
		if format, err = dtype.ParseFormat(p.format); err != nil {
			return err
		}
	}
	var signed bool
	switch p.sign {
	case "", "unsigned":
	case "signed":
		signed = true
	default:
		return fmt.Errorf("%w: sign %q", dtype.ErrUnknownDataType, p.sign)
	}
	if d.DataType, err = dtype.FromProps(format, signed, bits); err != nil {
		return err
	}

	d.Dims = d.Dims[:0]
	for i, order := range p.order {
		size, err := atoi(p.sizes[i])
		if err != nil {
			return err
		}
		origin, err := atof(pick(p.origin, i, "0"))
		if err != nil {
			return err
		}
		scale, err := atof(pick(p.scale, i, "1"))
		if err != nil {
			return err
		}
		if i == bitsIdx {
			d.Imel = Imel{Origin: origin, Scale: scale, Unit: pick(p.units, i, UnitsRelative)}
			continue
		}
		d.Dims = append(d.Dims, Dim{
			Size:   size,
			Order:  order,
			Label:  pick(p.labels, i, defaultLabel(order)),
			Origin: origin,
			Scale:  scale,
			Unit:   pick(p.units, i, UnitsUndefined),
		})
	}

	d.SigBits = d.DataType.Bits()
	if p.haveSigBits {
		if d.SigBits, err = atoi(p.sigBits); err != nil {
			return err
		}
	}

	unit := d.DataType.ComponentSize()
	if p.byteOrder == "" {
		d.ByteOrder = binary.Machine(unit)
	} else {
		order, err := parseOrder(strings.Fields(p.byteOrder), unit)
		if err != nil {
			return err
		}
		d.ByteOrder = order
	}
	return nil
}

// parseOrder reads a byte_order list. Complex data written with one entry
// per sample byte is folded onto a single component.
func parseOrder(vals []string, unit int) (binary.Order, error) {
	order := make(binary.Order, len(vals))
	for i, v := range vals {
		n, err := atoi(v)
		if err != nil {
			return nil, err
		}
		order[i] = n
	}
	if len(order) == 2*unit {
		folded := make(binary.Order, unit)
		for i := range folded {
			if order[i] > 0 {
				folded[i] = (order[i]-1)%unit + 1
			}
		}
		order = folded
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

func defaultLabel(order string) string {
	for i, o := range defaultOrders {
		if o == order {
			return defaultLabels[i]
		}
	}
	return order
}

func pick(vals []string, i int, def string) string {
	if i < len(vals) && vals[i] != "" {
		return vals[i]
	}
	return def
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a count", ErrIllIcsToken, s)
	}
	return n, nil
}

func atof(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrIllIcsToken, s)
	}
	return v, nil
}
