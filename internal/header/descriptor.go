package header

import (
	"fmt"

	"github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/filter"
	"github.com/robert-malhotra/go-ics/internal/history"
)

const (
	// MaxDims is the largest number of dimensions an image may have.
	MaxDims = 10
	// MaxChannels is the largest number of sensor channels.
	MaxChannels = 16

	DefaultVersion  = 2
	CoordVideo      = "video"
	UnitsUndefined  = "undefined"
	UnitsRelative   = "relative"
	LabelIntensity  = "intensity"
	bitsKeyword     = "bits"
	channelsKeyword = "Channels"
)

var (
	defaultOrders = []string{"x", "y", "z", "t", "probe"}
	defaultLabels = []string{"x-position", "y-position", "z-position", "time", "probe"}
)

// DefaultOrder returns the order name and label ICS writers assign to
// dimension i.
func DefaultOrder(i int) (order, label string) {
	if i < len(defaultOrders) {
		return defaultOrders[i], defaultLabels[i]
	}
	name := fmt.Sprintf("dim_%d", i)
	return name, name
}

// Dim describes one image dimension.
type Dim struct {
	Size   int
	Order  string
	Label  string
	Origin float64
	Scale  float64
	Unit   string
}

// Imel describes how sample values map to physical quantities.
type Imel struct {
	Origin float64
	Scale  float64
	Unit   string
}

// Source locates the sample data of a version 2 file.
type Source struct {
	File   string
	Offset int64
}

// Param is a named sensor parameter with one value per channel.
type Param struct {
	Name   string
	Values []string
}

// Sensor holds acquisition parameters.
type Sensor struct {
	Type     []string
	Model    string
	Channels int
	Params   []Param
}

// Param returns the parameter called name.
func (s *Sensor) Param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// SetParam replaces or appends the parameter called name.
func (s *Sensor) SetParam(name string, values ...string) {
	for i := range s.Params {
		if s.Params[i].Name == name {
			s.Params[i].Values = values
			return
		}
	}
	s.Params = append(s.Params, Param{Name: name, Values: values})
}

// Clone returns a deep copy of s.
func (s *Sensor) Clone() *Sensor {
	if s == nil {
		return nil
	}
	c := &Sensor{
		Type:     append([]string(nil), s.Type...),
		Model:    s.Model,
		Channels: s.Channels,
		Params:   make([]Param, len(s.Params)),
	}
	for i, p := range s.Params {
		c.Params[i] = Param{Name: p.Name, Values: append([]string(nil), p.Values...)}
	}
	return c
}

// Descriptor is the content of an ICS header.
type Descriptor struct {
	Version  int
	Filename string

	DataType dtype.DataType
	Dims     []Dim
	Coord    string
	SigBits  int
	Imel     Imel

	Compression filter.Compression
	// Level is the gzip level used when writing; it is not stored.
	Level     int
	ByteOrder binary.Order
	ScilType  string

	Source  Source
	Sensor  *Sensor
	History history.Log
}

// New returns an empty descriptor for the given version with the standard
// defaults filled in.
func New(version int) *Descriptor {
	if version == 0 {
		version = DefaultVersion
	}
	return &Descriptor{
		Version: version,
		Coord:   CoordVideo,
		Imel:    Imel{Scale: 1, Unit: UnitsRelative},
		Level:   filter.DefaultLevel,
	}
}

// SetLayout sets the data type and dimensions, assigning default orders,
// labels and positions.
func (d *Descriptor) SetLayout(dt dtype.DataType, sizes []int) error {
	if len(sizes) > MaxDims {
		return fmt.Errorf("%w: %d", ErrTooManyDims, len(sizes))
	}
	if dt.Size() == 0 {
		return fmt.Errorf("%w: %v", dtype.ErrUnknownDataType, dt)
	}
	d.DataType = dt
	d.Dims = make([]Dim, len(sizes))
	for i, n := range sizes {
		order, label := DefaultOrder(i)
		d.Dims[i] = Dim{Size: n, Order: order, Label: label, Scale: 1, Unit: UnitsUndefined}
	}
	d.SigBits = dt.Bits()
	return nil
}

// Sizes returns the size of each dimension.
func (d *Descriptor) Sizes() []int {
	sizes := make([]int, len(d.Dims))
	for i, dim := range d.Dims {
		sizes[i] = dim.Size
	}
	return sizes
}

// ImageSize returns the number of samples, or 0 without layout.
func (d *Descriptor) ImageSize() int {
	if len(d.Dims) == 0 {
		return 0
	}
	n := 1
	for _, dim := range d.Dims {
		n *= dim.Size
	}
	return n
}

// ImelSize returns the size of one sample in bytes.
func (d *Descriptor) ImelSize() int {
	return d.DataType.Size()
}

// DataSize returns the size of the sample data in bytes.
func (d *Descriptor) DataSize() int64 {
	return int64(d.ImageSize()) * int64(d.ImelSize())
}

// Inline reports whether the sample data follows the header in the same
// file.
func (d *Descriptor) Inline() bool {
	return d.Version == 2 && d.Source.File == ""
}

// Clone returns a deep copy of d.
func (d *Descriptor) Clone() *Descriptor {
	c := *d
	c.Dims = append([]Dim(nil), d.Dims...)
	c.ByteOrder = append(binary.Order(nil), d.ByteOrder...)
	c.Sensor = d.Sensor.Clone()
	c.History = *d.History.Clone()
	return &c
}
