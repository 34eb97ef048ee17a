package ics

import (
	"fmt"

	"github.com/robert-malhotra/go-ics/internal/header"
)

// Layout returns the data type and the size of each dimension.
func (f *File) Layout() (DataType, []int, error) {
	if err := f.checkRD("Layout"); err != nil {
		return Unknown, nil, err
	}
	return f.desc.DataType, f.desc.Sizes(), nil
}

// SetLayout sets the data type and dimensions of a new image. Orders, labels
// and positions are reset to their defaults. The layout cannot change once
// data has been attached.
func (f *File) SetLayout(dt DataType, dims []int) error {
	if err := f.checkWD("SetLayout"); err != nil {
		return err
	}
	if f.attached {
		return fmt.Errorf("SetLayout: %w", ErrDuplicateData)
	}
	for i, n := range dims {
		if n < 0 {
			return fmt.Errorf("%w: dimension %d has size %d", ErrIllParameter, i, n)
		}
	}
	return f.desc.SetLayout(dt, dims)
}

// DataSize returns the size of the image data in bytes.
func (f *File) DataSize() int64 {
	return f.desc.DataSize()
}

// ImelSize returns the size of one sample in bytes.
func (f *File) ImelSize() int {
	return f.desc.ImelSize()
}

// ImageSize returns the number of samples in the image.
func (f *File) ImageSize() int {
	return f.desc.ImageSize()
}

func (f *File) dim(op string, i int) (*header.Dim, error) {
	if i < 0 || i >= len(f.desc.Dims) {
		return nil, fmt.Errorf("%s: dimension %d of %d: %w", op, i, len(f.desc.Dims), ErrNotValidAction)
	}
	return &f.desc.Dims[i], nil
}

// Position returns the origin of the first sample, the distance between
// samples and the unit along dimension i.
func (f *File) Position(i int) (origin, scale float64, units string, err error) {
	if err := f.checkRMD("Position"); err != nil {
		return 0, 0, "", err
	}
	d, err := f.dim("Position", i)
	if err != nil {
		return 0, 0, "", err
	}
	units = d.Unit
	if units == "" {
		units = header.UnitsUndefined
	}
	return d.Origin, d.Scale, units, nil
}

// SetPosition sets the position of dimension i. Empty units mean
// "undefined".
func (f *File) SetPosition(i int, origin, scale float64, units string) error {
	if err := f.checkWMD("SetPosition"); err != nil {
		return err
	}
	d, err := f.dim("SetPosition", i)
	if err != nil {
		return err
	}
	if units == "" {
		units = header.UnitsUndefined
	}
	d.Origin, d.Scale, d.Unit = origin, scale, units
	return nil
}

// Order returns the name and label of dimension i.
func (f *File) Order(i int) (order, label string, err error) {
	if err := f.checkRMD("Order"); err != nil {
		return "", "", err
	}
	d, err := f.dim("Order", i)
	if err != nil {
		return "", "", err
	}
	return d.Order, d.Label, nil
}

// SetOrder sets the name and label of dimension i. An empty label takes the
// name; an empty name keeps the current one and only sets the label.
func (f *File) SetOrder(i int, order, label string) error {
	if err := f.checkWMD("SetOrder"); err != nil {
		return err
	}
	d, err := f.dim("SetOrder", i)
	if err != nil {
		return err
	}
	switch {
	case order != "":
		d.Order = order
		if label == "" {
			label = order
		}
		d.Label = label
	case label != "":
		d.Label = label
	default:
		return fmt.Errorf("SetOrder: neither order nor label given: %w", ErrNotValidAction)
	}
	return nil
}

// CoordinateSystem returns the coordinate system of the positions.
func (f *File) CoordinateSystem() (string, error) {
	if err := f.checkRMD("CoordinateSystem"); err != nil {
		return "", err
	}
	if f.desc.Coord == "" {
		return header.CoordVideo, nil
	}
	return f.desc.Coord, nil
}

// SetCoordinateSystem sets the coordinate system. Empty means "video".
func (f *File) SetCoordinateSystem(coord string) error {
	if err := f.checkWMD("SetCoordinateSystem"); err != nil {
		return err
	}
	if coord == "" {
		coord = header.CoordVideo
	}
	f.desc.Coord = coord
	return nil
}

// SignificantBits returns the number of bits of each sample that carry
// information.
func (f *File) SignificantBits() (int, error) {
	if err := f.checkRD("SignificantBits"); err != nil {
		return 0, err
	}
	return f.desc.SigBits, nil
}

// SetSignificantBits sets the number of significant bits, clamped to the
// size of the data type.
func (f *File) SetSignificantBits(n int) error {
	if err := f.checkWD("SetSignificantBits"); err != nil {
		return err
	}
	if len(f.desc.Dims) == 0 {
		return fmt.Errorf("SetSignificantBits: %w", ErrNoLayout)
	}
	if n < 0 {
		return fmt.Errorf("SetSignificantBits(%d): %w", n, ErrIllParameter)
	}
	f.desc.SigBits = min(n, f.desc.DataType.Size()*8)
	return nil
}

// ImelUnits returns the offset, scale and unit of the sample values.
func (f *File) ImelUnits() (origin, scale float64, units string, err error) {
	if err := f.checkRMD("ImelUnits"); err != nil {
		return 0, 0, "", err
	}
	im := f.desc.Imel
	if im.Unit == "" {
		im.Unit = header.UnitsRelative
	}
	return im.Origin, im.Scale, im.Unit, nil
}

// SetImelUnits sets the offset, scale and unit of the sample values. Empty
// units mean "relative".
func (f *File) SetImelUnits(origin, scale float64, units string) error {
	if err := f.checkWMD("SetImelUnits"); err != nil {
		return err
	}
	if units == "" {
		units = header.UnitsRelative
	}
	f.desc.Imel = header.Imel{Origin: origin, Scale: scale, Unit: units}
	return nil
}

// ScilType returns the SCIL_TYPE string, used only by SCIL_Image.
func (f *File) ScilType() (string, error) {
	if err := f.checkRMD("ScilType"); err != nil {
		return "", err
	}
	return f.desc.ScilType, nil
}

// SetScilType sets the SCIL_TYPE string.
func (f *File) SetScilType(s string) error {
	if err := f.checkWMD("SetScilType"); err != nil {
		return err
	}
	f.desc.ScilType = s
	return nil
}

// GuessScilType derives the SCIL_TYPE string from the data type and the
// number of dimensions. SCIL_Image only knows 2-D and 3-D images of a few
// types; other images get ErrNoScilType.
func (f *File) GuessScilType() error {
	if err := f.checkWMD("GuessScilType"); err != nil {
		return err
	}
	var kind string
	switch f.desc.DataType {
	case Uint8, Int8, Uint16, Int16:
		kind = "g"
	case Float32:
		kind = "f"
	case Complex64:
		kind = "c"
	case Unknown:
		f.desc.ScilType = ""
		return fmt.Errorf("GuessScilType: %w", ErrNotValidAction)
	default:
		return fmt.Errorf("%w: %s samples", ErrNoScilType, f.desc.DataType)
	}

	switch n := len(f.desc.Dims); {
	case n > 3:
		f.desc.ScilType = ""
		return fmt.Errorf("%w: %d dimensions", ErrNoScilType, n)
	case n == 3:
		f.desc.ScilType = kind + "3d"
	default:
		f.desc.ScilType = kind + "2d"
	}
	return nil
}

// Compression returns the compression scheme of the data and, in write
// mode, the gzip level that will be used.
func (f *File) Compression() (Compression, int) {
	return f.desc.Compression, f.desc.Level
}

// Sensor returns a copy of the sensor parameters, or nil if there are none.
func (f *File) Sensor() (*Sensor, error) {
	if err := f.checkRMD("Sensor"); err != nil {
		return nil, err
	}
	return f.desc.Sensor.Clone(), nil
}

// SetSensor replaces the sensor parameters. A nil sensor removes them.
func (f *File) SetSensor(s *Sensor) error {
	if err := f.checkWMD("SetSensor"); err != nil {
		return err
	}
	if s != nil && (s.Channels < 0 || s.Channels > header.MaxChannels) {
		return fmt.Errorf("%w: %d", ErrTooManyChans, s.Channels)
	}
	f.desc.Sensor = s.Clone()
	return nil
}
