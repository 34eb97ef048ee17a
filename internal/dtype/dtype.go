// Package dtype describes the sample (imel) data types an ICS file can hold
// and converts between raw sample bytes and Go values.
//
// An ICS header does not name a data type directly. It gives three separate
// properties: the representation format (integer, real or complex), the sign
// and the number of bits per sample. [Props] and [FromProps] translate between
// that triple and [DataType].
package dtype

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnknownDataType is returned when a data type cannot be recognized.
var ErrUnknownDataType = errors.New("the datatype is not recognized")

// DataType identifies the type of a single sample.
type DataType uint8

const (
	Unknown DataType = iota
	Uint8
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Uint64
	Int64
	Float32
	Float64
	// Complex64 is a pair of float32 values (real, imaginary).
	Complex64
	// Complex128 is a pair of float64 values (real, imaginary).
	Complex128
)

// Format is the ICS representation format of a sample.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatInteger
	FormatReal
	FormatComplex
)

var formatNames = map[Format]string{
	FormatInteger: "integer",
	FormatReal:    "real",
	FormatComplex: "complex",
}

// String returns the keyword used for the format in ICS headers.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat parses a representation format keyword.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("format %q: %w", s, ErrUnknownDataType)
}

var typeNames = [...]string{
	Unknown:    "unknown",
	Uint8:      "uint8",
	Int8:       "int8",
	Uint16:     "uint16",
	Int16:      "int16",
	Uint32:     "uint32",
	Int32:      "int32",
	Uint64:     "uint64",
	Int64:      "int64",
	Float32:    "float32",
	Float64:    "float64",
	Complex64:  "complex64",
	Complex128: "complex128",
}

func (dt DataType) String() string {
	if int(dt) < len(typeNames) {
		return typeNames[dt]
	}
	return fmt.Sprintf("DataType(%d)", uint8(dt))
}

// Parse returns the data type with the given name, as produced by String.
func Parse(s string) (DataType, error) {
	for i, name := range typeNames {
		if name == s && DataType(i) != Unknown {
			return DataType(i), nil
		}
	}
	return Unknown, fmt.Errorf("type %q: %w", s, ErrUnknownDataType)
}

// MarshalText implements encoding.TextMarshaler.
func (dt DataType) MarshalText() ([]byte, error) {
	if dt == Unknown || int(dt) >= len(typeNames) {
		return nil, fmt.Errorf("type %d: %w", uint8(dt), ErrUnknownDataType)
	}
	return []byte(typeNames[dt]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Parse.
func (dt *DataType) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// Size returns the number of bytes of one sample, or 0 for Unknown.
func (dt DataType) Size() int {
	switch dt {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Uint64, Int64, Float64, Complex64:
		return 8
	case Complex128:
		return 16
	default:
		return 0
	}
}

// ComponentSize returns the size of the unit byte ordering applies to.
// It equals Size except for complex types, which are reordered per component.
func (dt DataType) ComponentSize() int {
	switch dt {
	case Complex64:
		return 4
	case Complex128:
		return 8
	default:
		return dt.Size()
	}
}

// Bits returns the number of bits stored in the header for this type.
func (dt DataType) Bits() int {
	return dt.ComponentSize() * 8
}

// Signed reports whether the type is signed. Floating point and complex
// types are always signed.
func (dt DataType) Signed() bool {
	switch dt {
	case Uint8, Uint16, Uint32, Uint64, Unknown:
		return false
	default:
		return true
	}
}

// Props returns the header properties of dt.
func Props(dt DataType) (format Format, signed bool, bits int, err error) {
	switch dt {
	case Uint8, Int8, Uint16, Int16, Uint32, Int32, Uint64, Int64:
		format = FormatInteger
	case Float32, Float64:
		format = FormatReal
	case Complex64, Complex128:
		format = FormatComplex
	default:
		return FormatUnknown, false, 0, ErrUnknownDataType
	}
	return format, dt.Signed(), dt.Bits(), nil
}

// FromProps returns the data type described by the header properties.
// Real and complex data are signed regardless of the sign keyword.
func FromProps(format Format, signed bool, bits int) (DataType, error) {
	switch format {
	case FormatInteger:
		switch bits {
		case 8:
			if signed {
				return Int8, nil
			}
			return Uint8, nil
		case 16:
			if signed {
				return Int16, nil
			}
			return Uint16, nil
		case 32:
			if signed {
				return Int32, nil
			}
			return Uint32, nil
		case 64:
			if signed {
				return Int64, nil
			}
			return Uint64, nil
		}
	case FormatReal:
		switch bits {
		case 32:
			return Float32, nil
		case 64:
			return Float64, nil
		}
	case FormatComplex:
		switch bits {
		case 32:
			return Complex64, nil
		case 64:
			return Complex128, nil
		}
	}
	return Unknown, fmt.Errorf("%s, %d bits: %w", format, bits, ErrUnknownDataType)
}

var goTypes = map[DataType]reflect.Type{
	Uint8:      reflect.TypeOf(uint8(0)),
	Int8:       reflect.TypeOf(int8(0)),
	Uint16:     reflect.TypeOf(uint16(0)),
	Int16:      reflect.TypeOf(int16(0)),
	Uint32:     reflect.TypeOf(uint32(0)),
	Int32:      reflect.TypeOf(int32(0)),
	Uint64:     reflect.TypeOf(uint64(0)),
	Int64:      reflect.TypeOf(int64(0)),
	Float32:    reflect.TypeOf(float32(0)),
	Float64:    reflect.TypeOf(float64(0)),
	Complex64:  reflect.TypeOf(complex64(0)),
	Complex128: reflect.TypeOf(complex128(0)),
}

// GoType returns the Go type whose memory layout matches one sample of dt.
func GoType(dt DataType) (reflect.Type, error) {
	t, ok := goTypes[dt]
	if !ok {
		return nil, ErrUnknownDataType
	}
	return t, nil
}

// ForGoType returns the data type matching a Go element type.
func ForGoType(t reflect.Type) (DataType, error) {
	switch t.Kind() {
	case reflect.Uint8:
		return Uint8, nil
	case reflect.Int8:
		return Int8, nil
	case reflect.Uint16:
		return Uint16, nil
	case reflect.Int16:
		return Int16, nil
	case reflect.Uint32:
		return Uint32, nil
	case reflect.Int32:
		return Int32, nil
	case reflect.Uint64, reflect.Uint:
		return Uint64, nil
	case reflect.Int64, reflect.Int:
		return Int64, nil
	case reflect.Float32:
		return Float32, nil
	case reflect.Float64:
		return Float64, nil
	case reflect.Complex64:
		return Complex64, nil
	case reflect.Complex128:
		return Complex128, nil
	default:
		return Unknown, fmt.Errorf("Go type %v: %w", t, ErrUnknownDataType)
	}
}

// IsComplex reports whether dt holds complex samples.
func (dt DataType) IsComplex() bool {
	return dt == Complex64 || dt == Complex128
}
