package ics

import (
	"github.com/robert-malhotra/go-ics/internal/dtype"
)

func readTyped[T any](f *File) ([]T, error) {
	buf, err := f.ReadAll()
	if err != nil {
		return nil, err
	}
	return dtype.ConvertToSlice[T](f.desc.DataType, buf)
}

// ReadUint8 reads the image as uint8 values, converting if necessary.
func (f *File) ReadUint8() ([]uint8, error) { return readTyped[uint8](f) }

// ReadInt8 reads the image as int8 values, converting if necessary.
func (f *File) ReadInt8() ([]int8, error) { return readTyped[int8](f) }

// ReadUint16 reads the image as uint16 values, converting if necessary.
func (f *File) ReadUint16() ([]uint16, error) { return readTyped[uint16](f) }

// ReadInt16 reads the image as int16 values, converting if necessary.
func (f *File) ReadInt16() ([]int16, error) { return readTyped[int16](f) }

// ReadUint32 reads the image as uint32 values, converting if necessary.
func (f *File) ReadUint32() ([]uint32, error) { return readTyped[uint32](f) }

// ReadInt32 reads the image as int32 values, converting if necessary.
func (f *File) ReadInt32() ([]int32, error) { return readTyped[int32](f) }

// ReadUint64 reads the image as uint64 values, converting if necessary.
func (f *File) ReadUint64() ([]uint64, error) { return readTyped[uint64](f) }

// ReadInt64 reads the image as int64 values, converting if necessary.
func (f *File) ReadInt64() ([]int64, error) { return readTyped[int64](f) }

// ReadFloat32 reads the image as float32 values, converting if necessary.
func (f *File) ReadFloat32() ([]float32, error) { return readTyped[float32](f) }

// ReadFloat64 reads the image as float64 values, converting if necessary.
func (f *File) ReadFloat64() ([]float64, error) { return readTyped[float64](f) }

// ReadComplex64 reads complex images as complex64 values.
func (f *File) ReadComplex64() ([]complex64, error) { return readTyped[complex64](f) }

// ReadComplex128 reads complex images as complex128 values.
func (f *File) ReadComplex128() ([]complex128, error) { return readTyped[complex128](f) }

// ReadInto reads the image into dest, a pointer to a slice of any numeric
// type the samples convert to.
func (f *File) ReadInto(dest any) error {
	buf, err := f.ReadAll()
	if err != nil {
		return err
	}
	return dtype.Convert(f.desc.DataType, buf, dest)
}

// SetPixels attaches the image data from a Go slice, converting its values
// to the data type set by SetLayout.
func (f *File) SetPixels(src any) error {
	if err := f.checkWD("SetPixels"); err != nil {
		return err
	}
	if f.desc.DataType == Unknown {
		return ErrNoLayout
	}
	buf, err := dtype.Encode(f.desc.DataType, src)
	if err != nil {
		return err
	}
	return f.SetData(buf)
}
