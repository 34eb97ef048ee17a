package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

// Encode converts Go values to host-order sample bytes of type dt.
// The src parameter should be a slice or array; a scalar is encoded as a
// single sample.
func Encode(dt DataType, src interface{}) ([]byte, error) {
	size := dt.Size()
	if size == 0 {
		return nil, ErrUnknownDataType
	}

	srcVal := reflect.ValueOf(src)
	if srcVal.Kind() == reflect.Ptr {
		srcVal = srcVal.Elem()
	}

	switch srcVal.Kind() {
	case reflect.Slice, reflect.Array:
	case reflect.Invalid:
		return nil, fmt.Errorf("cannot encode nil value")
	default:
		sliceVal := reflect.MakeSlice(reflect.SliceOf(srcVal.Type()), 1, 1)
		sliceVal.Index(0).Set(srcVal)
		srcVal = sliceVal
	}

	n := srcVal.Len()
	data := make([]byte, n*size)
	if n == 0 {
		return data, nil
	}

	// Fast path: the Go slice already has the sample layout.
	if srcVal.Kind() == reflect.Slice && canDirectCopy(dt, srcVal.Type().Elem()) {
		copy(data, unsafe.Slice((*byte)(srcVal.UnsafePointer()), n*size))
		return data, nil
	}

	goType := goTypes[dt]
	for i := 0; i < n; i++ {
		elem := srcVal.Index(i)
		if !elem.Type().ConvertibleTo(goType) {
			return nil, fmt.Errorf("cannot encode %v as %s", elem.Type(), dt)
		}
		encodeSample(dt, elem.Convert(goType), data[i*size:(i+1)*size])
	}

	return data, nil
}

// encodeSample writes v, already converted to the Go type of dt, into b.
func encodeSample(dt DataType, v reflect.Value, b []byte) {
	order := binary.NativeEndian
	switch dt {
	case Uint8:
		b[0] = uint8(v.Uint())
	case Int8:
		b[0] = byte(v.Int())
	case Uint16:
		order.PutUint16(b, uint16(v.Uint()))
	case Int16:
		order.PutUint16(b, uint16(v.Int()))
	case Uint32:
		order.PutUint32(b, uint32(v.Uint()))
	case Int32:
		order.PutUint32(b, uint32(v.Int()))
	case Uint64:
		order.PutUint64(b, v.Uint())
	case Int64:
		order.PutUint64(b, uint64(v.Int()))
	case Float32:
		order.PutUint32(b, math.Float32bits(float32(v.Float())))
	case Float64:
		order.PutUint64(b, math.Float64bits(v.Float()))
	case Complex64:
		c := v.Complex()
		order.PutUint32(b, math.Float32bits(float32(real(c))))
		order.PutUint32(b[4:], math.Float32bits(float32(imag(c))))
	case Complex128:
		c := v.Complex()
		order.PutUint64(b, math.Float64bits(real(c)))
		order.PutUint64(b[8:], math.Float64bits(imag(c)))
	}
}
