package dtype

// Sample conversion
//
// Sample bytes handed to this package are always in host byte order; the
// reordering from the file's byte order happens in the binary package before
// any conversion takes place. That makes the common case, reading a file into
// a slice of the matching Go type, a single memory copy.
//
// When the destination element type differs from the stored type (reading
// uint8 samples into a []float64, say) each sample is decoded into its own Go
// type and converted with reflect. Complex samples can only be converted to
// complex destinations.

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

// Convert decodes host-order sample bytes into dest, which must be a pointer
// to a slice. The slice is grown when it is too short and trimmed to the
// number of samples otherwise.
func Convert(dt DataType, data []byte, dest interface{}) error {
	size := dt.Size()
	if size == 0 {
		return ErrUnknownDataType
	}
	if len(data)%size != 0 {
		return fmt.Errorf("data length %d is not a multiple of sample size %d", len(data), size)
	}

	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr {
		return fmt.Errorf("dest must be a pointer")
	}
	elemVal := destVal.Elem()
	if elemVal.Kind() != reflect.Slice {
		return fmt.Errorf("dest must point to a slice, got %v", elemVal.Kind())
	}

	n := len(data) / size
	if elemVal.Len() < n {
		elemVal.Set(reflect.MakeSlice(elemVal.Type(), n, n))
	} else if elemVal.Len() > n {
		elemVal.Set(elemVal.Slice(0, n))
	}
	if n == 0 {
		return nil
	}

	if canDirectCopy(dt, elemVal.Type().Elem()) {
		directCopy(data, n*size, elemVal)
		return nil
	}

	elemType := elemVal.Type().Elem()
	for i := 0; i < n; i++ {
		v := decodeSample(dt, data[i*size:(i+1)*size])
		if !v.Type().ConvertibleTo(elemType) {
			return fmt.Errorf("cannot convert %s samples to %v", dt, elemType)
		}
		elemVal.Index(i).Set(v.Convert(elemType))
	}

	return nil
}

// ConvertToSlice decodes host-order sample bytes into a newly allocated slice.
func ConvertToSlice[T any](dt DataType, data []byte) ([]T, error) {
	var result []T
	if err := Convert(dt, data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// decodeSample decodes one sample into a value of its natural Go type.
func decodeSample(dt DataType, b []byte) reflect.Value {
	order := binary.NativeEndian
	switch dt {
	case Uint8:
		return reflect.ValueOf(b[0])
	case Int8:
		return reflect.ValueOf(int8(b[0]))
	case Uint16:
		return reflect.ValueOf(order.Uint16(b))
	case Int16:
		return reflect.ValueOf(int16(order.Uint16(b)))
	case Uint32:
		return reflect.ValueOf(order.Uint32(b))
	case Int32:
		return reflect.ValueOf(int32(order.Uint32(b)))
	case Uint64:
		return reflect.ValueOf(order.Uint64(b))
	case Int64:
		return reflect.ValueOf(int64(order.Uint64(b)))
	case Float32:
		return reflect.ValueOf(math.Float32frombits(order.Uint32(b)))
	case Float64:
		return reflect.ValueOf(math.Float64frombits(order.Uint64(b)))
	case Complex64:
		re := math.Float32frombits(order.Uint32(b))
		im := math.Float32frombits(order.Uint32(b[4:]))
		return reflect.ValueOf(complex(re, im))
	case Complex128:
		re := math.Float64frombits(order.Uint64(b))
		im := math.Float64frombits(order.Uint64(b[8:]))
		return reflect.ValueOf(complex(re, im))
	}
	return reflect.Value{}
}

// canDirectCopy reports whether samples of dt share the memory layout of
// elemType, so that host-order bytes can be copied as they are.
func canDirectCopy(dt DataType, elemType reflect.Type) bool {
	goType, ok := goTypes[dt]
	if !ok {
		return false
	}
	return elemType.Kind() == goType.Kind() && elemType.Size() == goType.Size()
}

// directCopy copies size bytes of sample data into the backing array of dest.
func directCopy(data []byte, size int, dest reflect.Value) {
	copy(unsafe.Slice((*byte)(dest.UnsafePointer()), size), data[:size])
}

// ReadScalar decodes the first sample of data.
func ReadScalar[T any](dt DataType, data []byte) (T, error) {
	var zero T
	size := dt.Size()
	if size == 0 || len(data) < size {
		return zero, fmt.Errorf("need %d bytes for one %s sample, have %d", size, dt, len(data))
	}
	result, err := ConvertToSlice[T](dt, data[:size])
	if err != nil {
		return zero, err
	}
	return result[0], nil
}
