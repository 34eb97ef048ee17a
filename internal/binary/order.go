// Package binary handles the byte order of ICS sample data.
//
// ICS headers describe byte order as a permutation rather than a flag: the
// "byte_order" entry lists, for each byte of a sample from least to most
// significant, its 1-based position within the stored sample. Little-endian
// 4-byte data is "1 2 3 4", big-endian is "4 3 2 1", and any other
// arrangement is possible. Sample data read from a file is reordered into
// host order before it is handed to callers.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrSizeConflict is returned when a buffer is not a whole number of samples.
var ErrSizeConflict = errors.New("image size conflicts with bits per element")

// ErrInvalidOrder is returned for byte order entries that are out of range.
var ErrInvalidOrder = errors.New("invalid byte order")

// MaxUnit is the largest unit (in bytes) a byte order can describe.
const MaxUnit = 16

// Order is a byte order permutation with 1-based positions.
type Order []int

// hostLittleEndian reports whether the running machine is little-endian.
func hostLittleEndian() bool {
	var word [2]byte
	binary.NativeEndian.PutUint16(word[:], 1)
	return word[0] == 1
}

// Machine returns the host byte order for a unit of n bytes.
func Machine(n int) Order {
	if n > MaxUnit {
		n = MaxUnit
	}
	return fill(n, hostLittleEndian())
}

// LittleEndian returns the little-endian order for a unit of n bytes.
func LittleEndian(n int) Order {
	return fill(n, true)
}

// BigEndian returns the big-endian order for a unit of n bytes.
func BigEndian(n int) Order {
	return fill(n, false)
}

func fill(n int, little bool) Order {
	o := make(Order, n)
	for i := range o {
		if little {
			o[i] = i + 1
		} else {
			o[i] = n - i
		}
	}
	return o
}

// Empty reports whether the order carries no usable information. Writers
// writes zeros for byte orders it does not know, and such data is left as is.
func (o Order) Empty() bool {
	if len(o) == 0 {
		return true
	}
	for _, v := range o {
		if v == 0 {
			return true
		}
	}
	return false
}

// Equal reports whether two orders are identical.
func (o Order) Equal(other Order) bool {
	if len(o) != len(other) {
		return false
	}
	for i := range o {
		if o[i] != other[i] {
			return false
		}
	}
	return true
}

// Validate checks that every entry addresses a byte inside a unit of len(o).
func (o Order) Validate() error {
	for i, v := range o {
		if v < 0 || v > len(o) {
			return fmt.Errorf("%w: entry %d is %d for a %d-byte unit", ErrInvalidOrder, i, v, len(o))
		}
	}
	return nil
}

// Reorder rewrites every unit-byte sample in buf from order src to host order.
// Samples stored in an empty or mismatched order are left untouched.
func Reorder(buf []byte, src Order, unit int) error {
	return Convert(buf, src, Machine(unit), unit)
}

// Convert rewrites every unit-byte sample in buf from order src to order dst.
func Convert(buf []byte, src, dst Order, unit int) error {
	if unit <= 0 {
		return nil
	}
	if unit > MaxUnit {
		return fmt.Errorf("%w: %d-byte unit", ErrInvalidOrder, unit)
	}
	if len(buf)%unit != 0 {
		return fmt.Errorf("%w: %d bytes in %d-byte units", ErrSizeConflict, len(buf), unit)
	}
	if len(src) != unit || len(dst) != unit || src.Empty() || dst.Empty() || src.Equal(dst) {
		return nil
	}
	if err := src.Validate(); err != nil {
		return err
	}
	if err := dst.Validate(); err != nil {
		return err
	}

	var sample [MaxUnit]byte
	for off := 0; off < len(buf); off += unit {
		s := buf[off : off+unit]
		for i := 0; i < unit; i++ {
			sample[i] = s[src[i]-1]
		}
		for i := 0; i < unit; i++ {
			s[dst[i]-1] = sample[i]
		}
	}
	return nil
}
