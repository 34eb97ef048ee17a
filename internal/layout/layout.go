// Package layout maps N-dimensional image geometry onto the linear sample
// stream of an ICS data file.
//
// ICS stores samples with the first dimension varying fastest. Every
// operation in this package therefore works on "lines": runs of samples along
// dimension 0 that are contiguous in the file. Regions of interest, strided
// memory buffers and sub-sampled reads are all expressed as a sequence of
// lines, which keeps reading a streaming, forward-only affair.
package layout

import (
	"errors"
	"fmt"
)

// ErrIllegalROI is returned when a region extends outside the image.
var ErrIllegalROI = errors.New("the given ROI extends outside the image")

// ErrIllegalStrides is returned when strides do not fit the buffer.
var ErrIllegalStrides = errors.New("strides do not match the buffer")

// Count returns the number of samples in an image of the given dimensions.
// An image without dimensions has no samples.
func Count(dims []int) int {
	if len(dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

// Strides returns the strides, in samples, of a contiguous image.
func Strides(dims []int) []int {
	strides := make([]int, len(dims))
	if len(dims) == 0 {
		return strides
	}
	strides[0] = 1
	for i := 1; i < len(dims); i++ {
		strides[i] = strides[i-1] * dims[i-1]
	}
	return strides
}

// Extent returns the index of the last sample addressed by strides over an
// image of dims, plus one. A buffer must hold at least that many samples.
func Extent(dims, strides []int) int {
	last := 0
	for i := range dims {
		last += (dims[i] - 1) * strides[i]
	}
	return last + 1
}

// CheckStrides validates strides against the image dimensions and a buffer of
// bufSamples samples.
func CheckStrides(dims, strides []int, bufSamples int) error {
	if len(strides) != len(dims) {
		return fmt.Errorf("%w: %d strides for %d dimensions", ErrIllegalStrides, len(strides), len(dims))
	}
	for i, s := range strides {
		if s < 0 {
			return fmt.Errorf("%w: negative stride %d in dimension %d", ErrIllegalStrides, s, i)
		}
	}
	if need := Extent(dims, strides); need > bufSamples {
		return fmt.Errorf("%w: strides address %d samples, buffer holds %d", ErrIllegalStrides, need, bufSamples)
	}
	return nil
}

// ForEachLine calls fn once per line of an image of dims, in file order.
// pos holds the coordinates of the first sample of the line; pos[0] is
// always 0. The slice is reused between calls.
func ForEachLine(dims []int, fn func(pos []int) error) error {
	if Count(dims) == 0 {
		return nil
	}
	pos := make([]int, len(dims))
	for {
		if err := fn(pos); err != nil {
			return err
		}
		i := 1
		for ; i < len(dims); i++ {
			pos[i]++
			if pos[i] < dims[i] {
				break
			}
			pos[i] = 0
		}
		if i >= len(dims) {
			return nil
		}
	}
}

// Offset returns the linear sample index of pos under strides.
func Offset(pos, strides []int) int {
	off := 0
	for i := range pos {
		off += pos[i] * strides[i]
	}
	return off
}
