package layout

// Gather walks an image held in src under the given strides (in samples) and
// passes it to emit one line at a time, in file order. When dimension 0 is
// contiguous in src the lines are sub-slices of src; otherwise they are
// assembled in a buffer that is reused between calls.
func Gather(src []byte, dims, strides []int, sampleSize int, emit func(line []byte) error) error {
	if err := CheckStrides(dims, strides, len(src)/max(sampleSize, 1)); err != nil {
		return err
	}
	if Count(dims) == 0 {
		return nil
	}

	lineBytes := dims[0] * sampleSize
	contiguous := strides[0] == 1
	var buf []byte
	if !contiguous {
		buf = make([]byte, lineBytes)
	}

	return ForEachLine(dims, func(pos []int) error {
		start := Offset(pos, strides) * sampleSize
		if contiguous {
			return emit(src[start : start+lineBytes])
		}
		for j := 0; j < dims[0]; j++ {
			from := start + j*strides[0]*sampleSize
			copy(buf[j*sampleSize:(j+1)*sampleSize], src[from:from+sampleSize])
		}
		return emit(buf)
	})
}

// Scatter is the inverse of Gather: fill is called once per line, in file
// order, and the line it fills is stored into dst under the given strides.
func Scatter(dst []byte, dims, strides []int, sampleSize int, fill func(line []byte) error) error {
	if err := CheckStrides(dims, strides, len(dst)/max(sampleSize, 1)); err != nil {
		return err
	}
	if Count(dims) == 0 {
		return nil
	}

	lineBytes := dims[0] * sampleSize
	contiguous := strides[0] == 1
	var buf []byte
	if !contiguous {
		buf = make([]byte, lineBytes)
	}

	return ForEachLine(dims, func(pos []int) error {
		start := Offset(pos, strides) * sampleSize
		if contiguous {
			return fill(dst[start : start+lineBytes])
		}
		if err := fill(buf); err != nil {
			return err
		}
		for j := 0; j < dims[0]; j++ {
			to := start + j*strides[0]*sampleSize
			copy(dst[to:to+sampleSize], buf[j*sampleSize:(j+1)*sampleSize])
		}
		return nil
	})
}
