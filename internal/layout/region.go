package layout

import "fmt"

// Region is a sub-sampled hyperrectangle of an image.
type Region struct {
	Offset   []int
	Size     []int
	Sampling []int
}

// NewRegion builds a region of an image of dims. Nil offset defaults to the
// origin, nil size to the remainder of the image past offset, and nil
// sampling to 1 along every dimension.
func NewRegion(dims, offset, size, sampling []int) (Region, error) {
	p := len(dims)
	r := Region{
		Offset:   make([]int, p),
		Size:     make([]int, p),
		Sampling: make([]int, p),
	}
	for _, arg := range []struct {
		name string
		v    []int
	}{{"offset", offset}, {"size", size}, {"sampling", sampling}} {
		if arg.v != nil && len(arg.v) != p {
			return Region{}, fmt.Errorf("%w: %s has %d entries for %d dimensions", ErrIllegalROI, arg.name, len(arg.v), p)
		}
	}

	for i := 0; i < p; i++ {
		if offset != nil {
			r.Offset[i] = offset[i]
		}
		if size != nil {
			r.Size[i] = size[i]
		} else {
			r.Size[i] = dims[i] - r.Offset[i]
		}
		r.Sampling[i] = 1
		if sampling != nil {
			r.Sampling[i] = sampling[i]
		}

		if r.Sampling[i] < 1 || r.Offset[i] < 0 || r.Size[i] < 0 || r.Offset[i]+r.Size[i] > dims[i] {
			return Region{}, fmt.Errorf("%w: dimension %d offset %d size %d sampling %d of %d",
				ErrIllegalROI, i, r.Offset[i], r.Size[i], r.Sampling[i], dims[i])
		}
	}
	return r, nil
}

// Shape returns the number of samples the region yields along each dimension.
func (r Region) Shape() []int {
	shape := make([]int, len(r.Size))
	for i := range r.Size {
		shape[i] = (r.Size[i] + r.Sampling[i] - 1) / r.Sampling[i]
	}
	return shape
}

// Len returns the number of samples in the region.
func (r Region) Len() int {
	return Count(r.Shape())
}

// Lines calls fn for each line of the region in file order. start is the
// linear sample index, within the full image of dims, of the first sample of
// the line at Offset[0]; each line spans Size[0] samples of the image, of
// which every Sampling[0]-th belongs to the region.
func (r Region) Lines(dims []int, fn func(start int) error) error {
	if r.Len() == 0 {
		return nil
	}
	strides := Strides(dims)
	p := len(dims)
	pos := make([]int, p)
	copy(pos, r.Offset)
	for {
		if err := fn(Offset(pos, strides)); err != nil {
			return err
		}
		i := 1
		for ; i < p; i++ {
			pos[i] += r.Sampling[i]
			if pos[i] < r.Offset[i]+r.Size[i] {
				break
			}
			pos[i] = r.Offset[i]
		}
		if i >= p {
			return nil
		}
	}
}
