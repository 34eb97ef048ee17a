package layout

import (
	"errors"
	"reflect"
	"testing"
)

func TestStrides(t *testing.T) {
	got := Strides([]int{4, 3, 2})
	want := []int{1, 4, 12}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if Count([]int{4, 3, 2}) != 24 {
		t.Errorf("Count = %d", Count([]int{4, 3, 2}))
	}
	if Count(nil) != 0 {
		t.Error("Count(nil) should be 0")
	}
}

func TestForEachLine(t *testing.T) {
	var got [][]int
	err := ForEachLine([]int{5, 2, 3}, func(pos []int) error {
		got = append(got, append([]int(nil), pos...))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachLine failed: %v", err)
	}
	want := [][]int{
		{0, 0, 0}, {0, 1, 0},
		{0, 0, 1}, {0, 1, 1},
		{0, 0, 2}, {0, 1, 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestForEachLineOneDimension(t *testing.T) {
	calls := 0
	if err := ForEachLine([]int{7}, func(pos []int) error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("ForEachLine failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 line, got %d", calls)
	}
}

func TestNewRegionDefaults(t *testing.T) {
	r, err := NewRegion([]int{10, 8}, []int{2, 3}, nil, nil)
	if err != nil {
		t.Fatalf("NewRegion failed: %v", err)
	}
	if !reflect.DeepEqual(r.Size, []int{8, 5}) {
		t.Errorf("size = %v", r.Size)
	}
	if !reflect.DeepEqual(r.Sampling, []int{1, 1}) {
		t.Errorf("sampling = %v", r.Sampling)
	}
	if r.Len() != 40 {
		t.Errorf("Len = %d", r.Len())
	}
}

func TestNewRegionErrors(t *testing.T) {
	dims := []int{10, 8}
	tests := []struct {
		name                   string
		offset, size, sampling []int
	}{
		{"outside", []int{5, 0}, []int{6, 8}, nil},
		{"zero sampling", nil, nil, []int{0, 1}},
		{"wrong rank", []int{0}, nil, nil},
		{"negative offset", []int{-1, 0}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegion(dims, tt.offset, tt.size, tt.sampling)
			if !errors.Is(err, ErrIllegalROI) {
				t.Errorf("expected ErrIllegalROI, got %v", err)
			}
		})
	}
}

func TestRegionShapeWithSampling(t *testing.T) {
	r, err := NewRegion([]int{10, 9}, nil, nil, []int{3, 2})
	if err != nil {
		t.Fatalf("NewRegion failed: %v", err)
	}
	if !reflect.DeepEqual(r.Shape(), []int{4, 5}) {
		t.Errorf("shape = %v", r.Shape())
	}
}

func TestRegionLines(t *testing.T) {
	dims := []int{4, 4, 2}
	r, err := NewRegion(dims, []int{1, 1, 0}, []int{2, 3, 2}, []int{1, 2, 1})
	if err != nil {
		t.Fatalf("NewRegion failed: %v", err)
	}
	var starts []int
	if err := r.Lines(dims, func(start int) error {
		starts = append(starts, start)
		return nil
	}); err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	// y in {1, 3}, z in {0, 1}; start = 1 + 4*y + 16*z
	want := []int{5, 13, 21, 29}
	if !reflect.DeepEqual(starts, want) {
		t.Errorf("got %v, want %v", starts, want)
	}
}

func TestGatherScatterTranspose(t *testing.T) {
	// A 3x2 image stored transposed in memory: element (x, y) at y + 2*x.
	dims := []int{3, 2}
	strides := []int{2, 1}
	mem := []byte{
		0, 3, // x=0
		1, 4, // x=1
		2, 5, // x=2
	}

	var file []byte
	err := Gather(mem, dims, strides, 1, func(line []byte) error {
		file = append(file, line...)
		return nil
	})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if !reflect.DeepEqual(file, []byte{0, 1, 2, 3, 4, 5}) {
		t.Errorf("gathered %v", file)
	}

	back := make([]byte, len(mem))
	pos := 0
	err = Scatter(back, dims, strides, 1, func(line []byte) error {
		pos += copy(line, file[pos:])
		return nil
	})
	if err != nil {
		t.Fatalf("Scatter failed: %v", err)
	}
	if !reflect.DeepEqual(back, mem) {
		t.Errorf("scattered %v, want %v", back, mem)
	}
}

func TestGatherContiguousMultiByte(t *testing.T) {
	dims := []int{2, 2}
	src := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	var lines int
	err := Gather(src, dims, Strides(dims), 2, func(line []byte) error {
		lines++
		if len(line) != 4 {
			t.Errorf("line length %d", len(line))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if lines != 2 {
		t.Errorf("expected 2 lines, got %d", lines)
	}
}

func TestCheckStrides(t *testing.T) {
	if err := CheckStrides([]int{3, 2}, []int{1, 3}, 5); !errors.Is(err, ErrIllegalStrides) {
		t.Errorf("expected ErrIllegalStrides for short buffer, got %v", err)
	}
	if err := CheckStrides([]int{3, 2}, []int{1}, 6); !errors.Is(err, ErrIllegalStrides) {
		t.Errorf("expected ErrIllegalStrides for rank mismatch, got %v", err)
	}
	if err := CheckStrides([]int{3, 2}, []int{1, 3}, 6); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
