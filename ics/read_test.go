package ics

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// bruteROI extracts a region sample by sample.
func bruteROI(data []byte, imel int, dims, offset, size, sampling []int) []byte {
	var out []byte
	pos := make([]int, len(dims))
	var walk func(d int)
	walk = func(d int) {
		if d < 0 {
			idx, stride := 0, 1
			for i := range dims {
				idx += pos[i] * stride
				stride *= dims[i]
			}
			out = append(out, data[idx*imel:(idx+1)*imel]...)
			return
		}
		for p := offset[d]; p < offset[d]+size[d]; p += sampling[d] {
			pos[d] = p
			walk(d - 1)
		}
	}
	walk(len(dims) - 1)
	return out
}

func TestReadROI(t *testing.T) {
	dims := []int{9, 6, 4}
	data := ramp(9 * 6 * 4)

	rois := []struct {
		name                   string
		offset, size, sampling []int
	}{
		{"whole", nil, nil, nil},
		{"offset only", []int{2, 1, 1}, nil, nil},
		{"box", []int{1, 2, 0}, []int{5, 3, 2}, nil},
		{"sampled", []int{0, 0, 0}, []int{9, 6, 4}, []int{2, 3, 2}},
		{"sampled box", []int{1, 1, 1}, []int{7, 4, 3}, []int{3, 2, 1}},
		{"single sample", []int{8, 5, 3}, []int{1, 1, 1}, nil},
		{"empty", []int{0, 0, 0}, []int{0, 6, 4}, nil},
	}

	for _, c := range []Compression{Uncompressed, GZip} {
		path := writeImage(t, t.TempDir(), imageSpec{2, c, Uint16, dims}, data)
		f := openImage(t, path)

		for _, roi := range rois {
			t.Run(c.String()+"/"+roi.name, func(t *testing.T) {
				offset, size, sampling := roi.offset, roi.size, roi.sampling
				if offset == nil {
					offset = []int{0, 0, 0}
				}
				if size == nil {
					size = []int{dims[0] - offset[0], dims[1] - offset[1], dims[2] - offset[2]}
				}
				if sampling == nil {
					sampling = []int{1, 1, 1}
				}
				want := bruteROI(data, 2, dims, offset, size, sampling)

				got, err := f.ReadROI(roi.offset, roi.size, roi.sampling)
				if err != nil {
					t.Fatalf("ReadROI failed: %v", err)
				}
				if !bytes.Equal(got, want) {
					t.Errorf("ReadROI: got %d bytes, want %d, contents differ", len(got), len(want))
				}

				buf := make([]byte, len(want)+6)
				n, err := f.ReadROIInto(buf, roi.offset, roi.size, roi.sampling)
				if err != nil {
					t.Fatalf("ReadROIInto failed: %v", err)
				}
				if n != len(want) || !bytes.Equal(buf[:n], want) {
					t.Errorf("ReadROIInto: n = %d, want %d", n, len(want))
				}
			})
		}
	}
}

func TestReadROIErrors(t *testing.T) {
	path := writeImage(t, t.TempDir(), imageSpec{2, Uncompressed, Uint16, []int{4, 4}}, ramp(16))
	f := openImage(t, path)

	tests := []struct {
		name                   string
		offset, size, sampling []int
	}{
		{"zero sampling", nil, nil, []int{0, 1}},
		{"past end", []int{2, 0}, []int{3, 4}, nil},
		{"negative offset", []int{-1, 0}, nil, nil},
		{"wrong rank", []int{0}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ReadROI(tt.offset, tt.size, tt.sampling)
			wantErr(t, err, ErrIllegalROI)
		})
	}

	_, err := f.ReadROIInto(make([]byte, 7), []int{0, 0}, []int{2, 2}, nil)
	wantErr(t, err, ErrBufferTooSmall)
}

func TestReadBlocks(t *testing.T) {
	data := ramp(100)
	for _, c := range []Compression{Uncompressed, GZip} {
		t.Run(c.String(), func(t *testing.T) {
			path := writeImage(t, t.TempDir(), imageSpec{2, c, Uint16, []int{10, 10}}, data)
			f := openImage(t, path)

			block := make([]byte, 40)
			steps := []struct {
				name string
				move func() error
				want []byte
			}{
				{"first", nil, data[:40]},
				{"second", nil, data[40:80]},
				{"after skip", func() error { return f.SkipBlock(20) }, data[100:140]},
				{"rewound", func() error { return f.SetBlockPosition(10) }, data[10:50]},
			}
			for _, s := range steps {
				if s.move != nil {
					if err := s.move(); err != nil {
						t.Fatalf("%s: %v", s.name, err)
					}
				}
				if err := f.ReadBlock(block); err != nil {
					t.Fatalf("%s: ReadBlock failed: %v", s.name, err)
				}
				if !bytes.Equal(block, s.want) {
					t.Errorf("%s: block mismatch", s.name)
				}
			}

			if err := f.SetBlockPosition(180); err != nil {
				t.Fatalf("SetBlockPosition failed: %v", err)
			}
			wantErr(t, f.ReadBlock(block), ErrEndOfStream)

			wantErr(t, f.SkipBlock(-1), ErrIllParameter)
			wantErr(t, f.SetBlockPosition(-1), ErrIllParameter)
		})
	}
}

func TestReadDataWithStrides(t *testing.T) {
	dims := []int{4, 3}
	data := ramp(12)
	path := writeImage(t, t.TempDir(), imageSpec{2, GZip, Uint16, dims}, data)
	f := openImage(t, path)

	// Transposed: x varies slowest in memory.
	dst := make([]byte, 2*12)
	if err := f.ReadDataWithStrides(dst, []int{3, 1}); err != nil {
		t.Fatalf("ReadDataWithStrides failed: %v", err)
	}
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			if got := binary.NativeEndian.Uint16(dst[2*(x*3+y):]); got != uint16(y*4+x) {
				t.Errorf("x=%d y=%d: got %d", x, y, got)
			}
		}
	}

	// Padded rows leave the gaps untouched.
	padded := bytes.Repeat([]byte{0xee}, 2*(3*6))
	if err := f.ReadDataWithStrides(padded, []int{1, 6}); err != nil {
		t.Fatalf("ReadDataWithStrides failed: %v", err)
	}
	if !bytes.Equal(padded[:8], data[:8]) || !bytes.Equal(padded[12:20], data[8:16]) {
		t.Error("padded rows mismatch")
	}
	if !bytes.Equal(padded[8:10], []byte{0xee, 0xee}) {
		t.Errorf("gap overwritten: % x", padded[8:10])
	}

	contiguous := make([]byte, len(data))
	if err := f.ReadDataWithStrides(contiguous, nil); err != nil {
		t.Fatalf("ReadDataWithStrides(nil) failed: %v", err)
	}
	if !bytes.Equal(contiguous, data) {
		t.Error("contiguous read mismatch")
	}

	wantErr(t, f.ReadDataWithStrides(dst, []int{1}), ErrIllParameter)
	wantErr(t, f.ReadDataWithStrides(dst[:10], []int{3, 1}), ErrIllParameter)
}

func TestReadData(t *testing.T) {
	data := ramp(20)
	path := writeImage(t, t.TempDir(), imageSpec{2, Uncompressed, Uint16, []int{20}}, data)
	f := openImage(t, path)

	wantErr(t, f.ReadData(make([]byte, 39)), ErrBufferTooSmall)

	big := make([]byte, 50)
	if err := f.ReadData(big); err != nil {
		t.Fatalf("ReadData failed: %v", err)
	}
	if !bytes.Equal(big[:40], data) {
		t.Error("data mismatch")
	}
	if !bytes.Equal(big[40:], make([]byte, 10)) {
		t.Error("bytes past the data were written")
	}
}

func TestDataReader(t *testing.T) {
	data := ramp(300)
	for _, c := range []Compression{Uncompressed, GZip} {
		t.Run(c.String(), func(t *testing.T) {
			path := writeImage(t, t.TempDir(), imageSpec{2, c, Uint16, []int{300}}, data)
			f := openImage(t, path)

			r, err := f.DataReader()
			if err != nil {
				t.Fatalf("DataReader failed: %v", err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if err := r.Close(); err != nil {
				t.Errorf("Close failed: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Error("data mismatch")
			}
		})
	}
}

func TestTruncatedData(t *testing.T) {
	path := writeImage(t, t.TempDir(), imageSpec{2, Uncompressed, Uint16, []int{50}}, ramp(50))
	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Truncate(path, st.Size()-10); err != nil {
		t.Fatal(err)
	}

	f := openImage(t, path)
	_, err = f.ReadAll()
	wantErr(t, err, ErrEndOfStream)

	r, err := f.DataReader()
	if err != nil {
		t.Fatalf("DataReader failed: %v", err)
	}
	defer r.Close()
	_, err = io.ReadAll(r)
	wantErr(t, err, ErrEndOfStream)
}

func TestCorruptGzipData(t *testing.T) {
	path := writeImage(t, t.TempDir(), imageSpec{1, GZip, Uint16, []int{64}}, ramp(64))
	ids := DataPath(path)
	raw, err := os.ReadFile(ids)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a bit of the CRC in the trailer.
	raw[len(raw)-8] ^= 0x01
	if err := os.WriteFile(ids, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	f := openImage(t, path)
	_, err = f.ReadAll()
	wantErr(t, err, ErrCorruptedStream)
}

func TestMissingGzipTrailer(t *testing.T) {
	data := ramp(64)
	for _, version := range []int{1, 2} {
		path := writeImage(t, t.TempDir(), imageSpec{version, GZip, Uint16, []int{64}}, data)
		stored := path
		if version == 1 {
			stored = DataPath(path)
		}
		st, err := os.Stat(stored)
		if err != nil {
			t.Fatal(err)
		}
		// Drop the CRC and length; the deflate data itself is complete.
		if err := os.Truncate(stored, st.Size()-8); err != nil {
			t.Fatal(err)
		}

		f := openImage(t, path)
		_, err = f.ReadAll()
		wantErr(t, err, ErrCorruptedStream)

		r, err := f.DataReader()
		if err != nil {
			t.Fatalf("version %d: DataReader failed: %v", version, err)
		}
		_, err = io.ReadAll(r)
		r.Close()
		wantErr(t, err, ErrCorruptedStream)
	}
}

func TestForeignByteOrder(t *testing.T) {
	hdr := "\t\n" +
		"ics_version\t2.0\n" +
		"filename\tbig\n" +
		"layout\tparameters\t2\n" +
		"layout\torder\tbits\tx\n" +
		"layout\tsizes\t16\t3\n" +
		"representation\tformat\tinteger\n" +
		"representation\tsign\tunsigned\n" +
		"representation\tcompression\tuncompressed\n" +
		"representation\tbyte_order\t2\t1\n" +
		"end\n"
	raw := append([]byte(hdr), 0x01, 0x02, 0x03, 0x04, 0x05, 0x06)
	path := filepath.Join(t.TempDir(), "big.ics")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	f := openImage(t, path)
	got, err := f.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if want := []uint16{0x0102, 0x0304, 0x0506}; !reflect.DeepEqual(got, want) {
		t.Errorf("ReadUint16 = %#x, want %#x", got, want)
	}

	block := make([]byte, 2)
	if err := f.SkipBlock(2); err != nil {
		t.Fatalf("SkipBlock failed: %v", err)
	}
	if err := f.ReadBlock(block); err != nil {
		t.Fatalf("ReadBlock failed: %v", err)
	}
	if v := binary.NativeEndian.Uint16(block); v != 0x0304 {
		t.Errorf("block = %#x, want 0x0304", v)
	}

	r, err := f.DataReader()
	if err != nil {
		t.Fatalf("DataReader failed: %v", err)
	}
	defer r.Close()
	all, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if v := binary.NativeEndian.Uint16(all[4:]); v != 0x0506 {
		t.Errorf("last sample = %#x, want 0x0506", v)
	}

	// A sample cut in half is an error, not a short read.
	short := filepath.Join(t.TempDir(), "short.ics")
	if err := os.WriteFile(short, raw[:len(raw)-1], 0o644); err != nil {
		t.Fatal(err)
	}
	r2, err := openImage(t, short).DataReader()
	if err != nil {
		t.Fatalf("DataReader failed: %v", err)
	}
	defer r2.Close()
	_, err = io.ReadAll(r2)
	wantErr(t, err, ErrEndOfStream)
}
