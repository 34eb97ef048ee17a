package ics

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSetDataErrors(t *testing.T) {
	f, err := Create(filepath.Join(t.TempDir(), "e.ics"))
	mustDo(t, "Create", err)

	wantErr(t, f.SetData(make([]byte, 4)), ErrNoLayout)
	wantErr(t, f.SetPixels([]uint8{1}), ErrNoLayout)
	mustDo(t, "SetLayout", f.SetLayout(Uint16, []int{2, 2}))
	wantErr(t, f.SetData(make([]byte, 7)), ErrSizeConflict)
	mustDo(t, "SetData", f.SetData(make([]byte, 8)))

	// Once data is attached nothing else may claim the image.
	wantErr(t, f.SetData(make([]byte, 8)), ErrDuplicateData)
	wantErr(t, f.SetDataReader(bytes.NewReader(nil)), ErrDuplicateData)
	wantErr(t, f.SetSource("other.raw", 0), ErrDuplicateData)
	wantErr(t, f.SetLayout(Uint8, []int{8}), ErrDuplicateData)
	mustDo(t, "Close", f.Close())
}

func TestSetLayoutErrors(t *testing.T) {
	f, err := Create(filepath.Join(t.TempDir(), "e.ics"))
	mustDo(t, "Create", err)
	wantErr(t, f.SetLayout(Uint8, make([]int, MaxDims+1)), ErrTooManyDims)
	wantErr(t, f.SetLayout(Unknown, []int{2}), ErrUnknownDataType)
	wantErr(t, f.SetLayout(Uint8, []int{2, -1}), ErrIllParameter)
}

func TestSetDataWithStrides(t *testing.T) {
	// A 3x2 image stored transposed, with one padding sample per column.
	src := make([]byte, 2*8)
	for x := 0; x < 3; x++ {
		for y := 0; y < 2; y++ {
			binary.NativeEndian.PutUint16(src[2*(x*3+y):], uint16(10*y+x))
		}
	}

	path := filepath.Join(t.TempDir(), "strided.ics")
	f, err := Create(path)
	mustDo(t, "Create", err)
	mustDo(t, "SetLayout", f.SetLayout(Uint16, []int{3, 2}))
	wantErr(t, f.SetDataWithStrides(src, []int{3}), ErrIllParameter)
	wantErr(t, f.SetDataWithStrides(src[:4], []int{3, 1}), ErrIllParameter)
	mustDo(t, "SetDataWithStrides", f.SetDataWithStrides(src, []int{3, 1}))
	mustDo(t, "Close", f.Close())

	got, err := openImage(t, path).ReadUint16()
	mustDo(t, "ReadUint16", err)
	if want := []uint16{0, 1, 2, 10, 11, 12}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSetDataReader(t *testing.T) {
	data := ramp(500)
	for _, version := range []int{1, 2} {
		path := filepath.Join(t.TempDir(), "streamed.ics")
		f, err := Create(path, WithVersion(version))
		mustDo(t, "Create", err)
		mustDo(t, "SetLayout", f.SetLayout(Uint16, []int{500}))
		mustDo(t, "SetCompression", f.SetCompression(GZip, 9))
		wantErr(t, f.SetDataReader(nil), ErrIllParameter)
		// Bytes past DataSize are not consumed.
		mustDo(t, "SetDataReader", f.SetDataReader(bytes.NewReader(append(data, 1, 2, 3))))
		mustDo(t, "Close", f.Close())

		got, err := openImage(t, path).ReadAll()
		mustDo(t, "ReadAll", err)
		if !bytes.Equal(got, data) {
			t.Errorf("version %d: data mismatch", version)
		}
	}

	t.Run("short", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "short.ics")
		f, err := Create(path)
		mustDo(t, "Create", err)
		mustDo(t, "SetLayout", f.SetLayout(Uint16, []int{500}))
		mustDo(t, "SetDataReader", f.SetDataReader(bytes.NewReader(data[:100])))
		wantErr(t, f.Close(), ErrEndOfStream)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("partial file left behind")
		}
	})
}

func TestSetSource(t *testing.T) {
	dir := t.TempDir()
	data := ramp(30)
	raw := append([]byte("PREAMBLE"), data...)
	mustDo(t, "WriteFile", os.WriteFile(filepath.Join(dir, "pixels.raw"), raw, 0o644))

	path := filepath.Join(dir, "ref.ics")
	f, err := Create(path)
	mustDo(t, "Create", err)
	mustDo(t, "SetLayout", f.SetLayout(Uint16, []int{5, 6}))
	wantErr(t, f.SetSource("", 0), ErrIllParameter)
	wantErr(t, f.SetSource("pixels.raw", -1), ErrIllParameter)
	mustDo(t, "SetSource", f.SetSource("pixels.raw", 8))
	wantErr(t, f.SetData(data), ErrDuplicateData)
	mustDo(t, "Close", f.Close())

	hdr, err := os.ReadFile(path)
	mustDo(t, "ReadFile", err)
	for _, line := range []string{"source\tfile\tpixels.raw\n", "source\toffset\t8\n"} {
		if !strings.Contains(string(hdr), line) {
			t.Errorf("header lacks %q", line)
		}
	}
	if strings.Contains(string(hdr), "\nend\n") {
		t.Error("header with an external source should not end in an end line")
	}

	got, err := openImage(t, path).ReadAll()
	mustDo(t, "ReadAll", err)
	if !bytes.Equal(got, data) {
		t.Error("data mismatch")
	}

	v1, err := Create(filepath.Join(dir, "v1.ics"), WithVersion(1))
	mustDo(t, "Create", err)
	wantErr(t, v1.SetSource("pixels.raw", 0), ErrNotValidAction)
}

func TestSetCompression(t *testing.T) {
	f, err := Create(filepath.Join(t.TempDir(), "c.ics"))
	mustDo(t, "Create", err)

	if c, level := f.Compression(); c != Uncompressed || level != 6 {
		t.Errorf("defaults = %v/%d", c, level)
	}

	// Compress cannot be written and becomes gzip.
	mustDo(t, "SetCompression", f.SetCompression(Compress, 3))
	if c, level := f.Compression(); c != GZip || level != 3 {
		t.Errorf("after Compress = %v/%d", c, level)
	}

	mustDo(t, "SetCompression", f.SetCompression(GZip, 42))
	if _, level := f.Compression(); level != 9 {
		t.Errorf("level = %d, want 9", level)
	}

	wantErr(t, f.SetCompression(Compression(99), 6), ErrUnknownCompression)
}

func TestInlineHeader(t *testing.T) {
	path := writeImage(t, t.TempDir(), imageSpec{2, Uncompressed, Uint8, []int{3}}, []byte{7, 8, 9})
	raw, err := os.ReadFile(path)
	mustDo(t, "ReadFile", err)
	if !strings.HasPrefix(string(raw), "\t\nics_version\t2.0\nfilename\timage\n") {
		t.Errorf("header starts with %q", raw[:min(len(raw), 40)])
	}
	if !strings.HasSuffix(string(raw), "\nend\n\x07\x08\x09") {
		t.Errorf("file ends with %q", raw[max(0, len(raw)-10):])
	}
}

func TestPixels(t *testing.T) {
	dir := t.TempDir()

	t.Run("float32", func(t *testing.T) {
		path := filepath.Join(dir, "f32.ics")
		f, err := Create(path)
		mustDo(t, "Create", err)
		mustDo(t, "SetLayout", f.SetLayout(Float32, []int{2, 2}))
		mustDo(t, "SetPixels", f.SetPixels([]float32{1.5, -2, 3.25, 0}))
		mustDo(t, "Close", f.Close())

		r := openImage(t, path)
		got, err := r.ReadFloat32()
		mustDo(t, "ReadFloat32", err)
		if !reflect.DeepEqual(got, []float32{1.5, -2, 3.25, 0}) {
			t.Errorf("ReadFloat32 = %v", got)
		}
		wide, err := r.ReadFloat64()
		mustDo(t, "ReadFloat64", err)
		if !reflect.DeepEqual(wide, []float64{1.5, -2, 3.25, 0}) {
			t.Errorf("ReadFloat64 = %v", wide)
		}
	})

	t.Run("converted", func(t *testing.T) {
		path := filepath.Join(dir, "u8.ics")
		f, err := Create(path, WithVersion(1))
		mustDo(t, "Create", err)
		mustDo(t, "SetLayout", f.SetLayout(Uint8, []int{4}))
		wantErr(t, f.SetPixels([]int{1, 2, 3}), ErrSizeConflict)
		mustDo(t, "SetPixels", f.SetPixels([]int{1, 2, 3, 250}))
		mustDo(t, "Close", f.Close())

		r := openImage(t, path)
		got, err := r.ReadInt32()
		mustDo(t, "ReadInt32", err)
		if !reflect.DeepEqual(got, []int32{1, 2, 3, 250}) {
			t.Errorf("ReadInt32 = %v", got)
		}

		var into []uint16
		mustDo(t, "ReadInto", r.ReadInto(&into))
		if !reflect.DeepEqual(into, []uint16{1, 2, 3, 250}) {
			t.Errorf("ReadInto = %v", into)
		}
	})

	t.Run("complex", func(t *testing.T) {
		path := filepath.Join(dir, "c64.ics")
		f, err := Create(path)
		mustDo(t, "Create", err)
		mustDo(t, "SetLayout", f.SetLayout(Complex64, []int{2}))
		mustDo(t, "SetCompression", f.SetCompression(GZip, 1))
		mustDo(t, "SetPixels", f.SetPixels([]complex64{complex(1, -1), complex(0.5, 2)}))
		mustDo(t, "Close", f.Close())

		r := openImage(t, path)
		got, err := r.ReadComplex64()
		mustDo(t, "ReadComplex64", err)
		if !reflect.DeepEqual(got, []complex64{complex(1, -1), complex(0.5, 2)}) {
			t.Errorf("ReadComplex64 = %v", got)
		}
		wide, err := r.ReadComplex128()
		mustDo(t, "ReadComplex128", err)
		if !reflect.DeepEqual(wide, []complex128{complex(1, -1), complex(0.5, 2)}) {
			t.Errorf("ReadComplex128 = %v", wide)
		}
	})
}

func TestUpdate(t *testing.T) {
	for _, spec := range []imageSpec{
		{1, Uncompressed, Uint16, []int{6, 4}},
		{2, Uncompressed, Uint16, []int{6, 4}},
		{2, GZip, Uint16, []int{6, 4}},
	} {
		t.Run(spec.compression.String(), func(t *testing.T) {
			data := ramp(24)
			dir := t.TempDir()
			path := writeImage(t, dir, spec, data)
			mustDo(t, "Chmod", os.Chmod(path, 0o640))

			u, err := OpenUpdate(path)
			mustDo(t, "OpenUpdate", err)
			mustDo(t, "AddHistory", u.AddHistory("operator", "bob"))
			mustDo(t, "AddHistory", u.AddHistory("", "keyless note"))
			mustDo(t, "SetPosition", u.SetPosition(1, -3, 0.25, "micrometer"))
			mustDo(t, "SetImelUnits", u.SetImelUnits(100, 2, "photons"))
			wantErr(t, u.SetData(data), ErrNotValidAction)
			mustDo(t, "Close", u.Close())

			st, err := os.Stat(path)
			mustDo(t, "Stat", err)
			if st.Mode().Perm() != 0o640 {
				t.Errorf("permissions = %v, want 0640", st.Mode().Perm())
			}

			entries, err := os.ReadDir(dir)
			mustDo(t, "ReadDir", err)
			for _, e := range entries {
				if strings.HasSuffix(e.Name(), ".tmp") {
					t.Errorf("leftover %s", e.Name())
				}
			}

			r := openImage(t, path)
			if r.NumHistory() != 2 {
				t.Errorf("NumHistory = %d, want 2", r.NumHistory())
			}
			if got := r.HistoryFor("operator"); !reflect.DeepEqual(got, []string{"bob"}) {
				t.Errorf("HistoryFor = %v", got)
			}
			if got := r.History()[1]; got != (HistoryRecord{Value: "keyless note"}) {
				t.Errorf("keyless record = %+v", got)
			}
			origin, scale, units, err := r.Position(1)
			mustDo(t, "Position", err)
			if origin != -3 || scale != 0.25 || units != "micrometer" {
				t.Errorf("Position = %v %v %q", origin, scale, units)
			}
			o, s, iu, err := r.ImelUnits()
			mustDo(t, "ImelUnits", err)
			if o != 100 || s != 2 || iu != "photons" {
				t.Errorf("ImelUnits = %v %v %q", o, s, iu)
			}

			got, err := r.ReadAll()
			mustDo(t, "ReadAll", err)
			if !bytes.Equal(got, data) {
				t.Error("data changed by update")
			}
		})
	}
}

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.ics")
	f, err := Create(path)
	mustDo(t, "Create", err)
	mustDo(t, "SetLayout", f.SetLayout(Uint8, []int{1}))
	mustDo(t, "SetData", f.SetData([]byte{1}))

	mustDo(t, "AddHistory", f.AddHistory("step", "acquire"))
	mustDo(t, "AddHistory", f.AddHistory("step", "deconvolve"))
	mustDo(t, "AddHistory", f.AddHistory("software", "go-ics test"))
	mustDo(t, "AddHistory", f.AddHistory("params", "sigma\t2.5"))
	wantErr(t, f.AddHistory("k", ""), ErrEmptyField)
	wantErr(t, f.AddHistory("bad\tkey", "v"), ErrIllParameter)
	wantErr(t, f.AddHistory("k", strings.Repeat("x", MaxLineLength)), ErrLineOverflow)

	// Values a header read would not give back are refused.
	for _, v := range []string{"a\t\tb", "\tlead", "trail\t", "cr\r", "mid\rdle"} {
		wantErr(t, f.AddHistory("k", v), ErrIllParameter)
	}
	if f.NumHistory() != 4 {
		t.Errorf("NumHistory = %d, want 4", f.NumHistory())
	}
	mustDo(t, "Close", f.Close())

	r := openImage(t, path)
	if got := r.HistoryFor("step"); !reflect.DeepEqual(got, []string{"acquire", "deconvolve"}) {
		t.Errorf("HistoryFor(step) = %v", got)
	}
	want := []HistoryRecord{
		{Key: "step", Value: "acquire"},
		{Key: "step", Value: "deconvolve"},
		{Key: "software", Value: "go-ics test"},
		{Key: "params", Value: "sigma\t2.5"},
	}
	if got := r.History(); !reflect.DeepEqual(got, want) {
		t.Errorf("History = %q", got)
	}
	if got := r.HistoryFor("missing"); len(got) != 0 {
		t.Errorf("HistoryFor(missing) = %v", got)
	}
}
