package ics

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/filter"
	"github.com/robert-malhotra/go-ics/internal/header"
	"github.com/robert-malhotra/go-ics/internal/layout"
)

// checkAttach verifies that data of the current layout may be attached.
func (f *File) checkAttach(op string) error {
	if err := f.checkWD(op); err != nil {
		return err
	}
	if f.attached || f.desc.Source.File != "" {
		return fmt.Errorf("%s: %w", op, ErrDuplicateData)
	}
	if len(f.desc.Dims) == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoLayout)
	}
	return nil
}

// SetData attaches the image data, in host byte order. buf must hold exactly
// DataSize bytes and must not be modified until Close.
func (f *File) SetData(buf []byte) error {
	if err := f.checkAttach("SetData"); err != nil {
		return err
	}
	if size := f.desc.DataSize(); int64(len(buf)) != size {
		return fmt.Errorf("%w: %d bytes for %d bytes of data", ErrSizeConflict, len(buf), size)
	}
	f.attached, f.data = true, buf
	return nil
}

// SetDataWithStrides attaches image data whose samples are laid out in buf
// with the given strides, counted in samples.
func (f *File) SetDataWithStrides(buf []byte, strides []int) error {
	if err := f.checkAttach("SetDataWithStrides"); err != nil {
		return err
	}
	dims := f.desc.Sizes()
	if len(strides) != len(dims) {
		return fmt.Errorf("%w: %d strides for %d dimensions", ErrIllParameter, len(strides), len(dims))
	}
	if err := layout.CheckStrides(dims, strides, len(buf)/max(f.desc.ImelSize(), 1)); err != nil {
		return fmt.Errorf("%w: %w", ErrIllParameter, err)
	}
	f.attached, f.data = true, buf
	f.strides = append([]int(nil), strides...)
	return nil
}

// SetDataReader attaches a reader that supplies the image data, in host
// byte order, at Close. Exactly DataSize bytes are read from it.
func (f *File) SetDataReader(r io.Reader) error {
	if err := f.checkAttach("SetDataReader"); err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("SetDataReader: %w", ErrIllParameter)
	}
	f.attached, f.dataReader = true, r
	return nil
}

// SetSource makes a version 2 header refer to image data stored in another
// file, starting at offset. The data is not copied.
func (f *File) SetSource(path string, offset int64) error {
	if err := f.checkWD("SetSource"); err != nil {
		return err
	}
	if f.desc.Version == 1 {
		return fmt.Errorf("SetSource on a version 1 file: %w", ErrNotValidAction)
	}
	if f.attached || f.desc.Source.File != "" {
		return fmt.Errorf("SetSource: %w", ErrDuplicateData)
	}
	if path == "" || offset < 0 {
		return fmt.Errorf("SetSource(%q, %d): %w", path, offset, ErrIllParameter)
	}
	f.desc.Source = header.Source{File: path, Offset: offset}
	return nil
}

// SetCompression selects the compression used when writing the data. The
// level applies to gzip. Compress cannot be written and is replaced by gzip.
func (f *File) SetCompression(c Compression, level int) error {
	if err := f.checkWD("SetCompression"); err != nil {
		return err
	}
	if _, err := filter.Lookup(c); err != nil {
		return err
	}
	if c == Compress {
		f.log.Debug("writing gzip instead of compress", zap.String("path", f.path))
		c = GZip
	}
	f.desc.Compression = c
	f.desc.Level = filter.ClampLevel(level)
	return nil
}

// flush writes a file created with Create.
func (f *File) flush() (err error) {
	d := f.desc
	if len(d.Dims) == 0 {
		return ErrNoLayout
	}
	external := d.Source.File != ""
	if !f.attached && !external {
		return ErrMissingData
	}
	if !external {
		d.ByteOrder = binary.Machine(d.DataType.ComponentSize())
	}

	var written []string
	defer func() {
		if err != nil {
			for _, p := range written {
				os.Remove(p)
			}
		}
	}()

	hf, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFWriteIcs, err)
	}
	written = append(written, f.path)
	if _, err := header.Write(hf, d, d.Inline()); err != nil {
		hf.Close()
		return fmt.Errorf("%w: %w", ErrFWriteIcs, err)
	}
	if d.Inline() {
		if err := f.writeData(hf); err != nil {
			hf.Close()
			return err
		}
	}
	if err := hf.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrFWriteIcs, err)
	}

	if d.Version == 1 {
		ids := DataPath(f.path)
		df, err := os.Create(ids)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFWriteIds, err)
		}
		written = append(written, ids)
		if err := f.writeData(df); err != nil {
			df.Close()
			return err
		}
		if err := df.Close(); err != nil {
			return fmt.Errorf("%w: %w", ErrFWriteIds, err)
		}
	}

	f.log.Debug("wrote ics file",
		zap.String("path", f.path),
		zap.Int("version", d.Version),
		zap.Int64("bytes", d.DataSize()),
		zap.Stringer("compression", d.Compression))
	return nil
}

// writeData encodes the attached data into w.
func (f *File) writeData(w io.Writer) error {
	d := f.desc
	bw := bufio.NewWriter(w)
	zw, err := filter.NewWriter(d.Compression, bw, d.Level)
	if err != nil {
		return err
	}

	switch {
	case f.dataReader != nil:
		size := d.DataSize()
		n, cerr := io.CopyN(zw, f.dataReader, size)
		if errors.Is(cerr, io.EOF) {
			err = fmt.Errorf("%w: data reader gave %d of %d bytes", ErrEndOfStream, n, size)
		} else if cerr != nil {
			err = fmt.Errorf("%w: %w", ErrFWriteIds, cerr)
		}
	case f.strides != nil:
		err = layout.Gather(f.data, d.Sizes(), f.strides, d.ImelSize(), func(line []byte) error {
			_, err := zw.Write(line)
			return err
		})
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrFWriteIds, err)
		}
	default:
		if _, werr := zw.Write(f.data); werr != nil {
			err = fmt.Errorf("%w: %w", ErrFWriteIds, werr)
		}
	}
	if err != nil {
		zw.Close()
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrFWriteIds, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrFWriteIds, err)
	}
	return nil
}

// rewrite replaces the header of a file opened with OpenUpdate. The new file
// is built next to the old one and renamed over it; inline data is copied
// across unchanged.
func (f *File) rewrite() (err error) {
	d := f.desc
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFTempMoveIcs, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := header.Write(tmp, d, d.Inline()); err != nil {
		return fmt.Errorf("%w: %w", ErrFWriteIcs, err)
	}
	if d.Inline() {
		if err := f.copyInline(tmp); err != nil {
			return err
		}
	}
	if st, err := os.Stat(f.path); err == nil {
		if err := tmp.Chmod(st.Mode().Perm()); err != nil {
			return fmt.Errorf("%w: %w", ErrFTempMoveIcs, err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrFWriteIcs, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %w", ErrFTempMoveIcs, err)
	}

	f.log.Debug("rewrote ics header", zap.String("path", f.path), zap.Int("history", d.History.Len()))
	return nil
}

// copyInline copies the data that follows the original header to w.
func (f *File) copyInline(w io.Writer) error {
	src, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFCopyIds, err)
	}
	defer src.Close()
	if _, err := src.Seek(f.dataOffset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrFCopyIds, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("%w: %w", ErrFCopyIds, err)
	}
	return nil
}
