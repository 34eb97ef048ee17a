package ics

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/filter"
	"github.com/robert-malhotra/go-ics/internal/layout"
)

// ReadBlock reads the next len(dst) bytes of sample data into dst, in host
// byte order. Successive calls continue where the previous one stopped.
// Compress-compressed data can only be read in a single block.
func (f *File) ReadBlock(dst []byte) error {
	if err := f.checkRD("ReadBlock"); err != nil {
		return err
	}
	s, err := f.blockStream()
	if err != nil {
		return err
	}
	if s.compression == filter.Compress {
		if s.blockRead {
			return ErrBlockNotAllowed
		}
		s.blockRead = true
	}
	if err := s.read(dst); err != nil {
		return err
	}
	return f.reorder(dst)
}

// SkipBlock skips n bytes of sample data in the block stream.
func (f *File) SkipBlock(n int64) error {
	if err := f.checkRD("SkipBlock"); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("SkipBlock(%d): %w", n, ErrIllParameter)
	}
	s, err := f.blockStream()
	if err != nil {
		return err
	}
	if s.compression == filter.Compress {
		return ErrBlockNotAllowed
	}
	return s.skip(n)
}

// SetBlockPosition moves the block stream to byte offset off of the sample
// data. Moving backwards in gzip data restarts decompression.
func (f *File) SetBlockPosition(off int64) error {
	if err := f.checkRD("SetBlockPosition"); err != nil {
		return err
	}
	if off < 0 {
		return fmt.Errorf("SetBlockPosition(%d): %w", off, ErrIllParameter)
	}
	s, err := f.blockStream()
	if err != nil {
		return err
	}

	switch s.compression {
	case filter.Compress:
		return ErrBlockNotAllowed
	case filter.Uncompressed:
		if _, err := s.file.Seek(s.start+off, io.SeekStart); err != nil {
			return fmt.Errorf("%w: %w", ErrFReadIds, err)
		}
		s.pos = off
		return nil
	}

	if off < s.pos {
		f.log.Debug("restarting compressed stream", zap.Int64("from", s.pos), zap.Int64("to", off))
		if err := f.closeStream(); err != nil {
			return err
		}
		if s, err = f.blockStream(); err != nil {
			return err
		}
	}
	return s.skip(off - s.pos)
}

func (f *File) blockStream() (*stream, error) {
	if f.stream == nil {
		s, err := f.openStream()
		if err != nil {
			return nil, err
		}
		f.stream = s
	}
	return f.stream, nil
}

// ReadData reads the whole image into dst, which must hold at least
// DataSize bytes. It does not disturb the block stream.
func (f *File) ReadData(dst []byte) error {
	if err := f.checkRD("ReadData"); err != nil {
		return err
	}
	size := f.desc.DataSize()
	if int64(len(dst)) < size {
		return fmt.Errorf("%w: %d bytes for %d bytes of data", ErrBufferTooSmall, len(dst), size)
	}
	dst = dst[:size]

	s, err := f.openStream()
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.read(dst); err != nil {
		return err
	}
	if err := s.verify(); err != nil {
		return err
	}
	return f.reorder(dst)
}

// ReadAll returns the whole image in host byte order.
func (f *File) ReadAll() ([]byte, error) {
	if err := f.checkRD("ReadAll"); err != nil {
		return nil, err
	}
	buf := make([]byte, f.desc.DataSize())
	if err := f.ReadData(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadROI reads a region of interest. A nil offset starts at the origin, a
// nil size extends to the end of each dimension and a nil sampling takes
// every sample.
func (f *File) ReadROI(offset, size, sampling []int) ([]byte, error) {
	if err := f.checkRD("ReadROI"); err != nil {
		return nil, err
	}
	region, err := layout.NewRegion(f.desc.Sizes(), offset, size, sampling)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, region.Len()*f.desc.ImelSize())
	n, err := f.readRegion(buf, region)
	return buf[:n], err
}

// ReadROIInto reads a region of interest into dst and returns the number of
// bytes written. See ReadROI for the meaning of the arguments.
func (f *File) ReadROIInto(dst []byte, offset, size, sampling []int) (int, error) {
	if err := f.checkRD("ReadROIInto"); err != nil {
		return 0, err
	}
	region, err := layout.NewRegion(f.desc.Sizes(), offset, size, sampling)
	if err != nil {
		return 0, err
	}
	return f.readRegion(dst, region)
}

func (f *File) readRegion(dst []byte, region layout.Region) (int, error) {
	imel := f.desc.ImelSize()
	need := region.Len() * imel
	if len(dst) < need {
		return 0, fmt.Errorf("%w: %d bytes for a %d byte region", ErrBufferTooSmall, len(dst), need)
	}
	if need == 0 {
		return 0, nil
	}

	s, err := f.openStream()
	if err != nil {
		return 0, err
	}
	defer s.close()

	step := region.Sampling[0]
	lineBytes := region.Size[0] * imel
	var line []byte
	if step > 1 {
		line = make([]byte, lineBytes)
	}

	n := 0
	err = region.Lines(f.desc.Sizes(), func(start int) error {
		if err := s.skip(int64(start*imel) - s.pos); err != nil {
			return err
		}
		if step == 1 {
			if err := s.read(dst[n : n+lineBytes]); err != nil {
				return err
			}
			n += lineBytes
			return nil
		}
		if err := s.read(line); err != nil {
			return err
		}
		for j := 0; j < lineBytes; j += step * imel {
			n += copy(dst[n:n+imel], line[j:j+imel])
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, f.reorder(dst[:n])
}

// ReadDataWithStrides reads the whole image into dst, placing samples
// according to strides (in samples, one per dimension). Nil strides mean a
// contiguous image.
func (f *File) ReadDataWithStrides(dst []byte, strides []int) error {
	if err := f.checkRD("ReadDataWithStrides"); err != nil {
		return err
	}
	dims := f.desc.Sizes()
	if strides == nil {
		strides = layout.Strides(dims)
	}
	if len(strides) != len(dims) {
		return fmt.Errorf("%w: %d strides for %d dimensions", ErrIllParameter, len(strides), len(dims))
	}
	imel := f.desc.ImelSize()
	if err := layout.CheckStrides(dims, strides, len(dst)/max(imel, 1)); err != nil {
		return fmt.Errorf("%w: %w", ErrIllParameter, err)
	}

	s, err := f.openStream()
	if err != nil {
		return err
	}
	defer s.close()

	return layout.Scatter(dst, dims, strides, imel, func(line []byte) error {
		if err := s.read(line); err != nil {
			return err
		}
		return f.reorder(line)
	})
}

// DataReader returns a reader over the sample data in host byte order. It
// yields exactly DataSize bytes and is independent of the block stream. The
// caller must close it.
func (f *File) DataReader() (io.ReadCloser, error) {
	if err := f.checkRD("DataReader"); err != nil {
		return nil, err
	}
	s, err := f.openStream()
	if err != nil {
		return nil, err
	}
	size := f.desc.DataSize()
	limited := io.LimitReader(s.r, size)
	return &dataReader{
		s:    s,
		r:    binary.NewReader(limited, f.desc.ByteOrder, f.desc.DataType.ComponentSize()),
		size: size,
	}, nil
}
