package ics

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/filter"
)

// stream is an open, decoded view of the sample data. Bytes come out in
// file byte order; callers reorder them.
type stream struct {
	file        *os.File
	dec         io.ReadCloser // nil when uncompressed
	r           io.Reader
	compression filter.Compression
	start       int64 // offset of the data in file
	pos         int64 // decoded bytes consumed

	// blockRead is set once a compress stream has served a block.
	blockRead bool
}

func (f *File) openStream() (*stream, error) {
	src, err := f.locateData()
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(src.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFOpenIds, err)
	}
	if _, err := fh.Seek(src.offset, io.SeekStart); err != nil {
		fh.Close()
		return nil, fmt.Errorf("%w: %w", ErrFReadIds, err)
	}

	s := &stream{file: fh, r: fh, compression: src.compression, start: src.offset}
	if src.compression != filter.Uncompressed {
		dec, err := filter.NewReader(src.compression, bufio.NewReader(fh))
		if err != nil {
			fh.Close()
			return nil, err
		}
		s.dec, s.r = dec, dec
	}

	f.log.Debug("opened data stream",
		zap.String("path", src.path),
		zap.Int64("offset", src.offset),
		zap.Stringer("compression", src.compression))
	return s, nil
}

// read fills dst completely.
func (s *stream) read(dst []byte) error {
	n, err := io.ReadFull(s.r, dst)
	s.pos += int64(n)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: got %d of %d bytes", ErrEndOfStream, n, len(dst))
	case errors.Is(err, filter.ErrCorruptedStream), errors.Is(err, filter.ErrDecompression):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrFReadIds, err)
	}
}

// skip discards n decoded bytes.
func (s *stream) skip(n int64) error {
	if n <= 0 {
		return nil
	}
	if s.dec == nil {
		if _, err := s.file.Seek(n, io.SeekCurrent); err != nil {
			return fmt.Errorf("%w: %w", ErrFReadIds, err)
		}
		s.pos += n
		return nil
	}
	copied, err := io.CopyN(io.Discard, s.r, n)
	s.pos += copied
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: skipped %d of %d bytes", ErrEndOfStream, copied, n)
	}
	return err
}

// verify decodes whatever follows the consumed data, so that a gzip trailer
// is checked once all samples have been read.
func (s *stream) verify() error {
	if s.dec == nil {
		return nil
	}
	_, err := io.Copy(io.Discard, s.r)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: stream ends before its trailer", ErrCorruptedStream)
	}
	return err
}

func (s *stream) close() error {
	var decErr error
	if s.dec != nil {
		decErr = s.dec.Close()
	}
	return errors.Join(decErr, s.file.Close())
}

func (f *File) closeStream() error {
	if f.stream == nil {
		return nil
	}
	err := f.stream.close()
	f.stream = nil
	return err
}

// reorder converts samples read from the file into host byte order.
func (f *File) reorder(buf []byte) error {
	return binary.Reorder(buf, f.desc.ByteOrder, f.desc.DataType.ComponentSize())
}

// dataReader streams the whole image in host byte order. Once all of it has
// been read the rest of the stream is verified, so a damaged gzip trailer
// surfaces as an error instead of io.EOF.
type dataReader struct {
	s        *stream
	r        io.Reader
	n        int64
	size     int64
	verified bool
}

func (r *dataReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.n += int64(n)
	switch {
	case (err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF)) && r.n < r.size:
		// A partial last sample shows up as io.ErrUnexpectedEOF.
		err = fmt.Errorf("%w: got %d of %d bytes", ErrEndOfStream, r.n, r.size)
	case errors.Is(err, io.ErrUnexpectedEOF):
		// All samples arrived but the decoder ran out before its trailer.
		err = fmt.Errorf("%w: stream ends before its trailer", ErrCorruptedStream)
	case err == io.EOF && !r.verified:
		r.verified = true
		if verr := r.s.verify(); verr != nil {
			err = verr
		}
	}
	return n, err
}

func (r *dataReader) Close() error {
	return r.s.close()
}
