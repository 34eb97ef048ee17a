package filter

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// DefaultLevel is the gzip level used when none, or an invalid one, is given.
const DefaultLevel = 6

// osUnix is the gzip header OS code written into every header.
const osUnix = 3

// ClampLevel maps a requested compression level onto 0..9.
func ClampLevel(level int) int {
	switch {
	case level < 0:
		return DefaultLevel
	case level > gzip.BestCompression:
		return gzip.BestCompression
	default:
		return level
	}
}

type gzipCodec struct{}

func (gzipCodec) Compression() Compression { return GZip }

func (gzipCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, translateGzipError(err)
	}
	// ICS data is a single member; anything after it belongs to someone else.
	zr.Multistream(false)
	return &gzipReader{zr: zr}, nil
}

func (gzipCodec) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	zw, err := gzip.NewWriterLevel(w, ClampLevel(level))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompression, err)
	}
	// The zero time is not the Unix epoch; without this the header carries
	// a nonzero MTIME.
	zw.Header.ModTime = time.Unix(0, 0)
	zw.Header.OS = osUnix
	return zw, nil
}

// gzipReader translates decoder failures into package errors.
type gzipReader struct {
	zr *gzip.Reader
}

func (g *gzipReader) Read(p []byte) (int, error) {
	n, err := g.zr.Read(p)
	if err != nil && err != io.EOF {
		err = translateGzipError(err)
	}
	return n, err
}

func (g *gzipReader) Close() error {
	return g.zr.Close()
}

func translateGzipError(err error) error {
	var corrupt flate.CorruptInputError
	switch {
	case errors.Is(err, gzip.ErrHeader), errors.Is(err, gzip.ErrChecksum), errors.As(err, &corrupt):
		return fmt.Errorf("%w: %v", ErrCorruptedStream, err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return io.ErrUnexpectedEOF
	default:
		return fmt.Errorf("%w: %v", ErrDecompression, err)
	}
}
