package filter

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrUnknownCompression = errors.New("unknown compression type")
	ErrCorruptedStream    = errors.New("the compressed input stream is corrupted")
	ErrCompression        = errors.New("some error occurred during compression")
	ErrDecompression      = errors.New("some error occurred during decompression")
)

// Compression identifies the compression scheme of a data stream.
type Compression uint8

const (
	Uncompressed Compression = iota
	GZip
	Compress
)

var compressionNames = map[Compression]string{
	Uncompressed: "uncompressed",
	GZip:         "gzip",
	Compress:     "compress",
}

// String returns the keyword used for the scheme in ICS headers.
func (c Compression) String() string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(c))
}

// ParseCompression parses a header compression keyword.
func ParseCompression(s string) (Compression, error) {
	for c, name := range compressionNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
}

// Codec creates readers and writers for one compression scheme.
type Codec interface {
	// Compression returns the scheme this codec implements.
	Compression() Compression

	// NewReader returns a reader yielding the decoded stream.
	NewReader(r io.Reader) (io.ReadCloser, error)

	// NewWriter returns a writer encoding to w. Close flushes the stream but
	// does not close w.
	NewWriter(w io.Writer, level int) (io.WriteCloser, error)
}

// Registry maps compression schemes to their codecs.
var Registry = map[Compression]Codec{
	Uncompressed: plain{},
	GZip:         gzipCodec{},
	Compress:     compressCodec{},
}

// Lookup returns the codec for c.
func Lookup(c Compression) (Codec, error) {
	codec, ok := Registry[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompression, c)
	}
	return codec, nil
}

// NewReader returns a reader decoding r with scheme c.
func NewReader(c Compression, r io.Reader) (io.ReadCloser, error) {
	codec, err := Lookup(c)
	if err != nil {
		return nil, err
	}
	return codec.NewReader(r)
}

// NewWriter returns a writer encoding to w with scheme c at the given level.
func NewWriter(c Compression, w io.Writer, level int) (io.WriteCloser, error) {
	codec, err := Lookup(c)
	if err != nil {
		return nil, err
	}
	return codec.NewWriter(w, level)
}

// plain is the identity codec.
type plain struct{}

func (plain) Compression() Compression { return Uncompressed }

func (plain) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

func (plain) NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
