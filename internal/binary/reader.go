package binary

import (
	"io"
)

// Reader reorders a stream of samples into host byte order as it is read.
// Partial samples at the end of a Read are held back until the rest of the
// sample arrives, so callers may read any number of bytes at a time.
type Reader struct {
	r       io.Reader
	src     Order
	dst     Order
	unit    int
	pending []byte // reordered bytes not yet returned
	partial []byte // bytes of an incomplete sample
	err     error
}

// NewReader returns a Reader converting unit-byte samples from order src to
// host order.
func NewReader(r io.Reader, src Order, unit int) *Reader {
	return &Reader{
		r:    r,
		src:  src,
		dst:  Machine(unit),
		unit: unit,
	}
}

// Passthrough reports whether the reader leaves data untouched.
func (r *Reader) Passthrough() bool {
	return r.unit <= 1 || len(r.src) != r.unit || r.src.Empty() || r.src.Equal(r.dst)
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.Passthrough() {
		return r.r.Read(p)
	}
	if len(p) == 0 {
		return 0, nil
	}

	for len(r.pending) == 0 {
		if r.err != nil {
			if len(r.partial) > 0 && r.err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, r.err
		}

		buf := make([]byte, len(r.partial)+max(len(p), r.unit))
		copy(buf, r.partial)
		n, err := r.r.Read(buf[len(r.partial):])
		r.err = err
		buf = buf[:len(r.partial)+n]

		whole := len(buf) - len(buf)%r.unit
		r.partial = append(r.partial[:0], buf[whole:]...)
		if whole > 0 {
			if cerr := Convert(buf[:whole], r.src, r.dst, r.unit); cerr != nil {
				return 0, cerr
			}
			r.pending = buf[:whole]
		}
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}
