package filter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrCompressWrite is returned when asked to produce compress(1) output.
var ErrCompressWrite = errors.New("writing compress data is not supported")

const (
	compressMagic0 = 0x1f
	compressMagic1 = 0x9d

	lzwInitBits  = 9
	lzwMaxBits   = 16
	lzwClearCode = 256
	lzwBlockMode = 0x80
	lzwBitsMask  = 0x1f
)

type compressCodec struct{}

func (compressCodec) Compression() Compression { return Compress }

// NewReader decodes the whole stream up front; compress data cannot be
// decoded incrementally by this package.
func (compressCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	out, err := DecodeCompress(data)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(out)), nil
}

func (compressCodec) NewWriter(io.Writer, int) (io.WriteCloser, error) {
	return nil, ErrCompressWrite
}

// DecodeCompress expands a complete compress(1) stream, header included.
//
// Codes are packed LSB first and start at 9 bits. The encoder emits them in
// groups of eight, so whenever the code width changes, or a CLEAR code is
// seen, the rest of the current group is padding and gets skipped.
func DecodeCompress(data []byte) ([]byte, error) {
	if len(data) < 3 || data[0] != compressMagic0 || data[1] != compressMagic1 {
		return nil, fmt.Errorf("%w: missing compress magic", ErrCorruptedStream)
	}
	maxBits := int(data[2] & lzwBitsMask)
	blockMode := data[2]&lzwBlockMode != 0
	if maxBits < lzwInitBits || maxBits > lzwMaxBits {
		return nil, fmt.Errorf("%w: compress stream uses %d-bit codes", ErrCorruptedStream, maxBits)
	}

	d := &lzwDecoder{
		in:         data[3:],
		maxMaxCode: 1 << maxBits,
		maxBits:    maxBits,
		blockMode:  blockMode,
		out:        make([]byte, 0, 3*len(data)),
	}
	if err := d.run(); err != nil {
		return nil, err
	}
	return d.out, nil
}

type lzwDecoder struct {
	in         []byte
	maxMaxCode int
	maxBits    int
	blockMode  bool

	prefix []uint16
	suffix []byte
	stack  []byte

	nBits      int
	maxCode    int
	freeEnt    int
	pos        int
	groupStart int

	out []byte
}

func (d *lzwDecoder) resetWidth() {
	d.nBits = lzwInitBits
	d.maxCode = 1<<d.nBits - 1
}

// align skips to the end of the current group of codes.
func (d *lzwDecoder) align() {
	g := d.nBits * 8
	if rel := (d.pos - d.groupStart) % g; rel != 0 {
		d.pos += g - rel
	}
	d.groupStart = d.pos
}

func (d *lzwDecoder) code() (int, bool) {
	if d.pos+d.nBits > len(d.in)*8 {
		return 0, false
	}
	i := d.pos >> 3
	var v uint32
	for k := 0; k < 3 && i+k < len(d.in); k++ {
		v |= uint32(d.in[i+k]) << (8 * k)
	}
	c := int(v>>(d.pos&7)) & (1<<d.nBits - 1)
	d.pos += d.nBits
	return c, true
}

func (d *lzwDecoder) run() error {
	d.prefix = make([]uint16, d.maxMaxCode)
	d.suffix = make([]byte, d.maxMaxCode)
	for i := 0; i < 256; i++ {
		d.suffix[i] = byte(i)
	}
	d.resetWidth()
	d.freeEnt = 256
	if d.blockMode {
		d.freeEnt = lzwClearCode + 1
	}

	oldCode := -1
	var finChar byte
	for {
		if d.freeEnt > d.maxCode {
			d.align()
			d.nBits++
			if d.nBits == d.maxBits {
				d.maxCode = d.maxMaxCode
			} else {
				d.maxCode = 1<<d.nBits - 1
			}
		}

		code, ok := d.code()
		if !ok {
			return nil
		}

		if code == lzwClearCode && d.blockMode {
			d.align()
			d.resetWidth()
			d.freeEnt = lzwClearCode + 1
			oldCode = -1
			continue
		}

		if oldCode < 0 {
			if code >= 256 {
				return fmt.Errorf("%w: first code %d is not a literal", ErrCorruptedStream, code)
			}
			finChar = byte(code)
			d.out = append(d.out, finChar)
			oldCode = code
			continue
		}

		inCode := code
		d.stack = d.stack[:0]
		if code >= d.freeEnt {
			// KwKwK: the code being defined by this very step.
			if code > d.freeEnt {
				return fmt.Errorf("%w: code %d beyond table end %d", ErrCorruptedStream, code, d.freeEnt)
			}
			d.stack = append(d.stack, finChar)
			code = oldCode
		}
		for code >= 256 {
			d.stack = append(d.stack, d.suffix[code])
			code = int(d.prefix[code])
		}
		finChar = d.suffix[code]
		d.stack = append(d.stack, finChar)
		for i := len(d.stack) - 1; i >= 0; i-- {
			d.out = append(d.out, d.stack[i])
		}

		if d.freeEnt < d.maxMaxCode {
			d.prefix[d.freeEnt] = uint16(oldCode)
			d.suffix[d.freeEnt] = finChar
			d.freeEnt++
		}
		oldCode = inCode
	}
}
