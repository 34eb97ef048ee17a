package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-ics/ics"
	"github.com/robert-malhotra/go-ics/internal/binary"
)

// digestChunk is the read size of digestData, rounded down to whole units.
const digestChunk = 1 << 16

func newDigestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "digest FILE...",
		Short: "Print a BLAKE3 digest of the sample data",
		Long: `Digest hashes the decoded sample data of each file with BLAKE3. Samples are
hashed in little-endian order, so the digest does not depend on the version,
compression or byte order the file was written with.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				sum, err := digestFile(a, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s  %s\n", hex.EncodeToString(sum), path)
			}
			return nil
		},
	}
}

func digestFile(a *app, path string) ([]byte, error) {
	f, err := ics.Open(path, ics.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sum, err := digestData(f)
	if err != nil {
		return nil, err
	}
	a.log.Debug("digested", zap.String("path", f.Path()), zap.Int64("bytes", f.DataSize()))
	return sum, nil
}

// digestData hashes the sample data of f in little-endian byte order.
func digestData(f *ics.File) ([]byte, error) {
	dt, _, err := f.Layout()
	if err != nil {
		return nil, err
	}
	unit := max(dt.ComponentSize(), 1)

	r, err := f.DataReader()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	h := blake3.New()
	buf := make([]byte, digestChunk/unit*unit)
	for {
		// ReadFull reports io.ErrUnexpectedEOF only for a short final chunk;
		// truncated data comes back as ics.ErrEndOfStream.
		n, err := io.ReadFull(r, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, err
		}
		if n%unit != 0 {
			return nil, fmt.Errorf("%w: partial sample at end of data", ics.ErrEndOfStream)
		}
		chunk := buf[:n]
		if err := binary.Convert(chunk, binary.Machine(unit), binary.LittleEndian(unit), unit); err != nil {
			return nil, err
		}
		h.Write(chunk)
		if err != nil {
			break
		}
	}
	return h.Sum(nil), nil
}
