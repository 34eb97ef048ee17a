package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-ics/ics"
)

type convertOptions struct {
	version     int
	compression ics.Compression
	level       int
}

func newConvertCmd(a *app) *cobra.Command {
	var (
		version     int
		compression string
		level       int
	)
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Rewrite an ICS file with another version or compression",
		Long: `Convert copies an ICS file, keeping its layout, metadata and history, and
re-encodes the sample data. A "convert" history record is appended.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := a.cfg.Write
			if cmd.Flags().Changed("version") {
				w.Version = version
			}
			if cmd.Flags().Changed("compression") {
				w.Compression = compression
			}
			if cmd.Flags().Changed("level") {
				w.Level = level
			}
			if w.Version != 1 && w.Version != 2 {
				return fmt.Errorf("version must be 1 or 2, not %d", w.Version)
			}
			c, err := w.CompressionScheme()
			if err != nil {
				return err
			}
			return convert(a, args[0], args[1], convertOptions{version: w.Version, compression: c, level: w.Level})
		},
	}
	cmd.Flags().IntVar(&version, "version", 2, "ICS version to write, 1 or 2")
	cmd.Flags().StringVarP(&compression, "compression", "c", "gzip", "data compression: gzip or none")
	cmd.Flags().IntVarP(&level, "level", "l", 6, "gzip level, 0 to 9")
	return cmd
}

func convert(a *app, in, out string, opts convertOptions) error {
	if ics.HeaderPath(in) == ics.HeaderPath(out) {
		return fmt.Errorf("convert: input and output are both %s", ics.HeaderPath(in))
	}

	src, err := ics.Open(in, ics.WithLogger(a.log))
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := ics.Create(out, ics.WithVersion(opts.version), ics.WithLogger(a.log))
	if err != nil {
		return err
	}
	if err := copyMetadata(src, dst); err != nil {
		return errors.Join(err, discard(dst))
	}
	if err := dst.SetCompression(opts.compression, opts.level); err != nil {
		return errors.Join(err, discard(dst))
	}
	note := fmt.Sprintf("%s to version %d %s", filepath.Base(src.Path()), opts.version, opts.compression)
	if err := dst.AddHistory("convert", note); err != nil {
		return errors.Join(err, discard(dst))
	}

	data, err := src.DataReader()
	if err != nil {
		return errors.Join(err, discard(dst))
	}
	defer data.Close()
	if err := dst.SetDataReader(data); err != nil {
		return errors.Join(err, discard(dst))
	}
	if err := dst.Close(); err != nil {
		return err
	}

	a.log.Info("converted",
		zap.String("from", src.Path()),
		zap.String("to", dst.Path()),
		zap.Int("version", opts.version),
		zap.Stringer("compression", opts.compression),
		zap.Int64("bytes", src.DataSize()))
	return nil
}

// discard closes a File that will not be completed. Closing it without data
// fails without writing anything, which is what is wanted here.
func discard(f *ics.File) error {
	if err := f.Close(); err != nil && !errors.Is(err, ics.ErrMissingData) && !errors.Is(err, ics.ErrNoLayout) {
		return err
	}
	return nil
}

// copyMetadata copies the layout and every header field of src to dst.
func copyMetadata(src, dst *ics.File) error {
	dt, dims, err := src.Layout()
	if err != nil {
		return err
	}
	if err := dst.SetLayout(dt, dims); err != nil {
		return err
	}
	for i := range dims {
		order, label, err := src.Order(i)
		if err != nil {
			return err
		}
		if err := dst.SetOrder(i, order, label); err != nil {
			return err
		}
		origin, scale, units, err := src.Position(i)
		if err != nil {
			return err
		}
		if err := dst.SetPosition(i, origin, scale, units); err != nil {
			return err
		}
	}

	coord, err := src.CoordinateSystem()
	if err != nil {
		return err
	}
	if err := dst.SetCoordinateSystem(coord); err != nil {
		return err
	}
	bits, err := src.SignificantBits()
	if err != nil {
		return err
	}
	if err := dst.SetSignificantBits(bits); err != nil {
		return err
	}
	origin, scale, units, err := src.ImelUnits()
	if err != nil {
		return err
	}
	if err := dst.SetImelUnits(origin, scale, units); err != nil {
		return err
	}
	scil, err := src.ScilType()
	if err != nil {
		return err
	}
	if err := dst.SetScilType(scil); err != nil {
		return err
	}
	sensor, err := src.Sensor()
	if err != nil {
		return err
	}
	if err := dst.SetSensor(sensor); err != nil {
		return err
	}

	for _, r := range src.History() {
		if err := dst.AddHistory(r.Key, r.Value); err != nil {
			return err
		}
	}
	return nil
}
