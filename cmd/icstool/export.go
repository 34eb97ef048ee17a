package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-ics/ics"
	"github.com/robert-malhotra/go-ics/internal/export"
)

type exportOptions struct {
	plane   int
	format  export.Format
	maxSide int
}

func newExportCmd(a *app) *cobra.Command {
	var (
		plane   int
		format  string
		maxSide int
	)
	cmd := &cobra.Command{
		Use:   "export FILE OUT",
		Short: "Render one plane of an ICS image as TIFF, BMP or PNG",
		Long: `Export reads one x/y plane of an image, scales its values onto the gray
range and writes it as a picture. Planes are numbered in file order over all
dimensions past the second.

The format is taken from --format, then from the extension of OUT, then from
the configuration.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := format
			if !cmd.Flags().Changed("format") {
				name = strings.TrimPrefix(strings.ToLower(filepath.Ext(args[1])), ".")
				if _, err := export.ParseFormat(name); err != nil {
					name = a.cfg.Export.Format
				}
			}
			f, err := export.ParseFormat(name)
			if err != nil {
				return err
			}
			return exportPlane(a, args[0], args[1], exportOptions{plane: plane, format: f, maxSide: maxSide})
		},
	}
	cmd.Flags().IntVarP(&plane, "plane", "p", 0, "index of the plane to export")
	cmd.Flags().StringVarP(&format, "format", "f", "", "picture format: tiff, bmp or png")
	cmd.Flags().IntVar(&maxSide, "max-size", 0, "scale down so no side exceeds this many pixels")
	return cmd
}

func exportPlane(a *app, in, out string, opts exportOptions) (err error) {
	f, err := ics.Open(in, ics.WithLogger(a.log))
	if err != nil {
		return err
	}
	defer f.Close()

	dt, _, err := f.Layout()
	if err != nil {
		return err
	}
	p, err := export.ReadPlane(f, opts.plane)
	if err != nil {
		return err
	}
	deep := opts.format != export.BMP && dt.ComponentSize() > 1
	img := export.Fit(export.Gray(p, deep), opts.maxSide)

	w, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, w.Close())
		if err != nil {
			os.Remove(out)
		}
	}()
	if err := export.Encode(w, img, opts.format); err != nil {
		return fmt.Errorf("export %s: %w", out, err)
	}

	b := img.Bounds()
	a.log.Info("exported plane",
		zap.String("from", f.Path()),
		zap.String("to", out),
		zap.Int("plane", opts.plane),
		zap.String("format", string(opts.format)),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))
	return nil
}
