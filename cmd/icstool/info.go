package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-ics/ics"
)

type dimInfo struct {
	Size   int     `yaml:"size"`
	Order  string  `yaml:"order"`
	Label  string  `yaml:"label"`
	Origin float64 `yaml:"origin"`
	Scale  float64 `yaml:"scale"`
	Unit   string  `yaml:"unit"`
}

type imelInfo struct {
	Origin float64 `yaml:"origin"`
	Scale  float64 `yaml:"scale"`
	Unit   string  `yaml:"unit"`
}

type historyEntry struct {
	Key   string `yaml:"key,omitempty"`
	Value string `yaml:"value"`
}

type sensorInfo struct {
	Type     []string            `yaml:"type,omitempty"`
	Model    string              `yaml:"model,omitempty"`
	Channels int                 `yaml:"channels"`
	Params   map[string][]string `yaml:"params,omitempty"`
}

// summary describes an ICS file for the info command.
type summary struct {
	Path            string         `yaml:"path"`
	Version         int            `yaml:"version"`
	Type            ics.DataType   `yaml:"type"`
	Dims            []dimInfo      `yaml:"dimensions"`
	Coordinates     string         `yaml:"coordinates"`
	SignificantBits int            `yaml:"significant_bits"`
	Imel            imelInfo       `yaml:"imel"`
	Compression     string         `yaml:"compression"`
	Samples         int            `yaml:"samples"`
	DataSize        int64          `yaml:"data_size"`
	ScilType        string         `yaml:"scil_type,omitempty"`
	Sensor          *sensorInfo    `yaml:"sensor,omitempty"`
	History         []historyEntry `yaml:"history,omitempty"`
}

func summarize(f *ics.File) (*summary, error) {
	dt, dims, err := f.Layout()
	if err != nil {
		return nil, err
	}
	s := &summary{
		Path:     f.Path(),
		Version:  f.Version(),
		Type:     dt,
		Samples:  f.ImageSize(),
		DataSize: f.DataSize(),
	}
	for i, n := range dims {
		d := dimInfo{Size: n}
		if d.Order, d.Label, err = f.Order(i); err != nil {
			return nil, err
		}
		if d.Origin, d.Scale, d.Unit, err = f.Position(i); err != nil {
			return nil, err
		}
		s.Dims = append(s.Dims, d)
	}
	if s.Coordinates, err = f.CoordinateSystem(); err != nil {
		return nil, err
	}
	if s.SignificantBits, err = f.SignificantBits(); err != nil {
		return nil, err
	}
	if s.Imel.Origin, s.Imel.Scale, s.Imel.Unit, err = f.ImelUnits(); err != nil {
		return nil, err
	}
	c, _ := f.Compression()
	s.Compression = c.String()
	if s.ScilType, err = f.ScilType(); err != nil {
		return nil, err
	}

	sensor, err := f.Sensor()
	if err != nil {
		return nil, err
	}
	if sensor != nil {
		s.Sensor = &sensorInfo{Type: sensor.Type, Model: sensor.Model, Channels: sensor.Channels}
		for _, p := range sensor.Params {
			if s.Sensor.Params == nil {
				s.Sensor.Params = map[string][]string{}
			}
			s.Sensor.Params[p.Name] = p.Values
		}
	}
	for _, r := range f.History() {
		s.History = append(s.History, historyEntry{Key: r.Key, Value: r.Value})
	}
	return s, nil
}

func (s *summary) writeText(w io.Writer) {
	sizes := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		sizes[i] = fmt.Sprint(d.Size)
	}
	fmt.Fprintf(w, "File:         %s (ICS version %d)\n", s.Path, s.Version)
	fmt.Fprintf(w, "Layout:       %s, %s\n", s.Type, strings.Join(sizes, " x "))
	fmt.Fprintf(w, "Data:         %s samples, %s, %s\n",
		humanize.Comma(int64(s.Samples)), humanize.IBytes(uint64(s.DataSize)), s.Compression)
	fmt.Fprintf(w, "Coordinates:  %s\n", s.Coordinates)
	fmt.Fprintf(w, "Significant:  %d bits\n", s.SignificantBits)
	fmt.Fprintf(w, "Intensity:    origin %g, scale %g, %s\n", s.Imel.Origin, s.Imel.Scale, s.Imel.Unit)
	if s.ScilType != "" {
		fmt.Fprintf(w, "SCIL type:    %s\n", s.ScilType)
	}

	fmt.Fprintln(w, "Dimensions:")
	for i, d := range s.Dims {
		fmt.Fprintf(w, "  %d  %-6s %-12s size %-6d origin %g, scale %g %s\n",
			i, d.Order, d.Label, d.Size, d.Origin, d.Scale, d.Unit)
	}

	if s.Sensor != nil {
		fmt.Fprintf(w, "Sensor:       %s %s, %d channels\n", strings.Join(s.Sensor.Type, " "), s.Sensor.Model, s.Sensor.Channels)
		for name, vals := range s.Sensor.Params {
			fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(vals, " "))
		}
	}

	if len(s.History) > 0 {
		fmt.Fprintf(w, "History:      %d records\n", len(s.History))
		for _, h := range s.History {
			if h.Key == "" {
				fmt.Fprintf(w, "  %s\n", h.Value)
			} else {
				fmt.Fprintf(w, "  %s: %s\n", h.Key, h.Value)
			}
		}
	}
}

func newInfoCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "info FILE",
		Short: "Describe an ICS file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ics.Open(args[0], ics.WithLogger(a.log))
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := summarize(f)
			if err != nil {
				return err
			}
			a.log.Debug("summarized", zap.String("path", s.Path), zap.Int("dims", len(s.Dims)))

			switch format {
			case "text":
				s.writeText(a.out)
				return nil
			case "yaml":
				enc := yaml.NewEncoder(a.out)
				enc.SetIndent(2)
				if err := enc.Encode(s); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown output format %q", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or yaml")
	return cmd
}
