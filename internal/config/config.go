// Package config loads icstool settings.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. built-in defaults
//  2. a YAML file: the --config flag, or icstool.yaml in the user config
//     directory when present
//  3. ICSTOOL_* variables from .env files and the process environment, the
//     process environment winning
//  4. command line flags, applied by the command itself
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-ics/internal/filter"
)

// FileName is the name of the config file looked up in the user config
// directory.
const FileName = "icstool.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ICSTOOL_"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all icstool settings.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Write  WriteConfig  `yaml:"write"`
	Export ExportConfig `yaml:"export"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days"`
	Compress    bool   `yaml:"compress"`
}

// WriteConfig holds the defaults used when icstool writes ICS files.
type WriteConfig struct {
	Version     int    `yaml:"version"`
	Compression string `yaml:"compression"`
	Level       int    `yaml:"level"`
}

// ExportConfig holds the defaults of the export command.
type ExportConfig struct {
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Write: WriteConfig{
			Version:     2,
			Compression: "gzip",
			Level:       filter.DefaultLevel,
		},
		Export: ExportConfig{Format: "tiff"},
	}
}

// DefaultPath returns the config file looked up when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, FileName)
}

// Load reads the config file at path, or the default one if path is empty,
// then applies environment overrides read from envFiles and the process
// environment. Missing env files are ignored; a missing explicit config file
// is an error.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.decode(raw); err != nil {
				return nil, fmt.Errorf("config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	env, err := readEnv(envFiles)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) decode(raw []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// readEnv collects ICSTOOL_ variables from env files, overridden by the
// process environment.
func readEnv(files []string) (map[string]string, error) {
	env := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("env file %s: %w", f, err)
		}
		for k, v := range vals {
			if strings.HasPrefix(k, EnvPrefix) {
				env[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	str := map[string]*string{
		"LOG_LEVEL":     &c.Log.Level,
		"LOG_FILE":      &c.Log.File,
		"COMPRESSION":   &c.Write.Compression,
		"EXPORT_FORMAT": &c.Export.Format,
	}
	ints := map[string]*int{
		"VERSION":         &c.Write.Version,
		"LEVEL":           &c.Write.Level,
		"LOG_MAX_SIZE_MB": &c.Log.MaxSizeMB,
	}
	bools := map[string]*bool{
		"DEV":          &c.Log.Development,
		"LOG_COMPRESS": &c.Log.Compress,
	}

	for name, dst := range str {
		if v, ok := env[EnvPrefix+name]; ok {
			*dst = v
		}
	}
	for name, dst := range ints {
		if v, ok := env[EnvPrefix+name]; ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q", ErrInvalid, EnvPrefix, name, v)
			}
			*dst = n
		}
	}
	for name, dst := range bools {
		if v, ok := env[EnvPrefix+name]; ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q", ErrInvalid, EnvPrefix, name, v)
			}
			*dst = b
		}
	}
	return nil
}

// CompressionScheme returns the compression scheme for written files. "none" is
// accepted for uncompressed.
func (w WriteConfig) CompressionScheme() (filter.Compression, error) {
	if w.Compression == "none" || w.Compression == "" {
		return filter.Uncompressed, nil
	}
	return filter.ParseCompression(w.Compression)
}

// Validate checks the settings for values icstool cannot use.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log level %q", c.Log.Level))
	}
	if c.Write.Version != 1 && c.Write.Version != 2 {
		errs = append(errs, fmt.Errorf("version %d", c.Write.Version))
	}
	if c.Write.Level < -1 || c.Write.Level > 9 {
		errs = append(errs, fmt.Errorf("compression level %d", c.Write.Level))
	}
	if _, err := c.Write.CompressionScheme(); err != nil {
		errs = append(errs, err)
	}
	switch c.Export.Format {
	case "tiff", "bmp", "png":
	default:
		errs = append(errs, fmt.Errorf("export format %q", c.Export.Format))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		errs = append(errs, errors.New("negative log rotation setting"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
