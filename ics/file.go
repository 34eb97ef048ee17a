package ics

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-ics/internal/filter"
	"github.com/robert-malhotra/go-ics/internal/header"
)

type fileMode int

const (
	modeRead fileMode = iota
	modeWrite
	modeUpdate
)

func (m fileMode) String() string {
	switch m {
	case modeRead:
		return "read"
	case modeWrite:
		return "write"
	case modeUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// File is an ICS image opened for reading, writing or updating.
type File struct {
	path string
	mode fileMode
	desc *header.Descriptor
	log  *zap.Logger

	// dataOffset is where inline version 2 data starts in path.
	dataOffset int64
	// stream is the data stream used by the block reading methods.
	stream *stream

	// Data attached in write mode.
	attached   bool
	data       []byte
	strides    []int
	dataReader io.Reader

	closed bool
}

// HeaderPath returns the name of the header file for name: ".ids" is
// replaced by ".ics", and ".ics" is appended when missing.
func HeaderPath(name string) string {
	switch filepath.Ext(name) {
	case ".ics":
		return name
	case ".ids":
		return strings.TrimSuffix(name, ".ids") + ".ics"
	default:
		return name + ".ics"
	}
}

// DataPath returns the name of the version 1 data file for name.
func DataPath(name string) string {
	return strings.TrimSuffix(HeaderPath(name), ".ics") + ".ids"
}

// Open opens an ICS file for reading.
func Open(name string, opts ...Option) (*File, error) {
	return open(name, modeRead, opts)
}

// OpenUpdate opens an ICS file to edit its metadata and history. The sample
// data is preserved; Close rewrites the header.
func OpenUpdate(name string, opts ...Option) (*File, error) {
	return open(name, modeUpdate, opts)
}

func open(name string, mode fileMode, opts []Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	path := HeaderPath(name)
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFOpenIcs, err)
	}
	defer fh.Close()

	desc, offset, err := header.Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	f := &File{
		path:       path,
		mode:       mode,
		desc:       desc,
		log:        o.logger,
		dataOffset: offset,
	}
	// A version 1 file may keep its data in a compressed sibling; knowing
	// which one up front lets Compression report it.
	if src, err := f.locateData(); err == nil {
		desc.Compression = src.compression
	}

	f.log.Debug("opened ics file",
		zap.String("path", path),
		zap.Stringer("mode", mode),
		zap.Int("version", desc.Version),
		zap.Stringer("type", desc.DataType),
		zap.Ints("dims", desc.Sizes()),
		zap.Stringer("compression", desc.Compression))
	return f, nil
}

// Create starts a new ICS file. Nothing is written until Close.
func Create(name string, opts ...Option) (*File, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	path := HeaderPath(name)
	desc := header.New(o.version)
	desc.Filename = strings.TrimSuffix(filepath.Base(path), ".ics")

	o.logger.Debug("created ics file", zap.String("path", path), zap.Int("version", desc.Version))
	return &File{
		path: path,
		mode: modeWrite,
		desc: desc,
		log:  o.logger,
	}, nil
}

// Version returns the ICS version of the named file, reading only the
// start of its header.
func Version(name string) (int, error) {
	fh, err := os.Open(HeaderPath(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFOpenIcs, err)
	}
	defer fh.Close()
	return header.ReadVersion(fh)
}

// Close finishes the file. In write mode it writes the header and data; in
// update mode it rewrites the header, keeping the data. Close on a closed
// File is a no-op.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	var err error
	switch f.mode {
	case modeRead:
		err = f.closeStream()
	case modeWrite:
		err = f.flush()
	case modeUpdate:
		err = errors.Join(f.closeStream(), f.rewrite())
	}
	f.data, f.dataReader = nil, nil

	if err != nil {
		f.log.Debug("closed ics file with error", zap.String("path", f.path), zap.Error(err))
		return err
	}
	f.log.Debug("closed ics file", zap.String("path", f.path), zap.Stringer("mode", f.mode))
	return nil
}

// Path returns the path of the header file.
func (f *File) Path() string {
	return f.path
}

// Version returns the ICS version of the file.
func (f *File) Version() int {
	return f.desc.Version
}

// allow returns ErrNotValidAction unless the file is open in one of modes.
func (f *File) allow(op string, modes ...fileMode) error {
	if f.closed {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	for _, m := range modes {
		if f.mode == m {
			return nil
		}
	}
	return fmt.Errorf("%s in %s mode: %w", op, f.mode, ErrNotValidAction)
}

// Mode checks: RD read or update, WD write, WMD write or update, RMD any mode.
func (f *File) checkRD(op string) error { return f.allow(op, modeRead, modeUpdate) }
func (f *File) checkWD(op string) error { return f.allow(op, modeWrite) }
func (f *File) checkWMD(op string) error { return f.allow(op, modeWrite, modeUpdate) }
func (f *File) checkRMD(op string) error { return f.allow(op, modeRead, modeWrite, modeUpdate) }

// dataSource is where the sample data of a file lives.
type dataSource struct {
	path        string
	offset      int64
	compression filter.Compression
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// locateData finds the sample data. Version 1 data missing from the ".ids"
// file is looked for in ".ids.gz" and then ".ids.Z".
func (f *File) locateData() (dataSource, error) {
	d := f.desc
	if d.Version == 1 {
		ids := DataPath(f.path)
		switch {
		case exists(ids):
			return dataSource{path: ids, compression: d.Compression}, nil
		case exists(ids + ".gz"):
			f.log.Debug("using gzip data file", zap.String("path", ids+".gz"))
			return dataSource{path: ids + ".gz", compression: filter.GZip}, nil
		case exists(ids + ".Z"):
			f.log.Debug("using compress data file", zap.String("path", ids+".Z"))
			return dataSource{path: ids + ".Z", compression: filter.Compress}, nil
		default:
			return dataSource{}, fmt.Errorf("%w: %s: %w", ErrFOpenIds, ids, fs.ErrNotExist)
		}
	}

	if d.Source.File == "" {
		return dataSource{path: f.path, offset: f.dataOffset, compression: d.Compression}, nil
	}
	path := d.Source.File
	if !filepath.IsAbs(path) && !exists(path) {
		// Relative sources are usually relative to the header.
		if rel := filepath.Join(filepath.Dir(f.path), path); exists(rel) {
			path = rel
		}
	}
	return dataSource{path: path, offset: d.Source.Offset, compression: d.Compression}, nil
}
