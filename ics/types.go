package ics

import (
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/filter"
	"github.com/robert-malhotra/go-ics/internal/header"
	"github.com/robert-malhotra/go-ics/internal/history"
)

// DataType identifies the type of a single sample.
type DataType = dtype.DataType

// Sample data types.
const (
	Unknown    = dtype.Unknown
	Uint8      = dtype.Uint8
	Int8       = dtype.Int8
	Uint16     = dtype.Uint16
	Int16      = dtype.Int16
	Uint32     = dtype.Uint32
	Int32      = dtype.Int32
	Uint64     = dtype.Uint64
	Int64      = dtype.Int64
	Float32    = dtype.Float32
	Float64    = dtype.Float64
	Complex64  = dtype.Complex64
	Complex128 = dtype.Complex128
)

// Compression is the compression scheme of the sample data.
type Compression = filter.Compression

// Compression schemes.
const (
	Uncompressed = filter.Uncompressed
	GZip         = filter.GZip
	Compress     = filter.Compress
)

// HistoryRecord is one entry of the history log.
type HistoryRecord = history.Record

// Sensor holds acquisition parameters, one value per channel.
type Sensor = header.Sensor

// SensorParam is a named sensor parameter.
type SensorParam = header.Param

// MaxDims is the largest number of dimensions an image may have.
const MaxDims = header.MaxDims

// MaxLineLength bounds a header line.
const MaxLineLength = history.MaxLineLength
