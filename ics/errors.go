package ics

import (
	"errors"

	"github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/filter"
	"github.com/robert-malhotra/go-ics/internal/header"
	"github.com/robert-malhotra/go-ics/internal/history"
	"github.com/robert-malhotra/go-ics/internal/layout"
)

// Errors returned by this package. Callers should match them with errors.Is;
// most are returned wrapped with context.
var (
	ErrNotValidAction  = errors.New("the function won't work on the ICS given")
	ErrClosed          = errors.New("file is closed")
	ErrDuplicateData   = errors.New("the ICS data structure already contains incompatible stuff")
	ErrMissingData     = errors.New("there is no data defined")
	ErrSizeConflict    = errors.New("unexpected data size")
	ErrBufferTooSmall  = errors.New("the buffer was too small to hold the given ROI")
	ErrBlockNotAllowed = errors.New("it is not possible to read COMPRESS-compressed data in blocks")
	ErrEndOfStream     = errors.New("unexpected end of stream")
	ErrNoScilType      = errors.New("there doesn't exist a SCIL_TYPE value for this image")
	ErrFOpenIcs        = errors.New("file open error on .ics file")
	ErrFOpenIds        = errors.New("file open error on .ids file")
	ErrFReadIds        = errors.New("file read error on .ids file")
	ErrFWriteIcs       = errors.New("file write error on .ics file")
	ErrFWriteIds       = errors.New("file write error on .ids file")
	ErrFTempMoveIcs    = errors.New("failed to rename .ics file opened for updating")
	ErrFCopyIds        = errors.New("failed to copy image data from temporary file on .ics file opened for updating")

	ErrNotIcsFile          = header.ErrNotIcsFile
	ErrIllIcsToken         = header.ErrIllIcsToken
	ErrMissBits            = header.ErrMissBits
	ErrMissCat             = header.ErrMissCat
	ErrMissSubCat          = header.ErrMissSubCat
	ErrMissLayoutSubCat    = header.ErrMissLayoutSubCat
	ErrMissRepresSubCat    = header.ErrMissRepresSubCat
	ErrMissParamSubCat     = header.ErrMissParamSubCat
	ErrMissSensorSubCat    = header.ErrMissSensorSubCat
	ErrMissSensorSubSubCat = header.ErrMissSensorSubSubCat
	ErrNoLayout            = header.ErrNoLayout
	ErrTooManyDims         = header.ErrTooManyDims
	ErrTooManyChans        = header.ErrTooManyChans

	ErrEmptyField   = history.ErrEmptyField
	ErrIllParameter = history.ErrIllParameter
	ErrLineOverflow = history.ErrLineOverflow

	ErrUnknownDataType      = dtype.ErrUnknownDataType
	ErrBitsVsSizeConfl      = binary.ErrSizeConflict
	ErrIllegalROI           = layout.ErrIllegalROI
	ErrUnknownCompression   = filter.ErrUnknownCompression
	ErrCorruptedStream      = filter.ErrCorruptedStream
	ErrCompressionProblem   = filter.ErrCompression
	ErrDecompressionProblem = filter.ErrDecompression
)
