package header

import (
	"errors"

	"github.com/robert-malhotra/go-ics/internal/history"
)

var (
	ErrNotIcsFile          = errors.New("not an ICS file")
	ErrIllIcsToken         = errors.New("illegal ICS token detected")
	ErrMissBits            = errors.New(`missing "bits" element in .ics file`)
	ErrMissCat             = errors.New("missing main category")
	ErrMissSubCat          = errors.New("missing sub category")
	ErrMissLayoutSubCat    = errors.New("missing layout subcategory")
	ErrMissRepresSubCat    = errors.New("missing representation subcategory")
	ErrMissParamSubCat     = errors.New("missing parameter subcategory")
	ErrMissSensorSubCat    = errors.New("missing sensor subcategory")
	ErrMissSensorSubSubCat = errors.New("missing sensor subsubcategory")
	ErrNoLayout            = errors.New("layout parameters missing or not defined")
	ErrTooManyDims         = errors.New("data has too many dimensions")
	ErrTooManyChans        = errors.New("too many channels specified")

	ErrLineOverflow = history.ErrLineOverflow
)
