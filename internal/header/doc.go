// Package header reads and writes the text header of an ICS file.
//
// # Format
//
// The first line of a header holds exactly two characters: the field
// separator and the line separator (conventionally TAB and LF). Every
// following line is a category keyword, optionally one or two subcategory
// keywords, and values, all separated by the field separator:
//
//	ics_version	2.0
//	filename	cells
//	layout	parameters	3
//	layout	order	bits	x	y
//	layout	sizes	16	256	256
//	representation	format	integer
//	parameter	scale	1	0.1	0.1
//	history	author	alice
//	end
//
// The "bits" entry may sit anywhere in "layout order"; the per-dimension
// lists of "layout sizes" and the "parameter" lines are aligned with it, and
// their entry at the "bits" position describes the sample values themselves.
//
// In version 2 headers the sample data either follows the "end" line
// directly or lives in the file named by "source file" at "source offset".
// Version 1 headers keep their data in a sibling ".ids" file.
//
// # Key Types
//
//   - [Descriptor]: everything a header describes
//   - [Dim]: size, naming and physical positioning of one dimension
//   - [Sensor]: acquisition parameters, one value per channel
//
// [Parse] and [Write] convert between a [Descriptor] and its text form.
// Numbers always use '.' as decimal separator.
package header
