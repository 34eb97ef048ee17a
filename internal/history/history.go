// Package history holds the ordered provenance records of an ICS header.
//
// Records are appended, never removed or edited, and keep their insertion
// order through a write/read round trip.
package history

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// FieldSep separates the fields of a header line.
	FieldSep = '\t'
	// LineSep terminates a header line.
	LineSep = '\n'

	// MaxLineLength bounds a serialized header line, separator included.
	MaxLineLength = 256

	// Category is the header keyword that introduces a history line.
	Category = "history"
)

var (
	ErrEmptyField   = errors.New("empty field")
	ErrIllParameter = errors.New("a function parameter has a value that is not legal or does not match with a value previously given")
	ErrLineOverflow = errors.New("line overflow in .ics file")
)

// Record is a single history entry. Key may be empty.
type Record struct {
	Key   string
	Value string
}

// Fields returns the record as header fields following the category.
func (r Record) Fields() []string {
	if r.Key == "" {
		return []string{r.Value}
	}
	return []string{r.Key, r.Value}
}

// Line returns the full header line, without the line separator.
func (r Record) Line() string {
	return Category + string(FieldSep) + strings.Join(r.Fields(), string(FieldSep))
}

// FromFields rebuilds a record from the fields following the "history"
// category. A single field is a keyless value; otherwise the first field is
// the key and the rest, rejoined, the value.
func FromFields(fields []string) (Record, error) {
	switch len(fields) {
	case 0:
		return Record{}, ErrEmptyField
	case 1:
		return Record{Value: fields[0]}, nil
	default:
		return Record{Key: fields[0], Value: strings.Join(fields[1:], string(FieldSep))}, nil
	}
}

// Validate reports whether r can be written to a header and read back
// unchanged.
func (r Record) Validate() error {
	if r.Value == "" {
		return ErrEmptyField
	}
	if strings.ContainsAny(r.Key, string([]rune{FieldSep, LineSep})) {
		return fmt.Errorf("%w: key %q contains a separator", ErrIllParameter, r.Key)
	}
	if strings.ContainsRune(r.Key+r.Value, '\r') {
		return fmt.Errorf("%w: record contains a carriage return", ErrIllParameter)
	}
	if strings.ContainsRune(r.Value, LineSep) {
		return fmt.Errorf("%w: value contains a line separator", ErrIllParameter)
	}
	if r.Key == "" && strings.ContainsRune(r.Value, FieldSep) {
		return fmt.Errorf("%w: value without key contains a field separator", ErrIllParameter)
	}
	// Header lines are split with repeated separators merged, so only
	// single, inner field separators survive a read.
	sep := string(FieldSep)
	if strings.HasPrefix(r.Value, sep) || strings.HasSuffix(r.Value, sep) || strings.Contains(r.Value, sep+sep) {
		return fmt.Errorf("%w: value has a leading, trailing or repeated field separator", ErrIllParameter)
	}
	if n := len(r.Line()) + 1; n > MaxLineLength {
		return fmt.Errorf("%w: history line of %d bytes", ErrLineOverflow, n)
	}
	return nil
}

// Log is an ordered, append-only list of records. The zero value is empty
// and ready to use.
type Log struct {
	records []Record
}

// Add appends a record after validating it.
func (l *Log) Add(key, value string) error {
	r := Record{Key: key, Value: value}
	if err := r.Validate(); err != nil {
		return err
	}
	l.records = append(l.records, r)
	return nil
}

// Append adds records read from a header. Unlike Add it does not enforce
// the line length limit, so that headers written by other tools survive a
// round trip.
func (l *Log) Append(r Record) {
	l.records = append(l.records, r)
}

// Len returns the number of records.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

// At returns the i-th record.
func (l *Log) At(i int) Record {
	return l.records[i]
}

// All returns a copy of the records in insertion order.
func (l *Log) All() []Record {
	if l == nil || len(l.records) == 0 {
		return nil
	}
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Values returns the values of all records with the given key, in order.
func (l *Log) Values(key string) []string {
	if l == nil {
		return nil
	}
	var out []string
	for _, r := range l.records {
		if r.Key == key {
			out = append(out, r.Value)
		}
	}
	return out
}

// Clone returns an independent copy of l.
func (l *Log) Clone() *Log {
	return &Log{records: l.All()}
}
