package ics

import "fmt"

// AddHistory appends a history record. An empty key writes a keyless record.
// Records are written in the order they were added.
func (f *File) AddHistory(key, value string) error {
	if err := f.checkWMD("AddHistory"); err != nil {
		return err
	}
	if err := f.desc.History.Add(key, value); err != nil {
		return fmt.Errorf("history %q: %w", key, err)
	}
	return nil
}

// History returns a copy of all history records.
func (f *File) History() []HistoryRecord {
	return f.desc.History.All()
}

// HistoryFor returns the values of the history records with the given key.
func (f *File) HistoryFor(key string) []string {
	return f.desc.History.Values(key)
}

// NumHistory returns the number of history records.
func (f *File) NumHistory() int {
	return f.desc.History.Len()
}
