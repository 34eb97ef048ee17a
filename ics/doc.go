// Package ics reads and writes Image Cytometry Standard (ICS) files.
//
// An ICS file is a text header describing an N-dimensional image plus the
// binary sample data, which is optionally gzip compressed. Version 1 files
// keep the data in a sibling ".ids" file; version 2 files append it to the
// header or point at a region of another file.
//
// A File is opened in one of three modes:
//
//   - [Open] reads an existing file. Data is fetched from disk only when a
//     read method is called.
//   - [Create] writes a new file. Layout, metadata and data are collected and
//     written by [File.Close].
//   - [OpenUpdate] edits the metadata and history of an existing file while
//     keeping its data. [File.Close] rewrites the header in place.
//
// Sample data is exchanged as bytes in host byte order, or as typed slices
// through helpers such as [File.ReadFloat32] and [File.SetPixels].
//
// A File is not safe for concurrent use. Distinct Files may be used from
// different goroutines.
//
// Example:
//
//	f, err := ics.Create("cells.ics")
//	if err != nil {
//	    return err
//	}
//	f.SetLayout(ics.Uint16, []int{512, 512, 30})
//	f.SetPosition(2, 0, 0.2, "micrometer")
//	f.SetPixels(voxels)
//	f.AddHistory("author", "alice")
//	return f.Close()
package ics
