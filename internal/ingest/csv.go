package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// parseIntLike accepts integer codes that some exports render as float
// literals ("3" or "3.0").
func parseIntLike(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// columnIndex maps lowercased header names to their positions.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

// requireColumns checks that every named column is present in the header.
func requireColumns(idx map[string]int, names ...string) error {
	for _, name := range names {
		if _, ok := idx[name]; !ok {
			return eris.Errorf("ingest: missing required column %q", name)
		}
	}
	return nil
}

// field returns the trimmed cell for a named column, or "" when the column is
// absent or the record is short.
func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// forEachRecord reads r as headered CSV and calls fn with each data record
// and its 1-based row number (the header is row 0). fn errors abort the read.
func forEachRecord(r io.Reader, required []string, fn func(row int, record []string, idx map[string]int) error) error {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return eris.Wrap(err, "ingest: read CSV header")
	}
	idx := columnIndex(header)
	if err := requireColumns(idx, required...); err != nil {
		return err
	}

	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return eris.Wrapf(err, "ingest: row %d", row)
		}
		if err := fn(row, record, idx); err != nil {
			return err
		}
	}
}
