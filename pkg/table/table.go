// Package table loads benchmark telemetry CSV files whole into memory.
// A Table is a header plus raw rows; columns are parsed on access.
package table

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Table is one CSV file: a header row and data rows in file order.
// Callers relying on time ordering must supply sorted input; the table
// never sorts or deduplicates rows.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// FromFile reads path as a headered CSV file.
func FromFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open csv")
	}
	defer f.Close()
	t, err := FromReader(f)
	return t, errors.Wrapf(err, "read %s", path)
}

// FromReader parses headered CSV data. Some telemetry writers leave a
// trailing comma on the header row, so trailing empty header cells are
// dropped and data rows are padded or truncated to the header width.
func FromReader(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}
	if len(records) == 0 {
		return nil, errors.New("missing header row")
	}

	header := records[0]
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	index := make(map[string]int, len(header))
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		index[header[i]] = i
	}

	rows := records[1:]
	for i, row := range rows {
		switch {
		case len(row) > len(header):
			rows[i] = row[:len(header)]
		case len(row) < len(header):
			padded := make([]string, len(header))
			copy(padded, row)
			rows[i] = padded
		}
	}
	return &Table{header: header, index: index, rows: rows}, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the header names in file order.
func (t *Table) Columns() []string { return t.header }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Floats returns the named column parsed as float64 values.
func (t *Table) Floats(name string) ([]float64, error) {
	col, ok := t.index[name]
	if !ok {
		return nil, errors.Errorf("no column %q", name)
	}
	out := make([]float64, len(t.rows))
	for i, row := range t.rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q row %d", name, i+1)
		}
		out[i] = v
	}
	return out, nil
}

// Strings returns the named column verbatim, cell whitespace trimmed.
func (t *Table) Strings(name string) ([]string, error) {
	col, ok := t.index[name]
	if !ok {
		return nil, errors.Errorf("no column %q", name)
	}
	out := make([]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = strings.TrimSpace(row[col])
	}
	return out, nil
}
