// Package table reads and writes the delimited tables the pipeline
// exchanges: a header row followed by data rows, comma separated.
package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Table is a loaded delimited file: one header row plus data rows.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// ReadCSV loads a comma-delimited file with a header row. Row order is
// preserved exactly as in the file; period assignment depends on it.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("table: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("table: parse %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table: %q has no header row", path)
	}

	header := make([]string, len(records[0]))
	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		name := strings.TrimSpace(h)
		header[i] = name
		index[name] = i
	}

	return &Table{
		Path:   path,
		Header: header,
		Rows:   records[1:],
		index:  index,
	}, nil
}

// Column returns the index of a named column.
func (t *Table) Column(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("table: %q has no column %q", t.Path, name)
	}
	return i, nil
}

// Cell returns the trimmed value at (row, column name).
func (t *Table) Cell(row int, name string) (string, error) {
	i, err := t.Column(name)
	if err != nil {
		return "", err
	}
	if row < 0 || row >= len(t.Rows) {
		return "", fmt.Errorf("table: %q row %d out of range", t.Path, row)
	}
	if i >= len(t.Rows[row]) {
		return "", nil
	}
	return strings.TrimSpace(t.Rows[row][i]), nil
}

// Float parses the cell as a number. Empty cells are reported as
// missing, not as zero, so callers can apply their own drop policy.
func (t *Table) Float(row int, name string) (v float64, missing bool, err error) {
	s, err := t.Cell(row, name)
	if err != nil {
		return 0, false, err
	}
	if s == "" {
		return 0, true, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("table: %q row %d: column %q: %q is not numeric", t.Path, row, name, s)
	}
	return v, false, nil
}

// WriteCSV writes a header plus rows to path, creating parent
// directories. Output is byte-for-byte deterministic for a given input.
func WriteCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("table: create dir for %q: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("table: create %q: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("table: write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("table: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("table: flush %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("table: close %q: %w", path, err)
	}
	return nil
}
