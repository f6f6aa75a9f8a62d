package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Table is a parsed tabular source: one CSV file or one exported sheet.
// Rows hold raw cell text; callers interpret columns via a Locator.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string // data rows only, in file order
	DataRow int        // 1-based row number of the first data row in the file
}

// headerHints mark a row as the header row. Real exports put a title
// block above the headers, so the header row is detected, not assumed.
var headerHints = []string{"id", "no. item", "identity", "title", "description", "story", "requirement"}

const maxHeaderScan = 15

// ReadCSV loads a CSV file into a Table. The group name is the file's
// base name without extension. Ragged rows are tolerated.
func ReadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("reading %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromRows(name, records), nil
}

// FromRows builds a Table from raw rows, locating the header row by hint
// scan over the leading rows.
func FromRows(name string, rows [][]string) Table {
	headerIdx := DetectHeaderRow(rows)
	t := Table{Name: name, DataRow: headerIdx + 2}
	if headerIdx < len(rows) {
		for _, h := range rows[headerIdx] {
			t.Headers = append(t.Headers, strings.TrimSpace(h))
		}
		t.Rows = rows[headerIdx+1:]
	}
	return t
}

// DetectHeaderRow scans the first rows for one containing a header hint
// and returns its index. Falls back to the first row.
func DetectHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > maxHeaderScan {
		limit = maxHeaderScan
	}
	for i := 0; i < limit; i++ {
		joined := strings.ToLower(strings.Join(rows[i], " "))
		for _, hint := range headerHints {
			if strings.Contains(joined, hint) {
				return i
			}
		}
	}
	return 0
}

// Cell returns the trimmed cell at column col of a row, tolerating short
// rows.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
