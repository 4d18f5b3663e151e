// Package replay runs the analytics pipeline offline over CSV files
// instead of the live tick store.
package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"statarb-lab/internal/align"
)

// LoadTable reads a CSV file into a raw header/records table for the
// aligner. Rows with a field count different from the header are passed
// through unchanged; the aligner decides per-row what is usable.
func LoadTable(path string) (align.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return align.Table{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}

// ReadTable reads CSV from a stream. The first row is the header.
func ReadTable(r io.Reader) (align.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return align.Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return align.Table{}, nil
	}
	return align.Table{Header: rows[0], Records: rows[1:]}, nil
}
