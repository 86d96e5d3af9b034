// Package decoder converts uploaded statement files (delimited text or
// spreadsheet binaries) into raw rows keyed by their original header text.
package decoder

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Row is one decoded data row, keyed by the trimmed header cell text.
// Columns under a blank header never appear in the map.
type Row map[string]string

// ErrUnsupportedFormat is returned when the file extension is not one of
// .csv, .xlsx or .xls.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DecodeError wraps a whole-file parse failure (corrupt binary, malformed
// text). No partial result accompanies it.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode routes the file to the parser selected by its extension.
func Decode(filename string, data []byte) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return DecodeCSV(data)
	case ".xlsx":
		return DecodeXLSX(data)
	case ".xls":
		return DecodeXLS(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// mapRows pairs data cells against the header, dropping columns with blank
// headers and discarding rows where every cell is blank or zero.
func mapRows(headers []string, data [][]string) []Row {
	trimmed := make([]string, len(headers))
	for i, h := range headers {
		trimmed[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(data))
	for _, cells := range data {
		row := make(Row, len(trimmed))
		empty := true
		for i, h := range trimmed {
			if h == "" || i >= len(cells) {
				continue
			}
			v := cells[i]
			row[h] = v
			if s := strings.TrimSpace(v); s != "" && s != "0" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// headerRowIndex scans from the top for the first row containing at least
// one non-blank cell, guarding against leading title and blank rows.
func headerRowIndex(data [][]string) int {
	for i, cells := range data {
		for _, c := range cells {
			if strings.TrimSpace(c) != "" {
				return i
			}
		}
	}
	return -1
}
