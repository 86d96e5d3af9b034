package decoder

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
)

// DecodeCSV parses delimited text with the first non-empty line as the
// header. The delimiter is auto-detected; fully empty lines are skipped.
func DecodeCSV(data []byte) ([]Row, error) {
	data = stripBOM(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DecodeError{Format: "csv", Err: err}
		}
		records = append(records, record)
	}

	start := headerRowIndex(records)
	if start < 0 {
		return nil, nil
	}
	return mapRows(records[start], records[start+1:]), nil
}

// detectDelimiter counts candidate delimiters on the first non-empty line
// and picks the most frequent, defaulting to a comma.
func detectDelimiter(data []byte) rune {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		best, bestCount := ',', 0
		for _, d := range []rune{';', '\t', ',', '|'} {
			if count := strings.Count(line, string(d)); count > bestCount {
				best, bestCount = d, count
			}
		}
		return best
	}
	return ','
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
