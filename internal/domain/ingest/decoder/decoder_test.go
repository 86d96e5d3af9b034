package decoder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV(t *testing.T) {
	t.Run("decodes standard CSV", func(t *testing.T) {
		csv := `Date,Description,Amount
2024-01-15,Coffee Shop,-4.50
2024-01-16,Salary,5000.00`

		rows, err := DecodeCSV([]byte(csv))

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2024-01-15", rows[0]["Date"])
		assert.Equal(t, "Coffee Shop", rows[0]["Description"])
		assert.Equal(t, "5000.00", rows[1]["Amount"])
	})

	t.Run("detects semicolon delimiter", func(t *testing.T) {
		csv := `Date;Description;Amount
15/01/2024;Uber Trip;-67.89`

		rows, err := DecodeCSV([]byte(csv))

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Uber Trip", rows[0]["Description"])
	})

	t.Run("strips UTF-8 BOM", func(t *testing.T) {
		csv := "\xEF\xBB\xBFDate,Amount\n2024-01-15,10.00"

		rows, err := DecodeCSV([]byte(csv))

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "2024-01-15", rows[0]["Date"])
	})

	t.Run("skips leading blank rows before header", func(t *testing.T) {
		csv := "\n\nDate,Amount\n2024-01-15,10.00"

		rows, err := DecodeCSV([]byte(csv))

		require.NoError(t, err)
		require.Len(t, rows, 1)
	})

	t.Run("trims header whitespace", func(t *testing.T) {
		csv := " Date , Amount \n2024-01-15,10.00"

		rows, err := DecodeCSV([]byte(csv))

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "2024-01-15", rows[0]["Date"])
		assert.Equal(t, "10.00", rows[0]["Amount"])
	})

	t.Run("drops columns with blank headers", func(t *testing.T) {
		csv := `Date,,Amount
2024-01-15,noise,10.00`

		rows, err := DecodeCSV([]byte(csv))

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Len(t, rows[0], 2)
		assert.NotContains(t, rows[0], "")
	})

	t.Run("discards all-blank and all-zero rows", func(t *testing.T) {
		csv := `Date,Amount
2024-01-15,10.00
,
0,0`

		rows, err := DecodeCSV([]byte(csv))

		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("tolerates ragged rows", func(t *testing.T) {
		csv := `Date,Description,Amount
2024-01-15,Coffee
2024-01-16,Salary,5000.00,extra`

		rows, err := DecodeCSV([]byte(csv))

		require.NoError(t, err)
		require.Len(t, rows, 2)
		_, ok := rows[0]["Amount"]
		assert.False(t, ok)
	})
}

func TestDecodeXLSX(t *testing.T) {
	buildWorkbook := func(t *testing.T, cells [][]any) []byte {
		t.Helper()
		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		for r, row := range cells {
			for c, v := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sheet, cell, v))
			}
		}
		var buf bytes.Buffer
		require.NoError(t, f.Write(&buf))
		return buf.Bytes()
	}

	t.Run("decodes first sheet", func(t *testing.T) {
		data := buildWorkbook(t, [][]any{
			{"Date", "Description", "Amount"},
			{"2024-01-15", "Coffee Shop", "-4.50"},
		})

		rows, err := DecodeXLSX(data)

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Coffee Shop", rows[0]["Description"])
	})

	t.Run("preserves raw serial date values", func(t *testing.T) {
		data := buildWorkbook(t, [][]any{
			{"Date", "Amount"},
			{45000, 150.25},
		})

		rows, err := DecodeXLSX(data)

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "45000", rows[0]["Date"])
	})

	t.Run("rejects corrupt data", func(t *testing.T) {
		_, err := DecodeXLSX([]byte("not a spreadsheet"))

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, "xlsx", decodeErr.Format)
	})
}

func TestDecodeXLS(t *testing.T) {
	t.Run("rejects corrupt data", func(t *testing.T) {
		_, err := DecodeXLS([]byte("not a legacy workbook"))

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, "xls", decodeErr.Format)
	})
}

func TestDecode(t *testing.T) {
	t.Run("routes by extension case-insensitively", func(t *testing.T) {
		csv := "Date,Amount\n2024-01-15,10.00"

		rows, err := Decode("Statement.CSV", []byte(csv))

		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		_, err := Decode("statement.pdf", []byte("%PDF-1.4"))

		assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	})
}
