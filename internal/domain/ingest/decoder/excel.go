package decoder

import (
	"bytes"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// DecodeXLSX reads the first sheet of an XLSX workbook. Cells are read raw
// so date cells surface as their serial-number form instead of a rendered,
// locale-dependent string.
func DecodeXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &DecodeError{Format: "xlsx", Err: err}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, &DecodeError{Format: "xlsx", Err: err}
	}

	start := headerRowIndex(grid)
	if start < 0 {
		return nil, nil
	}
	return mapRows(grid[start], grid[start+1:]), nil
}

// DecodeXLS reads the first sheet of a legacy BIFF workbook.
func DecodeXLS(data []byte) ([]Row, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, &DecodeError{Format: "xls", Err: err}
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		grid = append(grid, cells)
	}

	start := headerRowIndex(grid)
	if start < 0 {
		return nil, nil
	}
	return mapRows(grid[start], grid[start+1:]), nil
}
