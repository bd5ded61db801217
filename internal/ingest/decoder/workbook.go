package decoder

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/crimson-sun/latewatch/internal/model"
)

var zipMagic = []byte("PK\x03\x04")

func isSpreadsheet(ct string, body []byte) bool {
	return strings.Contains(ct, "spreadsheetml") || bytes.HasPrefix(body, zipMagic)
}

// decodeWorkbook reads the first sheet of an xlsx workbook as an ArrayMode grid.
func decodeWorkbook(body []byte) (model.Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return model.Grid{}, fmt.Errorf("%w: workbook: %v", ErrDecodeFailure, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return model.Grid{Mode: model.ArrayMode}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return model.Grid{}, fmt.Errorf("%w: workbook sheet %q: %v", ErrDecodeFailure, sheets[0], err)
	}
	return arrayGrid(trimEmptyRows(rows)), nil
}

// trimEmptyRows drops rows with no content. Sheets often carry formatted
// but empty trailing rows.
func trimEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
