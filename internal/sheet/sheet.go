// Package sheet decodes spreadsheet bytes into typed rows using excelize.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sheetdash/internal/model"
)

var (
	// ErrDecode is returned for bytes that are not a readable workbook.
	ErrDecode = errors.New("spreadsheet decode failed")
	// ErrEmptyInput marks a workbook whose first sheet has no data rows.
	ErrEmptyInput = errors.New("spreadsheet has no data rows")
)

// Result is a decoded first sheet.
type Result struct {
	Columns     []string
	ColumnTypes map[string]model.ScalarKind
	Rows        []model.Row
}

// Decode reads the first sheet of a workbook. The first row is the header.
// A sheet without data rows decodes to an empty, non-nil Rows slice.
func Decode(b []byte) (*Result, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrDecode)
	}
	name := sheets[0]

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	res := &Result{
		Columns:     []string{},
		ColumnTypes: map[string]model.ScalarKind{},
		Rows:        []model.Row{},
	}
	if len(raw) == 0 {
		return res, nil
	}

	res.Columns = headers(raw[0])
	for i, cells := range raw[1:] {
		row, err := decodeRow(f, name, i+2, res.Columns, cells)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if row == nil {
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	for _, col := range res.Columns {
		res.ColumnTypes[col] = model.KindEmpty
		for _, row := range res.Rows {
			if v := row[col]; !v.IsEmpty() {
				res.ColumnTypes[col] = v.Kind
				break
			}
		}
	}
	return res, nil
}

// headers trims the header cells, names blank ones Column_N and suffixes duplicates.
func headers(cells []string) []string {
	out := make([]string, 0, len(cells))
	used := make(map[string]bool, len(cells))
	for i, h := range cells {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		used[name] = true
		out = append(out, name)
	}
	return out
}

// decodeRow returns nil when every cell of the row is empty.
func decodeRow(f *excelize.File, sheet string, rowNum int, columns []string, cells []string) (model.Row, error) {
	row := make(model.Row, len(columns))
	nonEmpty := false
	for i, col := range columns {
		if i >= len(cells) || cells[i] == "" {
			row[col] = model.Empty()
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return nil, err
		}
		typ, err := f.GetCellType(sheet, cell)
		if err != nil {
			return nil, err
		}
		row[col] = toScalar(typ, cells[i])
		nonEmpty = true
	}
	if !nonEmpty {
		return nil, nil
	}
	return row, nil
}

func toScalar(typ excelize.CellType, raw string) model.Scalar {
	switch typ {
	case excelize.CellTypeBool:
		switch strings.ToUpper(raw) {
		case "1", "TRUE":
			return model.Bool(true)
		case "0", "FALSE":
			return model.Bool(false)
		}
		return model.String(raw)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return model.Number(n)
		}
		return model.String(raw)
	default:
		return model.String(raw)
	}
}
