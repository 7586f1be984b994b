package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheetdash/internal/model"
)

// workbook builds an xlsx whose first sheet holds the given rows.
func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	b := workbook(t,
		[]any{"Name", "Score", "Active"},
		[]any{"A", 10, true},
		[]any{"B", 20.5, false},
	)

	res, err := Decode(b)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Score", "Active"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, model.String("A"), res.Rows[0]["Name"])
	assert.Equal(t, model.Number(10), res.Rows[0]["Score"])
	assert.Equal(t, model.Bool(true), res.Rows[0]["Active"])
	assert.Equal(t, model.Number(20.5), res.Rows[1]["Score"])
	assert.Equal(t, model.Bool(false), res.Rows[1]["Active"])

	assert.Equal(t, map[string]model.ScalarKind{
		"Name":   model.KindString,
		"Score":  model.KindNumber,
		"Active": model.KindBoolean,
	}, res.ColumnTypes)
}

func TestDecode_HeaderOnly(t *testing.T) {
	res, err := Decode(workbook(t, []any{"Name", "Score"}))
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Equal(t, []string{"Name", "Score"}, res.Columns)
}

func TestDecode_BlankSheet(t *testing.T) {
	res, err := Decode(workbook(t))
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Empty(t, res.Columns)
}

func TestDecode_Malformed(t *testing.T) {
	for name, b := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not a workbook"),
	} {
		t.Run(name, func(t *testing.T) {
			res, err := Decode(b)
			assert.ErrorIs(t, err, ErrDecode)
			assert.Nil(t, res)
		})
	}
}

func TestDecode_SparseCellsAndBlankRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Score"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "A"))
	// row 3 left blank
	require.NoError(t, f.SetCellValue("Sheet1", "B4", 7))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := Decode(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, model.Empty(), res.Rows[0]["Score"])
	assert.Equal(t, model.Empty(), res.Rows[1]["Name"])
	assert.Equal(t, model.Number(7), res.Rows[1]["Score"])
	assert.Equal(t, model.KindNumber, res.ColumnTypes["Score"])
}

func TestDecode_OnlyFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "First"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 1))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "A1", "Second"))
	require.NoError(t, f.SetCellValue("Other", "A2", 2))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"First"}, res.Columns)
	require.Len(t, res.Rows, 1)
}

func TestHeaders(t *testing.T) {
	got := headers([]string{" Name ", "", "Name", "Name", "Column_2"})
	assert.Equal(t, []string{"Name", "Column_2", "Name_1", "Name_2", "Column_2_1"}, got)
}

func TestEncode_RoundTrip(t *testing.T) {
	rows := []model.Row{
		{"Name": model.String("A"), "Score": model.Number(10)},
		{"Name": model.String("B"), "Score": model.Empty()},
	}
	b, err := Encode([]string{"Name", "Score"}, rows)
	require.NoError(t, err)

	res, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Score"}, res.Columns)
	assert.Equal(t, rows, res.Rows)
}
