package xlsxreport

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tabcheck/tabcheck/diff"
	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/sheet"
	"github.com/xuri/excelize/v2"
)

var testMeta = Meta{
	RunID:       "5f0c7a52-5b1e-4bb8-9c43-1c2f0e7f61a4",
	GeneratedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	Sources:     []Source{{Role: "Old", Location: "old.csv"}, {Role: "New", Location: "new.csv"}},
}

func openWorkbook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, f.Close()) })
	return f
}

func cellStyle(t *testing.T, f *excelize.File, sheetName, cell string) int {
	style, err := f.GetCellStyle(sheetName, cell)
	require.NoError(t, err)
	return style
}

func TestWriteDiff(t *testing.T) {
	oldTable := sheet.MustNew("old", []string{"No_Invoice", "Status", "Total"},
		sheet.Row{"No_Invoice": "INV-1", "Status": "Pending", "Total": int64(100)},
		sheet.Row{"No_Invoice": "INV-2", "Status": "Lunas", "Total": int64(250)},
	)
	newTable := sheet.MustNew("new", []string{"No_Invoice", "Status", "Total"},
		sheet.Row{"No_Invoice": "INV-1", "Status": "Lunas", "Total": int64(100)},
		sheet.Row{"No_Invoice": "INV-3", "Status": "Pending", "Total": int64(75)},
	)
	rep, err := diff.Diff(oldTable, newTable, diff.WithKeyColumn("No_Invoice"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDiff(&buf, rep, oldTable, newTable, testMeta))
	f := openWorkbook(t, &buf)

	require.Equal(t, []string{SheetSummary, SheetChanges, SheetAdded, SheetDeleted, SheetData}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Equal(t, []string{"Run ID", testMeta.RunID}, summary[0])
	require.Equal(t, []string{"Generated", "2024-03-01 09:30:00"}, summary[1])
	require.Equal(t, []string{"Old", "old.csv"}, summary[2])
	require.Equal(t, []string{"Key column", "No_Invoice"}, summary[5])
	require.Equal(t, []string{"Added rows", "1"}, summary[6])
	require.Equal(t, []string{"Deleted rows", "1"}, summary[7])
	require.Equal(t, []string{"Changed cells", "1"}, summary[8])

	changes, err := f.GetRows(SheetChanges)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"No_Invoice", "Column", "Old Value", "New Value"},
		{"INV-1", "Status", "Pending", "Lunas"},
	}, changes)

	added, err := f.GetRows(SheetAdded)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"No_Invoice", "Status", "Total"},
		{"INV-3", "Pending", "75"},
	}, added)

	deleted, err := f.GetRows(SheetDeleted)
	require.NoError(t, err)
	require.Equal(t, []string{"INV-2", "Lunas", "250"}, deleted[1])

	data, err := f.GetRows(SheetData)
	require.NoError(t, err)
	require.Equal(t, []string{"INV-1", "Lunas", "100"}, data[1])

	plain := cellStyle(t, f, SheetData, "A2")
	changed := cellStyle(t, f, SheetData, "B2")
	addedStyle := cellStyle(t, f, SheetData, "A3")
	require.NotEqual(t, plain, changed)
	require.NotEqual(t, plain, addedStyle)
	require.NotEqual(t, changed, addedStyle)
	require.Equal(t, addedStyle, cellStyle(t, f, SheetData, "C3"))
	require.Equal(t, plain, cellStyle(t, f, SheetData, "C2"))
}

func TestWriteDiffHighlightsFirstKeyOccurrence(t *testing.T) {
	oldTable := sheet.MustNew("old", []string{"id", "status"},
		sheet.Row{"id": "A", "status": "Pending"},
	)
	newTable := sheet.MustNew("new", []string{"id", "status"},
		sheet.Row{"id": "B", "status": "Pending"},
		sheet.Row{"id": "A", "status": "Lunas"},
		sheet.Row{"id": "A", "status": "Batal"},
		sheet.Row{"id": "B", "status": "Lunas"},
	)
	rep, err := diff.Diff(oldTable, newTable, diff.WithKeyColumn("id"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDiff(&buf, rep, oldTable, newTable, testMeta))
	f := openWorkbook(t, &buf)

	plain := cellStyle(t, f, SheetData, "A3")
	added := cellStyle(t, f, SheetData, "A2")
	changed := cellStyle(t, f, SheetData, "B3")
	require.NotEqual(t, plain, added)
	require.NotEqual(t, plain, changed)
	require.Equal(t, added, cellStyle(t, f, SheetData, "B2"))
	for _, cell := range []string{"A4", "B4", "A5", "B5"} {
		require.Equal(t, plain, cellStyle(t, f, SheetData, cell), cell)
	}
}

func TestWriteDiffPositional(t *testing.T) {
	oldTable := sheet.MustNew("old", []string{"name"}, sheet.Row{"name": "a"})
	newTable := sheet.MustNew("new", []string{"name"}, sheet.Row{"name": "b"}, sheet.Row{"name": "c"})
	rep, err := diff.Diff(oldTable, newTable)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDiff(&buf, rep, oldTable, newTable, Meta{RunID: "r"}))
	f := openWorkbook(t, &buf)

	changes, err := f.GetRows(SheetChanges)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Row", "Column", "Old Value", "New Value"},
		{"1", "name", "a", "b"},
	}, changes)
	require.NotEqual(t, cellStyle(t, f, SheetData, "A2"), cellStyle(t, f, SheetData, "A3"))

	added, err := f.GetRows(SheetAdded)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"Row", "name"}, {"2", "c"}}, added)
}

func TestWriteValidation(t *testing.T) {
	tbl := sheet.MustNew("data", []string{"Nama", "Umur"},
		sheet.Row{"Nama": "Andi", "Umur": int64(15)},
		sheet.Row{"Nama": "Budi", "Umur": int64(30)},
	)
	rep := report.ValidationReport{
		TotalRows: 2,
		Errors: []report.ValidationError{
			{Row: 2, Column: "Umur", Value: int64(15), Rule: "numberRange", Message: "value less than 17: 15"},
		},
		Warnings: []report.Warning{
			{Kind: report.WarningUnknownColumn, Column: "Email", Message: `column "Email" not found in data, skipped`},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteValidation(&buf, rep, tbl, testMeta))
	f := openWorkbook(t, &buf)

	require.Equal(t, []string{SheetSummary, SheetErrors, SheetData}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Equal(t, []string{"Total rows", "2"}, summary[5])
	require.Equal(t, []string{"Valid rows", "1"}, summary[6])
	require.Equal(t, []string{"Error rows", "1"}, summary[7])
	require.Equal(t, []string{"Issues", "1"}, summary[8])
	require.Equal(t, []string{"Warnings"}, summary[10])
	require.Equal(t, []string{"unknown_column", `column "Email" not found in data, skipped`}, summary[11])

	errs, err := f.GetRows(SheetErrors)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Row", "Column", "Value", "Rule", "Message"},
		{"2", "Umur", "15", "numberRange", "value less than 17: 15"},
	}, errs)

	require.NotEqual(t, cellStyle(t, f, SheetData, "B2"), cellStyle(t, f, SheetData, "B3"))
	require.Equal(t, cellStyle(t, f, SheetData, "A2"), cellStyle(t, f, SheetData, "B3"))
}
