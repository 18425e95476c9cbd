package xlsxreport

import (
	"io"

	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/sheet"
)

// WriteValidation writes a validation report. The Data sheet holds the input
// table with every cell that failed a rule highlighted.
func WriteValidation(w io.Writer, rep report.ValidationReport, t *sheet.Table, meta Meta) error {
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	for _, name := range []string{SheetErrors, SheetData} {
		if err := wb.addSheet(name); err != nil {
			return err
		}
	}

	row, err := wb.writeMeta(meta)
	if err != nil {
		return err
	}
	s := rep.Summary()
	for i, r := range [][]interface{}{
		{"Total rows", s.TotalRows},
		{"Valid rows", s.ValidRows},
		{"Error rows", s.ErrorRows},
		{"Issues", s.Issues},
	} {
		if err := wb.setRow(SheetSummary, row+i, r); err != nil {
			return err
		}
	}
	if err := wb.writeWarnings(row+5, rep.Warnings); err != nil {
		return err
	}

	if err := wb.setHeader(SheetErrors, "Row", "Column", "Value", "Rule", "Message"); err != nil {
		return err
	}
	for i, e := range rep.Errors {
		if err := wb.setRow(SheetErrors, i+2, []interface{}{
			e.Row, e.Column, cellValue(e.Value), e.Rule, e.Message,
		}); err != nil {
			return err
		}
	}

	if err := wb.writeTable(SheetData, t); err != nil {
		return err
	}
	colOf := make(map[string]int, len(t.Columns()))
	for i, c := range t.Columns() {
		colOf[c] = i + 1
	}
	// Validation rows are already numbered as sheet rows below the header.
	for cell := range rep.ErrorCells() {
		col, ok := colOf[cell.Column]
		if !ok {
			continue
		}
		if err := wb.highlight(SheetData, col, cell.Row, colorError); err != nil {
			return err
		}
	}
	return wb.write(w)
}
