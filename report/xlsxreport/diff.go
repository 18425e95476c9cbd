package xlsxreport

import (
	"io"

	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/sheet"
)

// WriteDiff writes a diff report. The Data sheet holds the new table with
// changed cells and added rows highlighted.
func WriteDiff(w io.Writer, rep report.DiffReport, oldTable, newTable *sheet.Table, meta Meta) error {
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	for _, name := range []string{SheetChanges, SheetAdded, SheetDeleted, SheetData} {
		if err := wb.addSheet(name); err != nil {
			return err
		}
	}

	row, err := wb.writeMeta(meta)
	if err != nil {
		return err
	}
	s := rep.Summary()
	keyColumn := rep.KeyColumn
	if keyColumn == "" {
		keyColumn = "(row position)"
	}
	for i, r := range [][]interface{}{
		{"Key column", keyColumn},
		{"Added rows", s.Added},
		{"Deleted rows", s.Deleted},
		{"Changed cells", s.Changed},
	} {
		if err := wb.setRow(SheetSummary, row+i, r); err != nil {
			return err
		}
	}
	if err := wb.writeWarnings(row+5, rep.Warnings); err != nil {
		return err
	}

	idHeader := report.IdentityHeader(rep.KeyColumn)
	if err := wb.setHeader(SheetChanges, idHeader, "Column", "Old Value", "New Value"); err != nil {
		return err
	}
	for i, c := range rep.Changed {
		if err := wb.setRow(SheetChanges, i+2, []interface{}{
			report.IdentityCell(c.Identity), c.Column, cellValue(c.OldValue), cellValue(c.NewValue),
		}); err != nil {
			return err
		}
	}

	added := make([]rowRecord, len(rep.Added))
	for i, a := range rep.Added {
		added[i] = rowRecord{id: a.Identity, data: a.Data}
	}
	if err := writeRows(wb, SheetAdded, rep.KeyColumn, newTable.Columns(), added); err != nil {
		return err
	}
	deleted := make([]rowRecord, len(rep.Deleted))
	for i, d := range rep.Deleted {
		deleted[i] = rowRecord{id: d.Identity, data: d.Data}
	}
	if err := writeRows(wb, SheetDeleted, rep.KeyColumn, oldTable.Columns(), deleted); err != nil {
		return err
	}

	if err := wb.writeTable(SheetData, newTable); err != nil {
		return err
	}
	if err := highlightDiff(wb, rep, newTable); err != nil {
		return err
	}
	return wb.write(w)
}

type rowRecord struct {
	id   report.Identity
	data sheet.Row
}

// writeRows lists whole rows. Positional diffs get a leading row number
// column; keyed rows already carry their key.
func writeRows(wb *workbook, sheetName string, keyColumn string, columns []string, rows []rowRecord) error {
	header := columns
	if keyColumn == "" {
		header = append([]string{report.IdentityHeader(keyColumn)}, columns...)
	}
	if err := wb.setHeader(sheetName, header...); err != nil {
		return err
	}
	for i, r := range rows {
		values := rowValues(columns, r.data)
		if keyColumn == "" {
			values = append([]interface{}{r.id.Position}, values...)
		}
		if err := wb.setRow(sheetName, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// highlightDiff colors the Data sheet. Rows are located the same way the
// diff matched them: by first occurrence of the key, or by position.
func highlightDiff(wb *workbook, rep report.DiffReport, newTable *sheet.Table) error {
	var firstRow map[string]int
	if rep.KeyColumn != "" {
		firstRow = make(map[string]int, newTable.Len())
		for i, r := range newTable.Rows() {
			key := sheet.Stringify(r[rep.KeyColumn])
			if _, ok := firstRow[key]; !ok {
				firstRow[key] = i
			}
		}
	}
	rowOf := func(id report.Identity) (int, bool) {
		if id.IsPositional() {
			return id.Position - 1, id.Position >= 1 && id.Position <= newTable.Len()
		}
		idx, ok := firstRow[id.Key]
		return idx, ok
	}
	colOf := make(map[string]int, len(newTable.Columns()))
	for i, c := range newTable.Columns() {
		colOf[c] = i + 1
	}

	for _, a := range rep.Added {
		if idx, ok := rowOf(a.Identity); ok {
			if err := wb.highlightRow(SheetData, report.SourceRow(idx), len(newTable.Columns()), colorAdded); err != nil {
				return err
			}
		}
	}
	for _, c := range rep.Changed {
		idx, ok := rowOf(c.Identity)
		col, hasCol := colOf[c.Column]
		if !ok || !hasCol {
			continue
		}
		if err := wb.highlight(SheetData, col, report.SourceRow(idx), colorChanged); err != nil {
			return err
		}
	}
	return nil
}
