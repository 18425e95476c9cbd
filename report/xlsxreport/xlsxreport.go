// Package xlsxreport writes diff and validation reports as XLSX workbooks.
package xlsxreport

import (
	"io"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/sheet"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary = "Summary"
	SheetChanges = "Changes"
	SheetAdded   = "Added Rows"
	SheetDeleted = "Deleted Rows"
	SheetErrors  = "Errors"
	SheetData    = "Data"
)

const (
	colorChanged = "FFFF00"
	colorAdded   = "C6EFCE"
	colorError   = "FFC7CE"
)

// Meta describes the run a workbook reports on.
type Meta struct {
	RunID       string
	GeneratedAt time.Time
	// Sources lists the inputs by role, e.g. "Old" and "New".
	Sources []Source
}

type Source struct {
	Role     string
	Location string
}

type workbook struct {
	f      *excelize.File
	header int
	fills  map[string]int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	return &workbook{f: f, header: header, fills: make(map[string]int)}, nil
}

func (wb *workbook) fill(color string) (int, error) {
	if id, ok := wb.fills[color]; ok {
		return id, nil
	}
	id, err := wb.f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	if err != nil {
		return 0, err
	}
	wb.fills[color] = id
	return id, nil
}

func (wb *workbook) addSheet(name string) error {
	_, err := wb.f.NewSheet(name)
	return err
}

// setRow writes values into the given 1-based row.
func (wb *workbook) setRow(sheetName string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return wb.f.SetSheetRow(sheetName, cell, &values)
}

func (wb *workbook) setHeader(sheetName string, columns ...string) error {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	if err := wb.setRow(sheetName, 1, values); err != nil {
		return err
	}
	if len(columns) == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	return wb.f.SetCellStyle(sheetName, "A1", end, wb.header)
}

// highlight colors a single cell, addressed by 1-based column and row.
func (wb *workbook) highlight(sheetName string, col, row int, color string) error {
	style, err := wb.fill(color)
	if err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return wb.f.SetCellStyle(sheetName, cell, cell, style)
}

func (wb *workbook) highlightRow(sheetName string, row, numCols int, color string) error {
	if numCols == 0 {
		return nil
	}
	style, err := wb.fill(color)
	if err != nil {
		return err
	}
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(numCols, row)
	if err != nil {
		return err
	}
	return wb.f.SetCellStyle(sheetName, start, end, style)
}

func (wb *workbook) writeMeta(meta Meta) (int, error) {
	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	rows := [][]interface{}{
		{"Run ID", meta.RunID},
		{"Generated", generated.Format(sheet.TimeLayout)},
	}
	for _, s := range meta.Sources {
		rows = append(rows, []interface{}{s.Role, s.Location})
	}
	for i, r := range rows {
		if err := wb.setRow(SheetSummary, i+1, r); err != nil {
			return 0, err
		}
	}
	return len(rows) + 2, nil
}

func (wb *workbook) writeWarnings(row int, warnings []report.Warning) error {
	if len(warnings) == 0 {
		return nil
	}
	if err := wb.setRow(SheetSummary, row, []interface{}{"Warnings"}); err != nil {
		return err
	}
	for i, w := range warnings {
		if err := wb.setRow(SheetSummary, row+1+i, []interface{}{string(w.Kind), w.Message}); err != nil {
			return err
		}
	}
	return nil
}

// writeTable writes a table into a sheet, header first.
func (wb *workbook) writeTable(sheetName string, t *sheet.Table) error {
	if err := wb.setHeader(sheetName, t.Columns()...); err != nil {
		return err
	}
	for i, r := range t.Rows() {
		if err := wb.setRow(sheetName, report.SourceRow(i), rowValues(t.Columns(), r)); err != nil {
			return err
		}
	}
	return nil
}

func (wb *workbook) write(w io.Writer) error {
	wb.f.SetActiveSheet(0)
	if err := wb.f.Write(w); err != nil {
		return errors.Wrap(err, "error writing workbook")
	}
	return wb.f.Close()
}

func rowValues(columns []string, r sheet.Row) []interface{} {
	ret := make([]interface{}, len(columns))
	for i, c := range columns {
		ret[i] = cellValue(r[c])
	}
	return ret
}

// cellValue converts a sheet value into something excelize can store.
func cellValue(v sheet.Value) interface{} {
	if sheet.IsAbsent(v) {
		return nil
	}
	switch v := v.(type) {
	case *apd.Decimal:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case []byte:
		return string(v)
	}
	return v
}
