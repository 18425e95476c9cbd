package sheetio

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/tabcheck/tabcheck/sheet"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads a sheet of a workbook whose first row is the header. An
// empty sheetName selects the first sheet. Cells are read as stored, not as
// displayed: numbers lose their display formatting and date-formatted cells
// become time.Time values.
func ReadXLSX(name string, sheetName string, r io.Reader) (*sheet.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "error opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Newf("workbook for %s has no sheets", name)
	}
	if sheetName == "" {
		sheetName = sheets[0]
	}
	found := false
	for _, s := range sheets {
		if s == sheetName {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Newf(
			"sheet %q not found (available: %s)", sheetName, strings.Join(sheets, ", "),
		)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "error reading sheet %q", sheetName)
	}
	if len(rows) == 0 {
		return nil, errors.Newf("sheet %q has no header row", sheetName)
	}
	dates, err := dateCells(f, sheetName, rows[1:])
	if err != nil {
		return nil, errors.Wrapf(err, "error reading sheet %q", sheetName)
	}
	return tableFromRecords(name, rows[0], rows[1:], dates)
}

// dateCells converts the numeric cells of records whose number format shows
// a date or time. Records start on the second row of the sheet.
func dateCells(
	f *excelize.File, sheetName string, records [][]string,
) (map[cellPos]sheet.Value, error) {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, err
	}
	date1904 := props.Date1904 != nil && *props.Date1904

	isDate := map[int]bool{0: false}
	var ret map[cellPos]sheet.Value
	for i, rec := range records {
		for j, raw := range rec {
			serial, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			styleID, err := f.GetCellStyle(sheetName, cell)
			if err != nil {
				return nil, err
			}
			date, ok := isDate[styleID]
			if !ok {
				style, err := f.GetStyle(styleID)
				if err != nil {
					return nil, errors.Wrapf(err, "error reading style of cell %s", cell)
				}
				date = isDateFormat(style)
				isDate[styleID] = date
			}
			if !date {
				continue
			}
			typ, err := f.GetCellType(sheetName, cell)
			if err != nil {
				return nil, err
			}
			if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
				continue
			}
			tm, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				// Out of range for a date; keep the number.
				continue
			}
			if ret == nil {
				ret = make(map[cellPos]sheet.Value)
			}
			ret[cellPos{i, j}] = tm
		}
	}
	return ret, nil
}

func isDateFormat(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	id := style.NumFmt
	return (id >= 14 && id <= 22) || (id >= 27 && id <= 36) ||
		(id >= 45 && id <= 47) || (id >= 50 && id <= 58)
}

// isDateFormatCode reports whether a number format code contains date or time
// tokens outside of quoted text, escapes and bracketed sections.
func isDateFormatCode(code string) bool {
	var inQuote, inBracket, escaped bool
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case strings.ContainsRune("ydhs", unicode.ToLower(r)):
			return true
		}
	}
	return false
}
