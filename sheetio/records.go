package sheetio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tabcheck/tabcheck/sheet"
)

// naValues are cell texts read as absent values.
var naValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNA reports whether a cell text denotes an absent value.
func IsNA(s string) bool {
	_, ok := naValues[s]
	return ok
}

// headerNames turns a header record into unique column names. Empty names
// become "Unnamed: <idx>"; repeated names get a ".<n>" suffix.
func headerNames(header []string) []string {
	used := make(map[string]struct{}, len(header))
	suffixes := make(map[string]int)
	ret := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for {
			if _, ok := used[name]; !ok {
				break
			}
			suffixes[h]++
			name = fmt.Sprintf("%s.%d", h, suffixes[h])
		}
		used[name] = struct{}{}
		ret[i] = name
	}
	return ret
}

type columnKind int

const (
	kindInt columnKind = iota
	kindFloat
	kindString
)

// cellPos addresses a cell of the records passed to tableFromRecords.
type cellPos struct {
	row, col int
}

// tableFromRecords builds a table from a header and text records, typing each
// column by its content. Cells in typed already carry their value and take no
// part in column typing.
func tableFromRecords(
	name string, header []string, records [][]string, typed map[cellPos]sheet.Value,
) (*sheet.Table, error) {
	columns := headerNames(header)
	for i, rec := range records {
		if len(rec) > len(columns) {
			return nil, errors.Newf(
				"row %d has %d fields, header has %d", i+2, len(rec), len(columns),
			)
		}
	}

	kinds := make([]columnKind, len(columns))
	for j := range columns {
		kinds[j] = kindInt
		for i, rec := range records {
			if j >= len(rec) || IsNA(rec[j]) {
				continue
			}
			if _, ok := typed[cellPos{i, j}]; ok {
				continue
			}
			kinds[j] = max(kinds[j], cellKind(rec[j]))
			if kinds[j] == kindString {
				break
			}
		}
	}

	rows := make([]sheet.Row, len(records))
	for i, rec := range records {
		r := make(sheet.Row, len(rec))
		for j, cell := range rec {
			if v, ok := typed[cellPos{i, j}]; ok {
				r[columns[j]] = v
				continue
			}
			if IsNA(cell) {
				continue
			}
			r[columns[j]] = typedValue(kinds[j], cell)
		}
		rows[i] = r
	}
	return sheet.New(name, columns, rows...)
}

func cellKind(s string) columnKind {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return kindInt
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return kindFloat
	}
	return kindString
}

func typedValue(kind columnKind, s string) sheet.Value {
	switch kind {
	case kindInt:
		i, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return i
	case kindFloat:
		f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f
	}
	return s
}
