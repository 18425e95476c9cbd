// Package diff compares two tables row by row and cell by cell.
package diff

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/sheet"
)

// ErrKeyColumnNotFound is returned when a key column was requested but is
// not a column of one of the tables.
var ErrKeyColumnNotFound = errors.New("key column not found")

type Opt func(*opts)

type opts struct {
	keyColumn string
	filter    FilterConfig
}

// WithKeyColumn matches rows by the value of the given column. Without it,
// rows are matched by position.
func WithKeyColumn(col string) Opt {
	return func(o *opts) {
		o.keyColumn = col
	}
}

func WithColumnFilter(filter FilterConfig) Opt {
	return func(o *opts) {
		o.filter = filter
	}
}

// Diff compares the old table against the new table. Neither table is
// modified.
func Diff(oldTable, newTable *sheet.Table, inOpts ...Opt) (report.DiffReport, error) {
	o := opts{filter: DefaultFilterConfig()}
	for _, applyOpt := range inOpts {
		applyOpt(&o)
	}
	re, err := o.filter.compile()
	if err != nil {
		return report.DiffReport{}, err
	}

	cols, warnings := commonColumns(oldTable, newTable, re)
	if o.keyColumn == "" {
		ret := diffByPosition(oldTable, newTable, cols)
		ret.Warnings = append(warnings, ret.Warnings...)
		return ret, nil
	}
	for _, t := range []*sheet.Table{oldTable, newTable} {
		if !t.HasColumn(o.keyColumn) {
			return report.DiffReport{}, errors.Wrapf(
				ErrKeyColumnNotFound,
				"column %q missing from %s (available: %s)",
				o.keyColumn,
				t.Name(),
				strings.Join(t.Columns(), ", "),
			)
		}
	}
	ret := diffByKey(oldTable, newTable, o.keyColumn, cols)
	ret.Warnings = append(warnings, ret.Warnings...)
	return ret, nil
}

// commonColumns returns the columns of the old table, in order, which also
// exist in the new table and pass the filter. Columns only present on one
// side are reported as warnings.
func commonColumns(oldTable, newTable *sheet.Table, re *regexp.Regexp) ([]string, []report.Warning) {
	var cols []string
	var warnings []report.Warning
	for _, col := range oldTable.Columns() {
		if !newTable.HasColumn(col) {
			warnings = append(warnings, report.Warning{
				Kind:    report.WarningColumnOnlyInOld,
				Column:  col,
				Message: fmt.Sprintf("column %q only exists in %s, ignored", col, oldTable.Name()),
			})
			continue
		}
		if re != nil && !re.MatchString(col) {
			continue
		}
		cols = append(cols, col)
	}
	for _, col := range newTable.Columns() {
		if !oldTable.HasColumn(col) {
			warnings = append(warnings, report.Warning{
				Kind:    report.WarningColumnOnlyInNew,
				Column:  col,
				Message: fmt.Sprintf("column %q only exists in %s, ignored", col, newTable.Name()),
			})
		}
	}
	return cols, warnings
}

// keyIndex maps each key to the index of the first row holding it.
type keyIndex struct {
	first map[string]int
	keys  []string
}

func buildKeyIndex(t *sheet.Table, keyColumn string) (keyIndex, []report.Warning) {
	idx := keyIndex{first: make(map[string]int, t.Len())}
	var warnings []report.Warning
	for i, r := range t.Rows() {
		key := sheet.Stringify(r[keyColumn])
		if sheet.IsAbsent(r[keyColumn]) {
			warnings = append(warnings, report.Warning{
				Kind:   report.WarningMissingKey,
				Column: keyColumn,
				Message: fmt.Sprintf(
					"row %d in %s has no value for key column %q, matched by empty key",
					report.SourceRow(i), t.Name(), keyColumn,
				),
			})
		}
		if first, ok := idx.first[key]; ok {
			warnings = append(warnings, report.Warning{
				Kind:   report.WarningDuplicateKey,
				Column: keyColumn,
				Message: fmt.Sprintf(
					"duplicate key %q in %s at row %d, using row %d",
					key, t.Name(), report.SourceRow(i), report.SourceRow(first),
				),
			})
			continue
		}
		idx.first[key] = i
		idx.keys = append(idx.keys, key)
	}
	sort.Strings(idx.keys)
	return idx, warnings
}

func (k keyIndex) contains(key string) bool {
	_, ok := k.first[key]
	return ok
}

func diffByKey(oldTable, newTable *sheet.Table, keyColumn string, cols []string) report.DiffReport {
	ret := report.DiffReport{KeyColumn: keyColumn}
	oldIdx, oldWarnings := buildKeyIndex(oldTable, keyColumn)
	newIdx, newWarnings := buildKeyIndex(newTable, keyColumn)
	ret.Warnings = append(oldWarnings, newWarnings...)

	for _, key := range newIdx.keys {
		if !oldIdx.contains(key) {
			ret.Added = append(ret.Added, report.AddedRow{
				Identity: report.KeyIdentity(key),
				Data:     newTable.Rows()[newIdx.first[key]],
			})
		}
	}
	for _, key := range oldIdx.keys {
		if !newIdx.contains(key) {
			ret.Deleted = append(ret.Deleted, report.DeletedRow{
				Identity: report.KeyIdentity(key),
				Data:     oldTable.Rows()[oldIdx.first[key]],
			})
			continue
		}
		ret.Changed = append(
			ret.Changed,
			compareRows(
				report.KeyIdentity(key),
				oldTable.Rows()[oldIdx.first[key]],
				newTable.Rows()[newIdx.first[key]],
				cols,
			)...,
		)
	}
	return ret
}

func diffByPosition(oldTable, newTable *sheet.Table, cols []string) report.DiffReport {
	var ret report.DiffReport
	oldRows, newRows := oldTable.Rows(), newTable.Rows()
	maxLen := len(oldRows)
	if len(newRows) > maxLen {
		maxLen = len(newRows)
	}
	for i := 0; i < maxLen; i++ {
		id := report.PositionIdentity(i + 1)
		switch {
		case i >= len(oldRows):
			ret.Added = append(ret.Added, report.AddedRow{Identity: id, Data: newRows[i]})
		case i >= len(newRows):
			ret.Deleted = append(ret.Deleted, report.DeletedRow{Identity: id, Data: oldRows[i]})
		default:
			ret.Changed = append(ret.Changed, compareRows(id, oldRows[i], newRows[i], cols)...)
		}
	}
	return ret
}

// compareRows returns a ChangedCell for every column whose values differ.
func compareRows(id report.Identity, oldRow, newRow sheet.Row, cols []string) []report.ChangedCell {
	var ret []report.ChangedCell
	for _, col := range cols {
		oldVal, newVal := oldRow[col], newRow[col]
		if Equal(oldVal, newVal) {
			continue
		}
		ret = append(ret, report.ChangedCell{
			Identity: id,
			Column:   col,
			OldValue: oldVal,
			NewValue: newVal,
		})
	}
	return ret
}

// Equal reports whether two cell values are considered unchanged. Two
// absent values are equal, an absent value never equals a present one, and
// present values are compared by their string form.
func Equal(a, b sheet.Value) bool {
	aAbsent, bAbsent := sheet.IsAbsent(a), sheet.IsAbsent(b)
	if aAbsent || bAbsent {
		return aAbsent && bAbsent
	}
	return sheet.Stringify(a) == sheet.Stringify(b)
}
