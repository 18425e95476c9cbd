package report

import (
	"sort"
)

// DiffSummary counts diff records by kind.
type DiffSummary struct {
	Added   int
	Deleted int
	Changed int
}

func (s DiffSummary) Identical() bool {
	return s.Added == 0 && s.Deleted == 0 && s.Changed == 0
}

// DiffReport is the result of comparing two tables.
type DiffReport struct {
	// KeyColumn is empty for positional comparisons.
	KeyColumn string

	Added   []AddedRow
	Deleted []DeletedRow
	Changed []ChangedCell

	Warnings []Warning
}

func (r DiffReport) Summary() DiffSummary {
	return DiffSummary{
		Added:   len(r.Added),
		Deleted: len(r.Deleted),
		Changed: len(r.Changed),
	}
}

// Items returns every record: added rows, then deleted rows, then changed
// cells.
func (r DiffReport) Items() []DiffRecord {
	ret := make([]DiffRecord, 0, len(r.Added)+len(r.Deleted)+len(r.Changed))
	for _, a := range r.Added {
		ret = append(ret, a)
	}
	for _, d := range r.Deleted {
		ret = append(ret, d)
	}
	for _, c := range r.Changed {
		ret = append(ret, c)
	}
	return ret
}

// ValidationSummary describes a validation run. ErrorRows counts distinct
// rows with at least one error, Issues counts every error.
type ValidationSummary struct {
	TotalRows int
	ValidRows int
	ErrorRows int
	Issues    int
}

func (s ValidationSummary) AllValid() bool {
	return s.Issues == 0
}

// ValidationReport is the result of validating a table.
type ValidationReport struct {
	TotalRows int
	Errors    []ValidationError
	Warnings  []Warning
}

func (r ValidationReport) Summary() ValidationSummary {
	errorRows := len(r.ErrorRows())
	return ValidationSummary{
		TotalRows: r.TotalRows,
		ValidRows: r.TotalRows - errorRows,
		ErrorRows: errorRows,
		Issues:    len(r.Errors),
	}
}

// ErrorRows returns the distinct row numbers referenced by errors, sorted.
func (r ValidationReport) ErrorRows() []int {
	seen := make(map[int]struct{}, len(r.Errors))
	var rows []int
	for _, e := range r.Errors {
		if _, ok := seen[e.Row]; ok {
			continue
		}
		seen[e.Row] = struct{}{}
		rows = append(rows, e.Row)
	}
	sort.Ints(rows)
	return rows
}

// ErrorCells returns the set of (row, column) cells with at least one error.
func (r ValidationReport) ErrorCells() map[Cell]struct{} {
	ret := make(map[Cell]struct{}, len(r.Errors))
	for _, e := range r.Errors {
		ret[Cell{Row: e.Row, Column: e.Column}] = struct{}{}
	}
	return ret
}

// Cell addresses a cell by displayed row number and column name.
type Cell struct {
	Row    int
	Column string
}

// Head returns at most limit items and the number of items left out. A
// non-positive limit returns everything.
func Head[T any](items []T, limit int) ([]T, int) {
	if limit <= 0 || len(items) <= limit {
		return items, 0
	}
	return items[:limit], len(items) - limit
}
