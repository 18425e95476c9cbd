// Package report holds the findings produced by the diff and validation
// engines and the reporters that consume them.
package report

import (
	"fmt"
	"strconv"

	"github.com/tabcheck/tabcheck/sheet"
)

// ReportableObject is anything a Reporter knows how to report.
type ReportableObject interface{}

// Identity identifies a row in a diff. Key-based comparisons set Key,
// positional comparisons set Position (1-based); never both.
type Identity struct {
	Key      string
	Position int
}

// KeyIdentity returns the identity of a row matched by key.
func KeyIdentity(key string) Identity {
	return Identity{Key: key}
}

// PositionIdentity returns the identity of a row matched by 1-based position.
func PositionIdentity(pos int) Identity {
	return Identity{Position: pos}
}

func (i Identity) IsPositional() bool {
	return i.Position > 0
}

func (i Identity) String() string {
	if i.IsPositional() {
		return "row " + strconv.Itoa(i.Position)
	}
	return "key " + i.Key
}

// DiffRecord is one of AddedRow, DeletedRow or ChangedCell.
type DiffRecord interface {
	RowIdentity() Identity
	diffRecord()
}

// AddedRow is a row only present in the new table.
type AddedRow struct {
	Identity
	Data sheet.Row
}

// DeletedRow is a row only present in the old table.
type DeletedRow struct {
	Identity
	Data sheet.Row
}

// ChangedCell is a single column whose value differs between the two
// versions of the same logical row.
type ChangedCell struct {
	Identity
	Column   string
	OldValue sheet.Value
	NewValue sheet.Value
}

func (r AddedRow) RowIdentity() Identity    { return r.Identity }
func (r DeletedRow) RowIdentity() Identity  { return r.Identity }
func (r ChangedCell) RowIdentity() Identity { return r.Identity }

func (AddedRow) diffRecord()    {}
func (DeletedRow) diffRecord()  {}
func (ChangedCell) diffRecord() {}

var _ DiffRecord = AddedRow{}
var _ DiffRecord = DeletedRow{}
var _ DiffRecord = ChangedCell{}

// HeaderOffset converts a 0-based data row index into the row number shown
// by a spreadsheet application: one for the header row, one for 1-based
// numbering.
const HeaderOffset = 2

// ValidationError is a single rule violation on a single cell.
type ValidationError struct {
	// Row is the row number as displayed in the source document.
	Row     int
	Column  string
	Value   sheet.Value
	Rule    string
	Message string
}

// SourceRow converts a 0-based row index into a displayed row number.
func SourceRow(idx int) int {
	return idx + HeaderOffset
}

func (e ValidationError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

type WarningKind string

const (
	WarningUnknownColumn   WarningKind = "unknown_column"
	WarningUnknownRule     WarningKind = "unknown_rule"
	WarningDuplicateKey    WarningKind = "duplicate_key"
	WarningMissingKey      WarningKind = "missing_key"
	WarningColumnOnlyInOld WarningKind = "column_only_in_old"
	WarningColumnOnlyInNew WarningKind = "column_only_in_new"
)

// Warning is a non-fatal diagnostic raised when an engine degrades
// gracefully instead of failing.
type Warning struct {
	Kind    WarningKind
	Column  string
	Message string
}

// StatusReport is free-form progress information.
type StatusReport struct {
	Info string
}
