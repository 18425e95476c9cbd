package sheetio

import (
	"encoding/csv"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/tabcheck/tabcheck/sheet"
)

// ReadCSV reads a CSV document whose first record is the header.
func ReadCSV(name string, r io.Reader) (*sheet.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "error parsing csv")
	}
	if len(records) == 0 {
		return nil, errors.Newf("%s has no header row", name)
	}
	return tableFromRecords(name, records[0], records[1:], nil)
}
