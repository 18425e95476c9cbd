// Package sheetio loads tables from CSV files, XLSX workbooks and SQL
// databases.
package sheetio

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/tabcheck/tabcheck/blobstore"
	"github.com/tabcheck/tabcheck/dbconn"
	"github.com/tabcheck/tabcheck/retry"
	"github.com/tabcheck/tabcheck/sheet"
)

// ErrUnsupportedSource is returned for locations whose format cannot be
// determined.
var ErrUnsupportedSource = errors.New("unsupported source")

// Spec describes where a table is loaded from.
type Spec struct {
	// Location is a local path, an s3:// or gs:// URL, or a postgres:// or
	// mysql:// connection string.
	Location string
	// Sheet is the workbook sheet to read. For SQL sources it names the table
	// to select from when Query is empty.
	Sheet string
	// Query is only used for SQL sources.
	Query string
}

type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXLSX
	FormatSQL
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	case FormatSQL:
		return "sql"
	}
	return "unknown"
}

// DetectFormat determines the format of a location from its scheme or file
// extension.
func DetectFormat(location string) Format {
	if dbconn.IsConnStr(location) {
		return FormatSQL
	}
	switch strings.ToLower(path.Ext(location)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	}
	return FormatUnknown
}

// connect is swapped out in tests.
var connect = dbconn.Connect

// Load reads the table described by spec and names it name.
func Load(
	ctx context.Context, logger zerolog.Logger, spec Spec, name string, settings retry.Settings,
) (*sheet.Table, error) {
	format := DetectFormat(spec.Location)
	logger = logger.With().Str("table", name).Str("format", format.String()).Logger()
	switch format {
	case FormatSQL:
		return loadSQL(ctx, logger, spec, name)
	case FormatUnknown:
		return nil, errors.Wrapf(ErrUnsupportedSource, "cannot determine format of %q", spec.Location)
	}

	r, err := blobstore.Open(ctx, logger, spec.Location, settings)
	if err != nil {
		return nil, err
	}
	t, err := read(format, name, spec.Sheet, r)
	if closeErr := r.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", spec.Location)
	}
	logger.Debug().Int("rows", t.Len()).Int("columns", len(t.Columns())).Msgf("loaded %s", spec.Location)
	return t, nil
}

func read(format Format, name string, sheetName string, r io.Reader) (*sheet.Table, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(name, r)
	case FormatXLSX:
		return ReadXLSX(name, sheetName, r)
	}
	return nil, errors.AssertionFailedf("unhandled format %s", format)
}

func loadSQL(ctx context.Context, logger zerolog.Logger, spec Spec, name string) (*sheet.Table, error) {
	conn, err := connect(ctx, dbconn.ID(name), spec.Location)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Close(ctx); err != nil {
			logger.Err(err).Msgf("error closing connection")
		}
	}()
	query, err := dbconn.Query(conn, spec.Query, spec.Sheet)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("dialect", conn.Dialect()).Str("query", query).Msgf("running query")
	t, err := conn.QueryTable(ctx, name, query)
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("rows", t.Len()).Int("columns", len(t.Columns())).Msgf("loaded query result")
	return t, nil
}
