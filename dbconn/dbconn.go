// Package dbconn loads tables from SQL databases.
package dbconn

import (
	"context"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tabcheck/tabcheck/sheet"
)

type ID string

type Conn interface {
	ID() ID
	// Close closes the connection.
	Close(ctx context.Context) error
	// QueryTable runs a query and returns every row as a table called name.
	QueryTable(ctx context.Context, name string, query string) (*sheet.Table, error)
	// TableQuery returns a query selecting every row of the given table.
	TableQuery(table string) string
	Dialect() string
}

// IsConnStr reports whether a location is a database connection string
// rather than a file.
func IsConnStr(s string) bool {
	before := strings.SplitN(s, "://", 2)
	if len(before) < 2 {
		return false
	}
	return strings.Contains(before[0], "postgres") || strings.Contains(before[0], "mysql")
}

func Connect(ctx context.Context, preferredID ID, connStr string) (Conn, error) {
	id := preferredID
	if len(connStr) == 0 {
		return nil, errors.Newf("empty connection string")
	}

	before := strings.SplitN(connStr, "://", 2)

	switch {
	case strings.Contains(before[0], "postgres"):
		u, err := url.Parse(connStr)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to parse url")
		}
		if id == "" {
			id = ID(u.Hostname() + ":" + u.Port())
		}
		return ConnectPG(ctx, id, connStr)
	case strings.Contains(before[0], "mysql"):
		return ConnectMySQL(ctx, id, connStr)
	}
	return nil, errors.Newf("unrecognised scheme %s", before[0])
}

// Query returns the query to run: the explicit query if set, otherwise a
// full scan of table.
func Query(conn Conn, query string, table string) (string, error) {
	switch {
	case query != "":
		return query, nil
	case table != "":
		return conn.TableQuery(table), nil
	}
	return "", errors.Newf("a query or a table must be supplied for %s", conn.ID())
}

// buildTable assembles a table from converted row values. Absent values are
// left out of the row.
func buildTable(name string, columns []string, rows [][]interface{}) (*sheet.Table, error) {
	out := make([]sheet.Row, len(rows))
	for i, vals := range rows {
		r := make(sheet.Row, len(columns))
		for j, col := range columns {
			if v := vals[j]; !sheet.IsAbsent(v) {
				r[col] = v
			}
		}
		out[i] = r
	}
	return sheet.New(name, columns, out...)
}
