package dbconn

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/tabcheck/tabcheck/sheet"
)

// FakeConn serves canned tables keyed by query.
type FakeConn struct {
	id      ID
	results map[string]*sheet.Table
}

var _ Conn = FakeConn{}

func MakeFakeConn(id ID, results map[string]*sheet.Table) FakeConn {
	return FakeConn{id: id, results: results}
}

func (f FakeConn) ID() ID {
	return f.id
}

func (f FakeConn) Close(ctx context.Context) error {
	return nil
}

func (f FakeConn) QueryTable(ctx context.Context, name string, query string) (*sheet.Table, error) {
	t, ok := f.results[query]
	if !ok {
		return nil, errors.Newf("no result for query %q", query)
	}
	return sheet.New(name, t.Columns(), t.Rows()...)
}

func (f FakeConn) TableQuery(table string) string {
	return "SELECT * FROM " + table
}

func (f FakeConn) Dialect() string {
	return "fake"
}
