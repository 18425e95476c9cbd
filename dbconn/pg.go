package dbconn

import (
	"context"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lib/pq"
	"github.com/tabcheck/tabcheck/sheet"
)

type PGConn struct {
	id ID
	*pgx.Conn
}

var _ Conn = (*PGConn)(nil)

func ConnectPG(ctx context.Context, id ID, connStr string) (*PGConn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to %s", id)
	}
	return &PGConn{id: id, Conn: conn}, nil
}

func (c *PGConn) ID() ID {
	return c.id
}

func (c *PGConn) Dialect() string {
	return "PostgreSQL"
}

func (c *PGConn) TableQuery(table string) string {
	return "SELECT * FROM " + quotePGName(table)
}

// quotePGName quotes each dot separated part of a possibly schema qualified
// name.
func quotePGName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

func (c *PGConn) QueryTable(ctx context.Context, name string, query string) (*sheet.Table, error) {
	rows, err := c.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "error running query on %s", c.id)
	}
	defer rows.Close()

	var columns []string
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}
	var vals [][]interface{}
	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return nil, errors.Wrapf(err, "error decoding row from %s", c.id)
		}
		row := make([]interface{}, len(raw))
		for i, v := range raw {
			row[i] = pgValue(v)
		}
		vals = append(vals, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "error collecting rows from %s", c.id)
	}
	return buildTable(name, columns, vals)
}

func (c *PGConn) Close(ctx context.Context) error {
	return c.Conn.Close(ctx)
}

// pgValue converts a value decoded by pgx into a sheet value.
func pgValue(v interface{}) sheet.Value {
	switch v := v.(type) {
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float32:
		return float64(v)
	case pgtype.Numeric:
		if !v.Valid || v.NaN {
			return nil
		}
		if v.InfinityModifier != pgtype.Finite {
			d := &apd.Decimal{Form: apd.Infinite, Negative: v.InfinityModifier == pgtype.NegativeInfinity}
			return d
		}
		return apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(v.Int), v.Exp)
	case [16]byte:
		return uuid.UUID(v).String()
	case []byte:
		return string(v)
	}
	return v
}
