package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/tabcheck/tabcheck/sheet"
)

// ConsoleLimits caps how many items of each section are printed.
type ConsoleLimits struct {
	Changed int
	Added   int
	Deleted int
	Errors  int
}

func DefaultConsoleLimits() ConsoleLimits {
	return ConsoleLimits{
		Changed: 20,
		Added:   10,
		Deleted: 10,
		Errors:  30,
	}
}

func newConsoleTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false
	return t
}

type consoleWriter struct {
	w   io.Writer
	err error
}

func (c *consoleWriter) printf(format string, args ...interface{}) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format, args...)
}

func (c *consoleWriter) table(t table.Writer) {
	c.printf("%s\n", t.Render())
}

func (c *consoleWriter) banner(title string) {
	line := strings.Repeat("=", 50)
	c.printf("\n%s\n%s\n%s\n", line, title, line)
}

func (c *consoleWriter) more(n int, noun string) {
	if n > 0 {
		c.printf("  ... and %d more %s\n", n, noun)
	}
}

// IdentityHeader names the identity column of a diff for display.
func IdentityHeader(keyColumn string) string {
	if keyColumn == "" {
		return "Row"
	}
	return keyColumn
}

// IdentityCell renders a row identity for display.
func IdentityCell(id Identity) string {
	if id.IsPositional() {
		return strconv.Itoa(id.Position)
	}
	return id.Key
}

// WriteDiff prints a human readable diff summary followed by a truncated
// listing of each section.
func WriteDiff(w io.Writer, r DiffReport, limits ConsoleLimits) error {
	c := &consoleWriter{w: w}
	s := r.Summary()

	c.banner("DIFF REPORT")
	summary := newConsoleTable()
	summary.AppendHeader(table.Row{"Summary", "Count"})
	summary.AppendRows([]table.Row{
		{"Added rows", s.Added},
		{"Deleted rows", s.Deleted},
		{"Changed cells", s.Changed},
	})
	c.table(summary)

	if s.Identical() {
		c.printf("\nBoth tables are identical.\n")
		return c.err
	}

	if len(r.Changed) > 0 {
		c.printf("\n--- CHANGED (%d) ---\n", len(r.Changed))
		shown, more := Head(r.Changed, limits.Changed)
		t := newConsoleTable()
		t.AppendHeader(table.Row{IdentityHeader(r.KeyColumn), "Column", "Old value", "New value"})
		for _, ch := range shown {
			t.AppendRow(table.Row{
				IdentityCell(ch.Identity),
				ch.Column,
				sheet.Stringify(ch.OldValue),
				sheet.Stringify(ch.NewValue),
			})
		}
		c.table(t)
		c.more(more, "changes")
	}
	if len(r.Added) > 0 {
		c.printf("\n--- ADDED ROWS (%d) ---\n", len(r.Added))
		shown, more := Head(r.Added, limits.Added)
		for _, a := range shown {
			c.printf("  [%s]\n", identityLabel(r.KeyColumn, a.Identity))
		}
		c.more(more, "rows")
	}
	if len(r.Deleted) > 0 {
		c.printf("\n--- DELETED ROWS (%d) ---\n", len(r.Deleted))
		shown, more := Head(r.Deleted, limits.Deleted)
		for _, d := range shown {
			c.printf("  [%s]\n", identityLabel(r.KeyColumn, d.Identity))
		}
		c.more(more, "rows")
	}
	return c.err
}

func identityLabel(keyColumn string, id Identity) string {
	if id.IsPositional() {
		return fmt.Sprintf("row %d", id.Position)
	}
	return fmt.Sprintf("%s=%s", keyColumn, id.Key)
}

// WriteValidation prints a human readable validation summary followed by a
// truncated listing of errors.
func WriteValidation(w io.Writer, r ValidationReport, limits ConsoleLimits) error {
	c := &consoleWriter{w: w}
	s := r.Summary()

	c.banner("VALIDATION REPORT")
	summary := newConsoleTable()
	summary.AppendHeader(table.Row{"Summary", "Count"})
	summary.AppendRows([]table.Row{
		{"Total rows", s.TotalRows},
		{"Valid rows", s.ValidRows},
		{"Error rows", s.ErrorRows},
		{"Issues", s.Issues},
	})
	c.table(summary)

	if s.AllValid() {
		c.printf("\nAll data is valid.\n")
		return c.err
	}

	c.printf("\n--- ERRORS (%d) ---\n", len(r.Errors))
	shown, more := Head(r.Errors, limits.Errors)
	t := newConsoleTable()
	t.AppendHeader(table.Row{"Row", "Column", "Rule", "Message"})
	for _, e := range shown {
		t.AppendRow(table.Row{e.Row, e.Column, e.Rule, e.Message})
	}
	c.table(t)
	c.more(more, "errors")
	return c.err
}
