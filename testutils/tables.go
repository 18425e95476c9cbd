package testutils

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tabcheck/tabcheck/sheet"
	"github.com/tabcheck/tabcheck/sheetio"
)

const sectionPrefix = "--- "

// ParseSections splits datadriven input into named sections. Each section
// starts with a line of the form "--- <name>".
func ParseSections(t *testing.T, input string) map[string]string {
	sections := make(map[string]string)
	var name string
	var sb strings.Builder
	flush := func() {
		if name != "" {
			sections[name] = sb.String()
		}
		sb.Reset()
	}
	for _, line := range strings.Split(input, "\n") {
		if strings.HasPrefix(line, sectionPrefix) {
			flush()
			name = strings.TrimSpace(strings.TrimPrefix(line, sectionPrefix))
			_, dup := sections[name]
			require.Falsef(t, dup, "section %q defined twice", name)
			continue
		}
		require.NotEmptyf(t, name, "line %q appears before any section", line)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	flush()
	return sections
}

// ParseTable reads a CSV section into a table.
func ParseTable(t *testing.T, name string, csv string) *sheet.Table {
	tbl, err := sheetio.ReadCSV(name, strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}

// FormatValue renders a cell for golden output, spelling out absent values.
func FormatValue(v sheet.Value) string {
	if sheet.IsAbsent(v) {
		return "<absent>"
	}
	return fmt.Sprintf("%q", sheet.Stringify(v))
}
