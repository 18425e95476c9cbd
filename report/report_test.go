package report

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/tabcheck/tabcheck/sheet"
)

func TestValidationSummary(t *testing.T) {
	r := ValidationReport{
		TotalRows: 5,
		Errors: []ValidationError{
			{Row: 2, Column: "Email", Rule: "required"},
			{Row: 4, Column: "Email", Rule: "email"},
			{Row: 2, Column: "Umur", Rule: "number_range"},
			{Row: 2, Column: "Umur", Rule: "required"},
		},
	}
	require.Equal(t, ValidationSummary{TotalRows: 5, ValidRows: 3, ErrorRows: 2, Issues: 4}, r.Summary())
	require.Equal(t, []int{2, 4}, r.ErrorRows())
	require.Equal(t, map[Cell]struct{}{
		{Row: 2, Column: "Email"}: {},
		{Row: 4, Column: "Email"}: {},
		{Row: 2, Column: "Umur"}:  {},
	}, r.ErrorCells())
	require.False(t, r.Summary().AllValid())
	require.True(t, ValidationReport{TotalRows: 3}.Summary().AllValid())
}

func TestDiffSummaryAndItems(t *testing.T) {
	r := DiffReport{
		KeyColumn: "id",
		Added:     []AddedRow{{Identity: KeyIdentity("3")}},
		Deleted:   []DeletedRow{{Identity: KeyIdentity("2")}, {Identity: KeyIdentity("4")}},
		Changed:   []ChangedCell{{Identity: KeyIdentity("1"), Column: "status"}},
	}
	require.Equal(t, DiffSummary{Added: 1, Deleted: 2, Changed: 1}, r.Summary())
	require.False(t, r.Summary().Identical())
	require.True(t, DiffReport{}.Summary().Identical())

	var ids []string
	for _, item := range r.Items() {
		ids = append(ids, item.RowIdentity().String())
	}
	require.Equal(t, []string{"key 3", "key 2", "key 4", "key 1"}, ids)
}

func TestHead(t *testing.T) {
	for _, tc := range []struct {
		desc         string
		items        []int
		limit        int
		expected     []int
		expectedMore int
	}{
		{desc: "under limit", items: []int{1, 2}, limit: 3, expected: []int{1, 2}},
		{desc: "at limit", items: []int{1, 2, 3}, limit: 3, expected: []int{1, 2, 3}},
		{desc: "over limit", items: []int{1, 2, 3, 4, 5}, limit: 3, expected: []int{1, 2, 3}, expectedMore: 2},
		{desc: "no limit", items: []int{1, 2, 3}, limit: 0, expected: []int{1, 2, 3}},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			shown, more := Head(tc.items, tc.limit)
			require.Equal(t, tc.expected, shown)
			require.Equal(t, tc.expectedMore, more)
		})
	}
}

func TestLogReporter(t *testing.T) {
	var sb strings.Builder
	r := LogReporter{Logger: zerolog.New(&sb)}
	r.Report(ChangedCell{
		Identity: KeyIdentity("1"),
		Column:   "status",
		OldValue: "Pending",
		NewValue: "Lunas",
	})
	r.Report(AddedRow{Identity: PositionIdentity(3)})
	r.Report(ValidationError{Row: 4, Column: "Umur", Value: int64(70), Rule: "number_range", Message: "value greater than 65: 70"})
	r.Report(Warning{Kind: WarningUnknownColumn, Column: "Foo", Message: "column not found, skipping"})
	r.Report(StatusReport{Info: "done"})
	require.Equal(
		t,
		`{"level":"warn","key":"1","column":"status","old_value":"Pending","new_value":"Lunas","message":"changed cell"}
{"level":"warn","row":3,"message":"added row"}
{"level":"warn","row":4,"column":"Umur","rule":"number_range","value":"70","message":"value greater than 65: 70"}
{"level":"warn","kind":"unknown_column","column":"Foo","message":"column not found, skipping"}
{"level":"info","message":"done"}
`,
		sb.String(),
	)
}

func TestMetricsReporter(t *testing.T) {
	added := testutil.ToFloat64(diffRecords.WithLabelValues("added"))
	changed := testutil.ToFloat64(diffRecords.WithLabelValues("changed"))
	unique := testutil.ToFloat64(validationErrors.WithLabelValues("unique"))

	var r Reporter = CombinedReporter{Reporters: []Reporter{MetricsReporter{}}}
	ReportDiff(r, DiffReport{
		Added:   []AddedRow{{Identity: PositionIdentity(1)}, {Identity: PositionIdentity(2)}},
		Changed: []ChangedCell{{Identity: PositionIdentity(1)}},
	})
	ReportValidation(r, ValidationReport{
		TotalRows: 3,
		Errors:    []ValidationError{{Row: 4, Rule: "unique"}},
	})
	r.Close()

	require.Equal(t, added+2, testutil.ToFloat64(diffRecords.WithLabelValues("added")))
	require.Equal(t, changed+1, testutil.ToFloat64(diffRecords.WithLabelValues("changed")))
	require.Equal(t, unique+1, testutil.ToFloat64(validationErrors.WithLabelValues("unique")))
}

func TestWriteDiff(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		var sb strings.Builder
		require.NoError(t, WriteDiff(&sb, DiffReport{KeyColumn: "id"}, DefaultConsoleLimits()))
		require.Contains(t, sb.String(), "DIFF REPORT")
		require.Contains(t, sb.String(), "Both tables are identical.")
	})

	t.Run("truncated", func(t *testing.T) {
		r := DiffReport{KeyColumn: "id"}
		for i := 0; i < 5; i++ {
			r.Changed = append(r.Changed, ChangedCell{
				Identity: KeyIdentity(sheet.Stringify(i)),
				Column:   "status",
				OldValue: "Pending",
				NewValue: "Lunas",
			})
			r.Added = append(r.Added, AddedRow{Identity: KeyIdentity(sheet.Stringify(i + 10))})
		}
		var sb strings.Builder
		require.NoError(t, WriteDiff(&sb, r, ConsoleLimits{Changed: 2, Added: 3, Deleted: 3}))
		out := sb.String()
		require.Contains(t, out, "--- CHANGED (5) ---")
		require.Contains(t, out, "... and 3 more changes")
		require.Contains(t, out, "--- ADDED ROWS (5) ---")
		require.Contains(t, out, "[id=10]")
		require.NotContains(t, out, "[id=13]")
		require.Contains(t, out, "... and 2 more rows")
		require.NotContains(t, out, "DELETED ROWS")
	})
}

func TestWriteValidation(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		var sb strings.Builder
		require.NoError(t, WriteValidation(&sb, ValidationReport{TotalRows: 4}, DefaultConsoleLimits()))
		require.Contains(t, sb.String(), "All data is valid.")
	})

	t.Run("errors", func(t *testing.T) {
		r := ValidationReport{
			TotalRows: 3,
			Errors: []ValidationError{
				{Row: 2, Column: "Umur", Rule: "number_range", Message: "value less than 17: 15"},
				{Row: 4, Column: "Umur", Rule: "number_range", Message: "value greater than 65: 70"},
			},
		}
		var sb strings.Builder
		require.NoError(t, WriteValidation(&sb, r, ConsoleLimits{Errors: 1}))
		out := sb.String()
		require.Contains(t, out, "--- ERRORS (2) ---")
		require.Contains(t, out, "value less than 17: 15")
		require.NotContains(t, out, "value greater than 65: 70")
		require.Contains(t, out, "... and 1 more errors")
	})
}
