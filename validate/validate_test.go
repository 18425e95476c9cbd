package validate

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/sheet"
	"github.com/tabcheck/tabcheck/testutils"
	"gopkg.in/yaml.v3"
)

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata/validate", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "validate":
				sections := testutils.ParseSections(t, d.Input)
				tbl := testutils.ParseTable(t, "data", sections["data"])
				var rules RuleSet
				require.NoError(t, yaml.Unmarshal([]byte(sections["rules"]), &rules))
				rep, err := Validate(tbl, rules)
				if err != nil {
					return fmt.Sprintf("error: %s\n", err.Error())
				}
				return formatReport(rep)
			default:
				t.Fatalf("unknown command: %s", d.Cmd)
			}
			return ""
		})
	})
}

func formatReport(rep report.ValidationReport) string {
	var sb strings.Builder
	for _, w := range rep.Warnings {
		sb.WriteString(fmt.Sprintf("warning %s: %s\n", w.Kind, w.Message))
	}
	for _, e := range rep.Errors {
		sb.WriteString(fmt.Sprintf("row %d %s %s: %s\n", e.Row, e.Column, e.Rule, e.Message))
	}
	s := rep.Summary()
	sb.WriteString(fmt.Sprintf(
		"summary: rows=%d valid=%d error_rows=%d issues=%d\n", s.TotalRows, s.ValidRows, s.ErrorRows, s.Issues,
	))
	return sb.String()
}

func nanValue() sheet.Value {
	return math.NaN()
}

func intColumn(name string, vals ...int64) *sheet.Table {
	rows := make([]sheet.Row, len(vals))
	for i, v := range vals {
		rows[i] = sheet.Row{name: v}
	}
	return sheet.MustNew("data", []string{name}, rows...)
}

func TestValidateAgeRange(t *testing.T) {
	rep, err := Validate(intColumn("Umur", 15, 30, 70), RuleSet{
		{Column: "Umur", Rules: []RuleSpec{{Kind: RuleNumberRange, Params: Params{"min": 17, "max": 65}}}},
	})
	require.NoError(t, err)
	require.Equal(t, []report.ValidationError{
		{Row: 2, Column: "Umur", Value: int64(15), Rule: RuleNumberRange, Message: "value less than 17: 15"},
		{Row: 4, Column: "Umur", Value: int64(70), Rule: RuleNumberRange, Message: "value greater than 65: 70"},
	}, rep.Errors)
	require.Equal(t, report.ValidationSummary{TotalRows: 3, ValidRows: 1, ErrorRows: 2, Issues: 2}, rep.Summary())
}

func TestValidateUnique(t *testing.T) {
	tbl := sheet.MustNew("data", []string{"ID"},
		sheet.Row{"ID": "A"},
		sheet.Row{"ID": "B"},
		sheet.Row{"ID": "A"},
	)
	rep, err := Validate(tbl, RuleSet{{Column: "ID", Rules: []RuleSpec{{Kind: RuleUnique}}}})
	require.NoError(t, err)
	require.Len(t, rep.Errors, 1)
	require.Equal(t, 4, rep.Errors[0].Row)
	require.Contains(t, rep.Errors[0].Message, "row 2")
}

func TestValidateRequiredCompleteness(t *testing.T) {
	tbl := sheet.MustNew("data", []string{"Nama", "x"},
		sheet.Row{"Nama": "Andi"},
		sheet.Row{"x": "1"},
		sheet.Row{"Nama": "   "},
		sheet.Row{"Nama": ""},
		sheet.Row{"Nama": nanValue()},
	)
	rep, err := Validate(tbl, RuleSet{{Column: "Nama", Rules: []RuleSpec{{Kind: RuleRequired}}}})
	require.NoError(t, err)
	require.Equal(t, []int{3, 4, 5, 6}, rep.ErrorRows())
	for _, e := range rep.Errors {
		require.Equal(t, "Nama must not be empty", e.Message)
	}
}

func TestValidateSkipsBlanks(t *testing.T) {
	tbl := sheet.MustNew("data", []string{"v"},
		sheet.Row{},
		sheet.Row{"v": " "},
	)
	for _, kind := range []string{RuleEmail, RulePhone, RuleDateRange, RuleNumberRange, RuleInList, RuleUnique} {
		t.Run(kind, func(t *testing.T) {
			rep, err := Validate(tbl, RuleSet{{Column: "v", Rules: []RuleSpec{{Kind: kind}}}})
			require.NoError(t, err)
			require.Empty(t, rep.Errors)
		})
	}
}

func TestValidateErrors(t *testing.T) {
	tbl := sheet.MustNew("data", []string{"v"}, sheet.Row{"v": "x"})
	for _, tc := range []struct {
		desc        string
		rules       RuleSet
		expectedErr string
	}{
		{
			desc:        "no rules",
			expectedErr: "no validation rules configured",
		},
		{
			desc:        "bad pattern",
			rules:       RuleSet{{Column: "v", Rules: []RuleSpec{{Kind: RuleRegex, Params: Params{"pattern": "("}}}}},
			expectedErr: `rule regex on column "v": invalid pattern "("`,
		},
		{
			desc:        "bad max",
			rules:       RuleSet{{Column: "v", Rules: []RuleSpec{{Kind: RuleNumberRange, Params: Params{"max": true}}}}},
			expectedErr: `rule numberRange on column "v": max must be a number, got true`,
		},
		{
			desc:        "bad min digits",
			rules:       RuleSet{{Column: "v", Rules: []RuleSpec{{Kind: RulePhone, Params: Params{"minDigits": 2.5}}}}},
			expectedErr: `rule phone on column "v": minDigits must be an integer, got 2.5`,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := Validate(tbl, tc.rules)
			require.ErrorContains(t, err, tc.expectedErr)
		})
	}

	_, err := Validate(tbl, nil)
	require.True(t, errors.Is(err, ErrNoRules))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("nonEmpty", evalRequired, "non_empty")
	require.Equal(t, []string{"nonEmpty"}, r.Names())

	name, _, ok := r.Lookup("non_empty")
	require.True(t, ok)
	require.Equal(t, "nonEmpty", name)
	_, _, ok = r.Lookup(RuleRequired)
	require.False(t, ok)

	require.PanicsWithValue(t, "rule already registered: non_empty", func() {
		r.Register("other", evalRequired, "non_empty")
	})

	require.Equal(
		t,
		[]string{RuleDateRange, RuleEmail, RuleInList, RuleNumberRange, RulePhone, RuleRegex, RuleRequired, RuleUnique},
		DefaultRegistry().Names(),
	)
}

func TestValidateWithRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("upper", func(col Column, _ Params) ([]report.ValidationError, error) {
		var ret []report.ValidationError
		for i, v := range col.Values {
			if s := sheet.Stringify(v); s != strings.ToUpper(s) {
				ret = append(ret, report.ValidationError{
					Row:     report.SourceRow(i),
					Column:  col.Name,
					Value:   v,
					Message: "not upper case: " + s,
				})
			}
		}
		return ret, nil
	})
	tbl := sheet.MustNew("data", []string{"v"}, sheet.Row{"v": "OK"}, sheet.Row{"v": "no"})
	rep, err := Validate(tbl, RuleSet{{Column: "v", Rules: []RuleSpec{{Kind: "upper"}, {Kind: RuleRequired}}}}, WithRegistry(r))
	require.NoError(t, err)
	require.Equal(t, []report.ValidationError{
		{Row: 3, Column: "v", Value: "no", Rule: "upper", Message: "not upper case: no"},
	}, rep.Errors)
	require.Equal(t, []report.Warning{{
		Kind:    report.WarningUnknownRule,
		Column:  "v",
		Message: `unknown rule "required" for column "v", skipped`,
	}}, rep.Warnings)
}

func TestRuleSetYAML(t *testing.T) {
	const doc = `
Umur:
  - type: number_range
    min: 17
Nama:
  - type: required
  - type: regex
    pattern: "[A-Z]"
Alamat: []
`
	var rules RuleSet
	require.NoError(t, yaml.Unmarshal([]byte(doc), &rules))
	require.Equal(t, []string{"Umur", "Nama", "Alamat"}, rules.Columns())
	require.Equal(t, RuleSpec{Kind: "number_range", Params: Params{"min": 17}}, rules[0].Rules[0])
	require.Equal(t, RuleSpec{Kind: "required", Params: Params{}}, rules[1].Rules[0])
	require.Equal(t, RuleSpec{Kind: "regex", Params: Params{"pattern": "[A-Z]"}}, rules[1].Rules[1])
	require.Empty(t, rules[2].Rules)

	err := yaml.Unmarshal([]byte("Umur:\n  - min: 17\n"), &rules)
	require.EqualError(t, err, "rules for column \"Umur\": line 2: rule is missing a type")

	err = yaml.Unmarshal([]byte("- Umur\n"), &rules)
	require.EqualError(t, err, "line 1: rules must be a mapping of column to rule list")
}
