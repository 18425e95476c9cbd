// Package validate checks the columns of a table against a set of rules.
package validate

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/sheet"
)

// ErrNoRules is returned when validation is requested without any rules.
var ErrNoRules = errors.New("no validation rules configured")

type Opt func(*opts)

type opts struct {
	registry *Registry
}

// WithRegistry evaluates rules with the given registry instead of the
// builtin rules.
func WithRegistry(r *Registry) Opt {
	return func(o *opts) {
		o.registry = r
	}
}

// Validate applies rules to the table. Columns are visited in rule set order
// and rules in the order given for each column. Violations are returned in
// that order. Invalid rule parameters abort validation.
func Validate(t *sheet.Table, rules RuleSet, inOpts ...Opt) (report.ValidationReport, error) {
	o := opts{}
	for _, applyOpt := range inOpts {
		applyOpt(&o)
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}
	if len(rules) == 0 {
		return report.ValidationReport{}, ErrNoRules
	}

	ret := report.ValidationReport{TotalRows: t.Len()}
	for _, cr := range rules {
		if !t.HasColumn(cr.Column) {
			ret.Warnings = append(ret.Warnings, report.Warning{
				Kind:    report.WarningUnknownColumn,
				Column:  cr.Column,
				Message: fmt.Sprintf("column %q not found in %s, skipped", cr.Column, t.Name()),
			})
			continue
		}
		col := Column{Name: cr.Column, Values: t.Column(cr.Column)}
		for _, rule := range cr.Rules {
			name, eval, ok := o.registry.Lookup(rule.Kind)
			if !ok {
				ret.Warnings = append(ret.Warnings, report.Warning{
					Kind:    report.WarningUnknownRule,
					Column:  cr.Column,
					Message: fmt.Sprintf("unknown rule %q for column %q, skipped", rule.Kind, cr.Column),
				})
				continue
			}
			errs, err := eval(col, rule.Params)
			if err != nil {
				return report.ValidationReport{}, errors.Wrapf(err, "rule %s on column %q", rule.Kind, cr.Column)
			}
			for i := range errs {
				if errs[i].Rule == "" {
					errs[i].Rule = name
				}
			}
			ret.Errors = append(ret.Errors, errs...)
		}
	}
	return ret, nil
}
