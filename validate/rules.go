package validate

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// RuleSpec is a single rule applied to a column.
type RuleSpec struct {
	Kind   string
	Params Params
}

// ColumnRules lists the rules applied to one column, in order.
type ColumnRules struct {
	Column string
	Rules  []RuleSpec
}

// RuleSet is an ordered list of per-column rules.
type RuleSet []ColumnRules

// Columns returns the columns the rule set references, in order.
func (rs RuleSet) Columns() []string {
	ret := make([]string, len(rs))
	for i, cr := range rs {
		ret[i] = cr.Column
	}
	return ret
}

// UnmarshalYAML reads a rule spec written as a mapping with a "type" key,
// every other key being a parameter.
func (r *RuleSpec) UnmarshalYAML(node *yaml.Node) error {
	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return errors.Wrapf(err, "line %d: rule must be a mapping", node.Line)
	}
	kind, ok := m["type"].(string)
	if !ok || kind == "" {
		return errors.Newf("line %d: rule is missing a type", node.Line)
	}
	delete(m, "type")
	r.Kind = kind
	r.Params = m
	return nil
}

// UnmarshalYAML reads a mapping of column name to a list of rules, keeping
// the order the columns are written in.
func (rs *RuleSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Newf("line %d: rules must be a mapping of column to rule list", node.Line)
	}
	ret := make(RuleSet, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		cr := ColumnRules{Column: keyNode.Value}
		if err := valNode.Decode(&cr.Rules); err != nil {
			return errors.Wrapf(err, "rules for column %q", cr.Column)
		}
		ret = append(ret, cr)
	}
	*rs = ret
	return nil
}
