package validate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/sheet"
)

// Column is the column a rule is evaluated against.
type Column struct {
	Name   string
	Values []sheet.Value
}

// Evaluator checks every value of a column against one rule. It returns the
// violations found in row order, or an error if params are invalid.
type Evaluator func(col Column, params Params) ([]report.ValidationError, error)

type registeredRule struct {
	name string
	eval Evaluator
}

// Registry maps rule kinds to their evaluators.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]registeredRule
	names []string
}

// NewRegistry returns a registry with no rules.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]registeredRule)}
}

// Register adds an evaluator under name and any aliases.
// Panics if any of them is already registered.
func (r *Registry) Register(name string, eval Evaluator, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, kind := range append([]string{name}, aliases...) {
		if _, exists := r.rules[kind]; exists {
			panic(fmt.Sprintf("rule already registered: %s", kind))
		}
		r.rules[kind] = registeredRule{name: name, eval: eval}
	}
	r.names = append(r.names, name)
	sort.Strings(r.names)
}

// Lookup returns the evaluator for a kind and the name it was registered
// under.
func (r *Registry) Lookup(kind string) (string, Evaluator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[kind]
	return rule.name, rule.eval, ok
}

// Names returns the registered rule names, without aliases, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// DefaultRegistry returns a new registry holding the builtin rules.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RuleRequired, evalRequired)
	r.Register(RuleEmail, evalEmail)
	r.Register(RulePhone, evalPhone)
	r.Register(RuleDateRange, evalDateRange, "date_range")
	r.Register(RuleNumberRange, evalNumberRange, "number_range")
	r.Register(RuleRegex, evalRegex)
	r.Register(RuleInList, evalInList, "in_list")
	r.Register(RuleUnique, evalUnique)
	return r
}
