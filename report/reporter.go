package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/tabcheck/tabcheck/sheet"
)

type Reporter interface {
	Report(obj ReportableObject)
	Close()
}

type CombinedReporter struct {
	Reporters []Reporter
}

func (c CombinedReporter) Report(obj ReportableObject) {
	for _, r := range c.Reporters {
		r.Report(obj)
	}
}

func (c CombinedReporter) Close() {
	for _, r := range c.Reporters {
		r.Close()
	}
}

// ReportDiff feeds every finding of a diff report to the reporter, followed
// by a summary status.
func ReportDiff(r Reporter, rep DiffReport) {
	for _, w := range rep.Warnings {
		r.Report(w)
	}
	for _, item := range rep.Items() {
		r.Report(item)
	}
	s := rep.Summary()
	r.Report(StatusReport{
		Info: fmt.Sprintf("diff complete: added: %d, deleted: %d, changed: %d", s.Added, s.Deleted, s.Changed),
	})
}

// ReportValidation feeds every finding of a validation report to the
// reporter, followed by a summary status.
func ReportValidation(r Reporter, rep ValidationReport) {
	for _, w := range rep.Warnings {
		r.Report(w)
	}
	for _, e := range rep.Errors {
		r.Report(e)
	}
	s := rep.Summary()
	r.Report(StatusReport{
		Info: fmt.Sprintf(
			"validation complete: rows: %d, valid: %d, error rows: %d, issues: %d",
			s.TotalRows, s.ValidRows, s.ErrorRows, s.Issues,
		),
	})
}

// LogReporter reports to `zerolog`.
type LogReporter struct {
	zerolog.Logger
}

func withIdentity(e *zerolog.Event, id Identity) *zerolog.Event {
	if id.IsPositional() {
		return e.Int("row", id.Position)
	}
	return e.Str("key", id.Key)
}

func (l LogReporter) Report(obj ReportableObject) {
	switch obj := obj.(type) {
	case AddedRow:
		withIdentity(l.Warn(), obj.Identity).
			Msgf("added row")
	case DeletedRow:
		withIdentity(l.Warn(), obj.Identity).
			Msgf("deleted row")
	case ChangedCell:
		withIdentity(l.Warn(), obj.Identity).
			Str("column", obj.Column).
			Str("old_value", sheet.Stringify(obj.OldValue)).
			Str("new_value", sheet.Stringify(obj.NewValue)).
			Msgf("changed cell")
	case ValidationError:
		l.Warn().
			Int("row", obj.Row).
			Str("column", obj.Column).
			Str("rule", obj.Rule).
			Str("value", sheet.Stringify(obj.Value)).
			Msg(obj.Message)
	case Warning:
		e := l.Warn().Str("kind", string(obj.Kind))
		if obj.Column != "" {
			e = e.Str("column", obj.Column)
		}
		e.Msg(obj.Message)
	case StatusReport:
		l.Info().Msg(obj.Info)
	default:
		l.Error().
			Str("type", fmt.Sprintf("%T", obj)).
			Msgf("unknown object type")
	}
}

func (l LogReporter) Close() {
}

var (
	diffRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tabcheck",
		Subsystem: "diff",
		Name:      "records_total",
		Help:      "Number of diff records found, by kind.",
	}, []string{"kind"})
	validationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tabcheck",
		Subsystem: "validate",
		Name:      "errors_total",
		Help:      "Number of validation errors found, by rule.",
	}, []string{"rule"})
	warnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tabcheck",
		Name:      "warnings_total",
		Help:      "Number of warnings raised, by kind.",
	}, []string{"kind"})
)

// MetricsReporter counts findings in prometheus.
type MetricsReporter struct{}

func (MetricsReporter) Report(obj ReportableObject) {
	switch obj := obj.(type) {
	case AddedRow:
		diffRecords.WithLabelValues("added").Inc()
	case DeletedRow:
		diffRecords.WithLabelValues("deleted").Inc()
	case ChangedCell:
		diffRecords.WithLabelValues("changed").Inc()
	case ValidationError:
		validationErrors.WithLabelValues(obj.Rule).Inc()
	case Warning:
		warnings.WithLabelValues(string(obj.Kind)).Inc()
	}
}

func (MetricsReporter) Close() {
}
