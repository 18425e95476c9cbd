package cmdutil

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tabcheck/tabcheck/blobstore"
	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/sheet"
	"github.com/tabcheck/tabcheck/sheetio"
)

// Run holds the state shared by one invocation of a command.
type Run struct {
	ID       string
	Logger   zerolog.Logger
	Reporter report.CombinedReporter

	stopMetrics func()
}

// StartRun sets up logging, reporting and the metrics endpoint for a
// command. Close must be called when the command completes.
func StartRun(command string) (*Run, error) {
	logger, err := Logger()
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	logger = logger.With().Str("run_id", id).Str("command", command).Logger()
	return &Run{
		ID:     id,
		Logger: logger,
		Reporter: report.CombinedReporter{
			Reporters: []report.Reporter{
				report.LogReporter{Logger: logger},
				report.MetricsReporter{},
			},
		},
		stopMetrics: RunMetricsServer(logger),
	}, nil
}

func (r *Run) Close() {
	r.Reporter.Close()
	r.stopMetrics()
}

// LoadTable loads an input, retrying reads as configured by flags.
func (r *Run) LoadTable(ctx context.Context, spec sheetio.Spec, name string) (*sheet.Table, error) {
	t, err := sheetio.Load(ctx, r.Logger, spec, name, LoadRetrySettings())
	if err != nil {
		return nil, errors.Wrapf(err, "error loading %s", name)
	}
	r.Logger.Info().
		Str("table", name).
		Str("location", spec.Location).
		Int("rows", t.Len()).
		Strs("columns", t.Columns()).
		Msgf("loaded table")
	return t, nil
}

// WriteOutput writes a report to a local path or a bucket. If write fails,
// nothing is left at the location.
func (r *Run) WriteOutput(ctx context.Context, location string, write func(w io.Writer) error) error {
	w, err := blobstore.Create(ctx, r.Logger, location)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		return errors.CombineErrors(errors.Wrapf(err, "error writing %s", location), w.Abort(err))
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "error writing %s", location)
	}
	r.Reporter.Report(report.StatusReport{Info: "report written to " + location})
	return nil
}
