package validate

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/tabcheck/tabcheck/cmd/internal/cmdutil"
	"github.com/tabcheck/tabcheck/config"
	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/report/xlsxreport"
	"github.com/tabcheck/tabcheck/sheetio"
	"github.com/tabcheck/tabcheck/validate"
)

func Command() *cobra.Command {
	var (
		validateOutput string
		validateSheet  string
		validateQuery  string
	)

	cmd := &cobra.Command{
		Use:   "validate [input]",
		Short: "Check table columns against the rules in the config file.",
		Long: `Validate checks every column named in the config file's rules against those rules and reports
each violating cell along with its spreadsheet row number.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadValidate(cmdutil.ConfigPath())
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Input = args[0]
			}
			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.Output = validateOutput
			}
			if flags.Changed("sheet") {
				cfg.Sheet = validateSheet
			}
			if flags.Changed("query") {
				cfg.Query = validateQuery
			}
			if err := cfg.CheckInputs(); err != nil {
				return err
			}
			if len(cfg.Rules) == 0 {
				return errors.Wrapf(validate.ErrNoRules, "rules must be defined in %s", cmdutil.ConfigPath())
			}

			run, err := cmdutil.StartRun("validate")
			if err != nil {
				return err
			}
			defer run.Close()

			ctx := cmd.Context()
			t, err := run.LoadTable(ctx, sheetio.Spec{Location: cfg.Input, Sheet: cfg.Sheet, Query: cfg.Query}, "input")
			if err != nil {
				return err
			}

			run.Reporter.Report(report.StatusReport{Info: "validating table"})
			rep, err := validate.Validate(t, cfg.Rules)
			if err != nil {
				return errors.Wrapf(err, "error validating table")
			}
			report.ReportValidation(run.Reporter, rep)
			if err := report.WriteValidation(cmd.OutOrStdout(), rep, report.DefaultConsoleLimits()); err != nil {
				return err
			}

			if cfg.Output == "" {
				return nil
			}
			return run.WriteOutput(ctx, cfg.Output, func(w io.Writer) error {
				return xlsxreport.WriteValidation(w, rep, t, xlsxreport.Meta{
					RunID:       run.ID,
					GeneratedAt: time.Now(),
					Sources:     []xlsxreport.Source{{Role: "Input", Location: cfg.Input}},
				})
			})
		},
	}

	cmd.PersistentFlags().StringVarP(
		&validateOutput,
		"output",
		"o",
		"",
		"write an XLSX report to this path or bucket URL",
	)
	cmd.PersistentFlags().StringVar(
		&validateSheet,
		"sheet",
		"",
		"workbook sheet to read (defaults to the first sheet), or the table to read from a database",
	)
	cmd.PersistentFlags().StringVar(
		&validateQuery,
		"query",
		"",
		"query to run when the input is a database",
	)
	cmdutil.RegisterConfigFlags(cmd)
	cmdutil.RegisterLoggerFlags(cmd)
	cmdutil.RegisterMetricsFlags(cmd)
	cmdutil.RegisterRetryFlags(cmd)
	return cmd
}
