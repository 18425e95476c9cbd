package diff

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/tabcheck/tabcheck/cmd/internal/cmdutil"
	"github.com/tabcheck/tabcheck/config"
	"github.com/tabcheck/tabcheck/diff"
	"github.com/tabcheck/tabcheck/report"
	"github.com/tabcheck/tabcheck/report/xlsxreport"
	"github.com/tabcheck/tabcheck/sheet"
	"github.com/tabcheck/tabcheck/sheetio"
	"golang.org/x/sync/errgroup"
)

func Command() *cobra.Command {
	var (
		diffKeyColumn string
		diffOutput    string
		diffSheet     string
		diffQueryOld  string
		diffQueryNew  string
		diffFilter    = diff.DefaultFilterConfig()
	)

	cmd := &cobra.Command{
		Use:   "diff [file_old] [file_new]",
		Short: "Compare two tables and report added, deleted and changed rows.",
		Long: `Diff compares an old and a new table, either CSV files, XLSX workbooks or database queries.
Rows are matched by a key column if one is given and by position otherwise.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDiff(cmdutil.ConfigPath())
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.FileOld = args[0]
			}
			if len(args) > 1 {
				cfg.FileNew = args[1]
			}
			flags := cmd.Flags()
			for flag, override := range map[string]struct {
				dst *string
				val string
			}{
				"key":           {&cfg.KeyColumn, diffKeyColumn},
				"output":        {&cfg.Output, diffOutput},
				"sheet":         {&cfg.Sheet, diffSheet},
				"query-old":     {&cfg.QueryOld, diffQueryOld},
				"query-new":     {&cfg.QueryNew, diffQueryNew},
				"column-filter": {&cfg.ColumnFilter, diffFilter.ColumnFilter},
			} {
				if flags.Changed(flag) {
					*override.dst = override.val
				}
			}
			if err := cfg.CheckInputs(); err != nil {
				return err
			}

			run, err := cmdutil.StartRun("diff")
			if err != nil {
				return err
			}
			defer run.Close()

			ctx := cmd.Context()
			var oldTable, newTable *sheet.Table
			g, gCtx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				oldTable, err = run.LoadTable(gCtx, sheetio.Spec{Location: cfg.FileOld, Sheet: cfg.Sheet, Query: cfg.QueryOld}, "old")
				return err
			})
			g.Go(func() error {
				var err error
				newTable, err = run.LoadTable(gCtx, sheetio.Spec{Location: cfg.FileNew, Sheet: cfg.Sheet, Query: cfg.QueryNew}, "new")
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			opts := []diff.Opt{diff.WithColumnFilter(diff.FilterConfig{ColumnFilter: cfg.ColumnFilter})}
			if cfg.KeyColumn != "" {
				opts = append(opts, diff.WithKeyColumn(cfg.KeyColumn))
			}
			run.Reporter.Report(report.StatusReport{Info: "comparing tables"})
			rep, err := diff.Diff(oldTable, newTable, opts...)
			if err != nil {
				return errors.Wrapf(err, "error comparing tables")
			}
			report.ReportDiff(run.Reporter, rep)
			if err := report.WriteDiff(cmd.OutOrStdout(), rep, report.DefaultConsoleLimits()); err != nil {
				return err
			}

			if cfg.Output == "" {
				return nil
			}
			return run.WriteOutput(ctx, cfg.Output, func(w io.Writer) error {
				return xlsxreport.WriteDiff(w, rep, oldTable, newTable, xlsxreport.Meta{
					RunID:       run.ID,
					GeneratedAt: time.Now(),
					Sources: []xlsxreport.Source{
						{Role: "Old", Location: cfg.FileOld},
						{Role: "New", Location: cfg.FileNew},
					},
				})
			})
		},
	}

	cmd.PersistentFlags().StringVarP(
		&diffKeyColumn,
		"key",
		"k",
		"",
		"column used to match rows; rows are matched by position if unset",
	)
	cmd.PersistentFlags().StringVarP(
		&diffOutput,
		"output",
		"o",
		"",
		"write an XLSX report to this path or bucket URL",
	)
	cmd.PersistentFlags().StringVar(
		&diffSheet,
		"sheet",
		"",
		"workbook sheet to read (defaults to the first sheet), or the table to read from a database",
	)
	cmd.PersistentFlags().StringVar(
		&diffQueryOld,
		"query-old",
		"",
		"query to run when the old input is a database",
	)
	cmd.PersistentFlags().StringVar(
		&diffQueryNew,
		"query-new",
		"",
		"query to run when the new input is a database",
	)
	cmd.PersistentFlags().StringVar(
		&diffFilter.ColumnFilter,
		"column-filter",
		diffFilter.ColumnFilter,
		"POSIX regexp filter for columns to compare",
	)
	cmdutil.RegisterConfigFlags(cmd)
	cmdutil.RegisterLoggerFlags(cmd)
	cmdutil.RegisterMetricsFlags(cmd)
	cmdutil.RegisterRetryFlags(cmd)
	return cmd
}
