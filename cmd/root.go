package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tabcheck/tabcheck/cmd/diff"
	"github.com/tabcheck/tabcheck/cmd/validate"
)

var rootCmd = &cobra.Command{
	Use:   "tabcheck",
	Short: "Compare and validate tabular data",
	Long:  `tabcheck compares two versions of a table and validates tables against per-column rules. Tables can be CSV files, XLSX workbooks or database queries.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(diff.Command())
	rootCmd.AddCommand(validate.Command())
}
