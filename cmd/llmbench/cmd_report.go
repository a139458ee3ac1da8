package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/llmbench/internal/compare"
	"github.com/user/llmbench/internal/report"
)

var reportOpts struct {
	out   string
	title string
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportOpts.out, "out", "", "write the report to a file instead of stdout")
	reportCmd.Flags().StringVar(&reportOpts.title, "title", "Model Comparison Report", "report title")
}

var reportCmd = &cobra.Command{
	Use:   "report <results.json>...",
	Short: "Build a markdown comparison report from saved results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var results []*compare.Result
		for _, path := range args {
			rs, err := report.LoadResults(path)
			if err != nil {
				return err
			}
			results = append(results, rs...)
		}

		var w io.Writer = cmd.OutOrStdout()
		if reportOpts.out != "" {
			f, err := os.Create(reportOpts.out)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			defer f.Close()
			w = f
		}
		if err := report.ComparisonReport(w, reportOpts.title, results); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if reportOpts.out != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s (%d results)\n", reportOpts.out, len(results))
		}
		return nil
	},
}
