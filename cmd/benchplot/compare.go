package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"benchplot/internal/benchmark"
	"benchplot/internal/config"
	"benchplot/internal/ui"
)

var (
	compareThreshold float64
	compareAlpha     float64
	compareFail      bool
	compareNoColor   bool
	compareMarkdown  bool
	compareRaw       bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <baseline> <current>",
	Short: "Compare two benchmark reports",
	Long: `Joins two reports on operator, style, offset, alignment and size and prints
the change of the reduced duration. A change counts as significant when the
Mann-Whitney U test over the raw samples rejects equality at --alpha.

With --fail-on-regression the command exits with status 1 when any
significant slowdown exceeds --threshold percent.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		bindReduceFlags(cmd.Flags())
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if compareNoColor {
			ui.DisableColor()
		}
		filter, err := config.IgnoreFilter()
		if err != nil {
			return err
		}
		reducer, err := config.Reducer()
		if err != nil {
			return err
		}

		baseline, err := readReport(args[0])
		if err != nil {
			return err
		}
		current, err := readReport(args[1])
		if err != nil {
			return err
		}

		rows, err := benchmark.Compare(filterRecords(baseline, filter), filterRecords(current, filter), reducer, compareAlpha)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("%s and %s have no benchmark group in common", args[0], args[1])
		}

		title := fmt.Sprintf("%s -> %s", args[0], args[1])
		if compareMarkdown {
			md := ui.CompareMarkdown(title, rows, compareThreshold)
			if !compareRaw {
				if md, err = ui.RenderMarkdown(md, 100, !compareNoColor); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), md)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), ui.CompareTable(title, rows, compareThreshold))
		}

		var regressions int
		for _, c := range rows {
			if c.Regressed(compareThreshold) {
				regressions++
			}
		}
		if regressions > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%d significant regression(s) above %.1f%%\n", regressions, compareThreshold)
			if compareFail {
				flushMetrics()
				exit(1)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().Float64Var(&compareThreshold, "threshold", 10, "Slowdown in percent that counts as a regression")
	compareCmd.Flags().Float64Var(&compareAlpha, "alpha", benchmark.DefaultAlpha, "Significance level")
	compareCmd.Flags().BoolVar(&compareFail, "fail-on-regression", false, "Exit with status 1 on a regression")
	compareCmd.Flags().BoolVar(&compareNoColor, "no-color", false, "Disable colored output")
	compareCmd.Flags().BoolVar(&compareMarkdown, "markdown", false, "Print a markdown report instead of a table")
	compareCmd.Flags().BoolVar(&compareRaw, "raw", false, "With --markdown, print the markdown source unrendered")
	addReduceFlags(compareCmd.Flags())
}

func filterRecords(records []benchmark.SampleRecord, filter *benchmark.IgnoreFilter) []benchmark.SampleRecord {
	if filter.Empty() {
		return records
	}
	out := make([]benchmark.SampleRecord, 0, len(records))
	for _, r := range records {
		if !filter.Excludes(r) {
			out = append(out, r)
		}
	}
	return out
}
