package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"benchplot/internal/benchmark"
	"benchplot/internal/config"
	"benchplot/internal/telemetry"
	"benchplot/internal/ui"
)

var (
	summaryNoColor    bool
	summaryConfidence float64
)

var summaryCmd = &cobra.Command{
	Use:   "summary [report]",
	Short: "Print the reduced value of every benchmark group",
	Long: `Prints one row per record of a report: the reduced duration (trimmed median
by default), the sample count and a distribution-free confidence interval
over the raw samples. Without an argument the newest report in report.dir is
used.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		bindFlags(cmd.Flags(), map[string]string{"report-dir": config.KeyReportDir})
		bindReduceFlags(cmd.Flags())
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if summaryNoColor {
			ui.DisableColor()
		}
		report, err := resolveReport(args)
		if err != nil {
			return err
		}
		records, err := readReport(report)
		if err != nil {
			return err
		}
		filter, err := config.IgnoreFilter()
		if err != nil {
			return err
		}
		reducer, err := config.Reducer()
		if err != nil {
			return err
		}

		rows, err := benchmark.Summarize(records, filter, reducer, summaryConfidence)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.SummaryTable(report, rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().String("report-dir", ".", "Directory searched for the newest report")
	summaryCmd.Flags().BoolVar(&summaryNoColor, "no-color", false, "Disable colored output")
	summaryCmd.Flags().Float64Var(&summaryConfidence, "confidence", benchmark.DefaultConfidence, "Confidence level of the interval")
	addReduceFlags(summaryCmd.Flags())
}

// readReport parses a whole report file. With reduce.skip_malformed set,
// malformed lines are logged and skipped instead of failing the report.
func readReport(path string) ([]benchmark.SampleRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	if !viper.GetBool(config.KeyReduceSkipMalformed) {
		records, err := benchmark.ParseReport(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return records, nil
	}

	records, skipped, err := benchmark.ParseReportSkipMalformed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, pe := range skipped {
		telemetry.LogWarn("Skipping malformed record", "report", path, "line", pe.Line, "error", pe)
	}
	return records, nil
}
