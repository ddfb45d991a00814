package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"benchplot/internal/benchmark"
	"benchplot/internal/config"
	"benchplot/internal/render"
	"benchplot/internal/series"
	"benchplot/internal/telemetry"
	"benchplot/internal/watch"
)

var plotWatch bool

var plotCmd = &cobra.Command{
	Use:   "plot [report]",
	Short: "Plot a benchmark report",
	Long: `Aggregates a benchmark report and writes two charts per operator into a
fresh timestamped directory under --out:

  <operator>_curve   one curve per style, offset and alignment
  <operator>_diff    unaligned minus aligned duration per style and offset

Without an argument the newest report in report.dir is used. With --watch
the charts are regenerated whenever the report changes.`,
	Example: `  benchplot plot
  benchplot plot benchmark_19_10_2026__10_00_00.csv --format html
  benchplot plot --ignore-style AVX --ignore-size 1KB --watch`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		bindFlags(cmd.Flags(), map[string]string{
			"out":          config.KeyPlotsDir,
			"format":       config.KeyPlotsFormat,
			"width":        config.KeyPlotsWidth,
			"height":       config.KeyPlotsHeight,
			"concurrency":  config.KeyPlotsConcurrency,
			"pairing":      config.KeySeriesPairing,
			"report-dir":   config.KeyReportDir,
			"debounce":     config.KeyWatchDebounce,
			"metrics-addr": config.KeyMetricsAddr,
		})
		bindReduceFlags(cmd.Flags())
		return nil
	},
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().String("out", "plots", "Base directory of the plot directories")
	plotCmd.Flags().String("format", "png", "Chart format: png or html")
	plotCmd.Flags().Float64("width", 10, fmt.Sprintf("Chart width in inches (html: %d px per inch)", render.PixelsPerInch))
	plotCmd.Flags().Float64("height", 5, fmt.Sprintf("Chart height in inches (html: %d px per inch)", render.PixelsPerInch))
	plotCmd.Flags().Int("concurrency", 4, "Operators rendered in parallel")
	plotCmd.Flags().String("pairing", "size", "Difference pairing: size or position")
	plotCmd.Flags().String("report-dir", ".", "Directory searched for the newest report")
	plotCmd.Flags().Duration("debounce", 0, "Quiet period before a watched change is plotted")
	plotCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while watching")
	plotCmd.Flags().BoolVarP(&plotWatch, "watch", "w", false, "Regenerate the charts whenever the report changes")
	addReduceFlags(plotCmd.Flags())
}

// addReduceFlags registers the flags shared by every command that reduces a
// report.
func addReduceFlags(flags *pflag.FlagSet) {
	flags.StringSlice("ignore-style", nil, "Drop records of these processing styles")
	flags.StringSlice("ignore-offset", nil, "Drop records at these offsets")
	flags.StringSlice("ignore-aligned", nil, "Drop aligned (1) or unaligned (0) records")
	flags.StringSlice("ignore-size", nil, "Drop records of these sizes (e.g. 4096, 4KB)")
	flags.String("statistic", "median", "Statistic of the trimmed samples: median or mean")
	flags.Bool("strict", false, "Reject records with fewer than 3 samples")
	flags.Bool("skip-malformed", false, "Skip malformed report lines instead of failing")
}

func bindReduceFlags(flags *pflag.FlagSet) {
	bindFlags(flags, map[string]string{
		"ignore-style":   config.KeyIgnoreStyle,
		"ignore-offset":  config.KeyIgnoreOffset,
		"ignore-aligned": config.KeyIgnoreAligned,
		"ignore-size":    config.KeyIgnoreSize,
		"statistic":      config.KeyReduceStatistic,
		"strict":         config.KeyReduceStrict,
		"skip-malformed": config.KeyReduceSkipMalformed,
	})
}

// plotJob holds everything resolved from configuration for one plot run.
type plotJob struct {
	aggregator  *benchmark.Aggregator
	pairing     series.Pairing
	renderer    render.Renderer
	outDir      string
	concurrency int
	out         io.Writer
}

func newPlotJob(cmd *cobra.Command) (*plotJob, error) {
	filter, err := config.IgnoreFilter()
	if err != nil {
		return nil, err
	}
	reducer, err := config.Reducer()
	if err != nil {
		return nil, err
	}
	pairing, err := config.Pairing()
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(
		viper.GetString(config.KeyPlotsFormat),
		viper.GetFloat64(config.KeyPlotsWidth),
		viper.GetFloat64(config.KeyPlotsHeight),
		appMetrics,
	)
	if err != nil {
		return nil, err
	}

	agg := benchmark.NewAggregator(filter)
	agg.Reducer = reducer
	agg.SkipMalformed = viper.GetBool(config.KeyReduceSkipMalformed)
	agg.Logger = slog.Default()

	return &plotJob{
		aggregator:  agg,
		pairing:     pairing,
		renderer:    renderer,
		outDir:      viper.GetString(config.KeyPlotsDir),
		concurrency: viper.GetInt(config.KeyPlotsConcurrency),
		out:         cmd.OutOrStdout(),
	}, nil
}

// run plots one report and returns the written chart paths.
func (j *plotJob) run(ctx context.Context, report string) ([]string, error) {
	g, err := j.aggregator.ProcessFile(report)
	if err != nil {
		return nil, err
	}
	stats := j.aggregator.Stats()
	appMetrics.ObserveRecords(stats.Reduced, stats.Filtered, stats.Malformed, g.Len())

	if len(g.Operators()) == 0 {
		return nil, fmt.Errorf("%s: no records left to plot", report)
	}

	ops, err := series.Build(g, j.pairing)
	if err != nil {
		var pe *series.PairingError
		if !errors.As(err, &pe) {
			return nil, err
		}
		for _, u := range pe.Unpaired {
			telemetry.LogWarn("Size has no counterpart, left out of the difference chart",
				"operator", u.Operator, "style", u.Style, "offset", u.Offset,
				"size", u.Size, "aligned", u.Aligned)
		}
	}

	dir, err := render.TimestampedDir(j.outDir, now())
	if err != nil {
		return nil, err
	}
	paths, err := render.RenderAll(ctx, j.renderer, ops, dir, j.concurrency)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		fmt.Fprintln(j.out, p)
	}
	return paths, nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	job, err := newPlotJob(cmd)
	if err != nil {
		return err
	}

	if plotWatch {
		return watchPlot(cmd, job, args)
	}

	report, err := resolveReport(args)
	if err != nil {
		return err
	}
	_, err = job.run(cmd.Context(), report)
	return err
}

// resolveReport returns the explicit report argument or the newest report in
// report.dir.
func resolveReport(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return benchmark.FindLatestReport(viper.GetString(config.KeyReportDir))
}

func isReportName(name string) bool {
	return strings.HasPrefix(name, "benchmark_") && strings.HasSuffix(name, ".csv")
}

func watchPlot(cmd *cobra.Command, job *plotJob, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := viper.GetString(config.KeyMetricsAddr); addr != "" {
		srv, err := telemetry.StartMetricsServer(addr, appMetrics.Handler())
		if err != nil {
			return err
		}
		defer srv.Shutdown(context.Background())
		telemetry.LogInfo("Serving metrics", "addr", srv.Addr())
	}

	w := &watch.Watcher{
		Debounce: viper.GetDuration(config.KeyWatchDebounce),
		Logger:   slog.Default(),
	}
	if len(args) > 0 {
		w.Path = args[0]
	} else {
		w.Path = viper.GetString(config.KeyReportDir)
		w.Match = isReportName
	}
	abs, err := filepath.Abs(w.Path)
	if err != nil {
		return err
	}
	w.Path = abs

	plotLatest := func(ctx context.Context) error {
		report, err := resolveReport(args)
		if err != nil {
			return err
		}
		_, err = job.run(ctx, report)
		return err
	}

	// Plot what is already there before waiting for changes.
	if err := plotLatest(ctx); err != nil && !errors.Is(err, benchmark.ErrNoReport) {
		telemetry.LogError("Initial plot failed", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", w.Path)
	return w.Run(ctx, plotLatest)
}
