package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"benchplot/internal/config"
	"benchplot/internal/metrics"
	"benchplot/internal/telemetry"
)

var (
	exit = os.Exit
	now  = time.Now

	cfgFile    string
	appMetrics = metrics.NewMetrics()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "benchplot",
	Short: "Build, run and plot native alignment benchmarks",
	Long: `benchplot drives a CMake benchmark target and turns its CSV report into
per-operator charts: duration curves per processing style, offset and
alignment, and the unaligned minus aligned difference.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushMetrics()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'benchplot --help' for usage.")
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also append logs to this file")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write run metrics to this node exporter textfile")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"verbose":      config.KeyVerbose,
		"log-file":     config.KeyLogFile,
		"metrics-file": config.KeyMetricsFile,
	})

	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}

	// Validate configuration values
	if err := config.ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}

	telemetry.InitLogger(viper.GetBool(config.KeyVerbose), viper.GetString(config.KeyLogFile))
}

// bindFlags binds flag names to config keys. Commands bind in PreRunE so that
// several commands can share a key.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if f := flags.Lookup(name); f != nil {
			viper.BindPFlag(key, f)
		}
	}
}

// flushMetrics writes the metrics textfile when one is configured.
func flushMetrics() {
	path := viper.GetString(config.KeyMetricsFile)
	if path == "" {
		return
	}
	appMetrics.MarkRun(now())
	if err := appMetrics.WriteTextfile(path); err != nil {
		telemetry.LogError("Failed to write metrics", err, "path", path)
	}
}

// fatal reports err and terminates the process with status 1.
func fatal(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	flushMetrics()
	exit(1)
}
