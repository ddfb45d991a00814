package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys. Environment variables use the BENCHPLOT_ prefix with
// dots replaced by underscores, e.g. BENCHPLOT_PLOTS_FORMAT.
const (
	KeyVerbose      = "verbose"
	KeyLogFile      = "log_file"
	KeyMetricsAddr  = "metrics.addr"
	KeyMetricsFile  = "metrics.file"
	KeyCMakeBinary  = "cmake.binary"
	KeyCMakeVerbose = "cmake.verbose"

	KeyProjectTarget    = "project.target"
	KeyProjectPath      = "project.path"
	KeyProjectBuildPath = "project.build_path"
	KeyProjectOptions   = "project.options"
	KeyProcessTimeout   = "process.timeout"

	KeyReportDir = "report.dir"

	KeyPlotsDir         = "plots.dir"
	KeyPlotsFormat      = "plots.format"
	KeyPlotsWidth       = "plots.width"
	KeyPlotsHeight      = "plots.height"
	KeyPlotsConcurrency = "plots.concurrency"

	KeyReduceStatistic     = "reduce.statistic"
	KeyReduceStrict        = "reduce.strict"
	KeyReduceSkipMalformed = "reduce.skip_malformed"
	KeySeriesPairing       = "series.pairing"

	KeyIgnoreStyle   = "ignore.style"
	KeyIgnoreOffset  = "ignore.offset"
	KeyIgnoreAligned = "ignore.aligned"
	KeyIgnoreSize    = "ignore.size"

	KeyWatchDebounce = "watch.debounce"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "BENCHPLOT"

// Load initializes the configuration from file and environment variables.
// A missing config file is not an error; a present but unreadable one is.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault(KeyVerbose, false)
	viper.SetDefault(KeyLogFile, "")
	viper.SetDefault(KeyMetricsAddr, "")
	viper.SetDefault(KeyMetricsFile, "")
	viper.SetDefault(KeyCMakeBinary, "cmake")
	viper.SetDefault(KeyCMakeVerbose, false)

	viper.SetDefault(KeyProjectTarget, "")
	viper.SetDefault(KeyProjectPath, ".")
	viper.SetDefault(KeyProjectBuildPath, "build")
	viper.SetDefault(KeyProjectOptions, []string{})
	viper.SetDefault(KeyProcessTimeout, time.Duration(0))

	viper.SetDefault(KeyReportDir, ".")

	viper.SetDefault(KeyPlotsDir, "plots")
	viper.SetDefault(KeyPlotsFormat, "png")
	viper.SetDefault(KeyPlotsWidth, 10.0)
	viper.SetDefault(KeyPlotsHeight, 5.0)
	viper.SetDefault(KeyPlotsConcurrency, 4)

	viper.SetDefault(KeyReduceStatistic, "median")
	viper.SetDefault(KeyReduceStrict, false)
	viper.SetDefault(KeyReduceSkipMalformed, false)
	viper.SetDefault(KeySeriesPairing, "size")

	viper.SetDefault(KeyIgnoreStyle, []string{})
	viper.SetDefault(KeyIgnoreOffset, []string{})
	viper.SetDefault(KeyIgnoreAligned, []string{})
	viper.SetDefault(KeyIgnoreSize, []string{})

	viper.SetDefault(KeyWatchDebounce, 500*time.Millisecond)
}
