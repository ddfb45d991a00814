package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"benchplot/internal/cmake"
	"benchplot/internal/config"
	"benchplot/internal/process"
)

var (
	buildDefines []string
	buildOptions []string
	buildRun     bool
	buildReport  string
)

// newRunner allows mocking the process layer in tests.
var newRunner = func(timeout time.Duration) process.Runner {
	r := process.NewExecRunner()
	r.Timeout = timeout
	return r
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Configure and build the benchmark target with CMake",
	Long: `Configures the CMake project (cmake . -B <build-dir> -D ...) and builds the
benchmark target. With --run the resulting binary is executed; with --report
its standard output is captured into a report file.

A failed build or run terminates benchplot with exit status 1. A failed
configure step is reported and the build is attempted anyway.`,
	Example: `  benchplot build --target preprocessing --project ../.. -D VECTOR_WIDTH=512 --run`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		bindFlags(cmd.Flags(), map[string]string{
			"target":        config.KeyProjectTarget,
			"project":       config.KeyProjectPath,
			"build-dir":     config.KeyProjectBuildPath,
			"cmake":         config.KeyCMakeBinary,
			"verbose-build": config.KeyCMakeVerbose,
			"timeout":       config.KeyProcessTimeout,
			"run-dir":       config.KeyReportDir,
		})
		return nil
	},
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().String("target", "", "CMake target that produces the benchmark binary")
	buildCmd.Flags().String("project", ".", "CMake project directory")
	buildCmd.Flags().String("build-dir", "build", "Build directory, relative to the project")
	buildCmd.Flags().String("cmake", "cmake", "cmake binary")
	buildCmd.Flags().Bool("verbose-build", false, "Print cmake command lines and output")
	buildCmd.Flags().Duration("timeout", 0, "Bound every cmake and benchmark invocation (0 waits indefinitely)")
	buildCmd.Flags().String("run-dir", ".", "Working directory of the benchmark binary")
	buildCmd.Flags().StringArrayVarP(&buildDefines, "define", "D", nil, "Preprocessor definition NAME[=VALUE], repeatable")
	buildCmd.Flags().StringArrayVar(&buildOptions, "option", nil, "Configure option NAME=VALUE, replaces project.options, repeatable")
	buildCmd.Flags().BoolVar(&buildRun, "run", false, "Run the binary after a successful build")
	buildCmd.Flags().StringVar(&buildReport, "report", "", "Capture the binary's output into this report file (implies --run)")
}

func newProject(cmd *cobra.Command) (*cmake.Project, error) {
	target := viper.GetString(config.KeyProjectTarget)
	if target == "" {
		return nil, errors.New("no build target (set --target or project.target)")
	}

	p := cmake.NewProject(
		target,
		viper.GetString(config.KeyProjectPath),
		viper.GetString(config.KeyProjectBuildPath),
		viper.GetStringSlice(config.KeyProjectOptions)...,
	)
	p.CMake = viper.GetString(config.KeyCMakeBinary)
	p.Verbose = viper.GetBool(config.KeyCMakeVerbose)
	p.Out = cmd.OutOrStdout()
	p.Runner = newRunner(viper.GetDuration(config.KeyProcessTimeout))
	p.Recorder = appMetrics

	// The binary writes its report into its working directory, which must not
	// follow the scoped change into the project.
	runDir, err := filepath.Abs(viper.GetString(config.KeyReportDir))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve run directory: %w", err)
	}
	p.RunDir = runDir
	return p, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	project, err := newProject(cmd)
	if err != nil {
		return err
	}

	defs := cmake.NewDefinitions()
	for _, d := range buildDefines {
		name, value := cmake.ParseDefinition(d)
		if name == "" {
			return fmt.Errorf("invalid definition %q", d)
		}
		defs.Add(name, value)
	}

	ctx := cmd.Context()
	err = project.Compile(ctx, cmake.CompileOptions{Options: buildOptions, Definitions: defs})
	if err != nil {
		if cmake.IsFatal(err) {
			fatal(cmd, err)
			return nil
		}
		return err
	}

	if !buildRun && buildReport == "" {
		return nil
	}

	output, err := project.Run(ctx, buildReport != "")
	if err != nil {
		if cmake.IsFatal(err) {
			fatal(cmd, err)
			return nil
		}
		return err
	}

	if buildReport != "" {
		if err := writeReport(buildReport, output); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", buildReport)
	}
	return nil
}

func writeReport(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
