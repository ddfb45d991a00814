// Package cmake configures, builds and runs a CMake target that produces the
// native benchmark binary.
package cmake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"benchplot/internal/process"
)

// Stage names used in errors, log records and metrics.
const (
	StageConfigure = "configure"
	StageBuild     = "build"
	StageRun       = "run"
)

// ErrNotBuilt is returned by Run when no build has succeeded yet.
var ErrNotBuilt = errors.New("executable not set")

// StageError reports a failed external step. Build and run failures leave
// nothing for the aggregation pipeline to work with, so callers treat a
// StageError as fatal.
type StageError struct {
	Stage    string
	ExitCode int
	Err      error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s step failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s step failed with return code %d", e.Stage, e.ExitCode)
}

func (e *StageError) Unwrap() error { return e.Err }

// IsFatal reports whether err should terminate the run.
func IsFatal(err error) bool {
	var se *StageError
	return errors.As(err, &se)
}

// StageRecorder observes the duration and outcome of each external step.
type StageRecorder interface {
	ObserveStage(stage string, d time.Duration, ok bool)
}

// CompileOptions is the per-invocation build configuration.
type CompileOptions struct {
	// Options are passed as -D arguments to the configure step. When empty the
	// project's default Options are used.
	Options     []string
	Definitions *Definitions
}

// Project is a CMake project with a single target of interest.
type Project struct {
	Target      string
	ProjectPath string
	BuildPath   string
	// Options are the default configure options.
	Options []string

	// CMake is the cmake binary. Defaults to "cmake".
	CMake string
	// Verbose echoes command lines and captured build output to Out.
	Verbose bool
	// RunDir is the working directory of the benchmark binary. Empty means the
	// caller's current directory.
	RunDir string

	Out      io.Writer
	Runner   process.Runner
	Logger   *slog.Logger
	Recorder StageRecorder

	executable string
}

// NewProject returns a Project that executes real processes.
func NewProject(target, projectPath, buildPath string, options ...string) *Project {
	return &Project{
		Target:      target,
		ProjectPath: projectPath,
		BuildPath:   buildPath,
		Options:     append([]string(nil), options...),
		CMake:       "cmake",
		Out:         os.Stdout,
		Runner:      process.NewExecRunner(),
	}
}

// Executable returns the absolute path of the built target, or "" when no
// build has succeeded.
func (p *Project) Executable() string {
	return p.executable
}

// Compile configures and builds the target inside ProjectPath. The working
// directory is restored before Compile returns.
//
// A failing configure step is reported but the build step is still attempted.
// A failing build step returns a *StageError and leaves Executable unset.
func (p *Project) Compile(ctx context.Context, opts CompileOptions) error {
	options := opts.Options
	if len(options) == 0 {
		options = p.Options
	}
	options = append(append([]string(nil), options...), opts.Definitions.String())

	p.executable = ""
	return WithDir(p.ProjectPath, func() error {
		return p.compile(ctx, options)
	})
}

func (p *Project) compile(ctx context.Context, options []string) error {
	if err := os.MkdirAll(p.BuildPath, 0o755); err != nil {
		return fmt.Errorf("failed to create build directory %s: %w", p.BuildPath, err)
	}

	args := []string{".", "-B", p.BuildPath}
	for _, opt := range options {
		args = append(args, "-D", opt)
	}
	configure := process.Command{Name: p.cmake(), Args: args, Capture: true}

	res, err := p.step(ctx, StageConfigure, configure)
	if err != nil {
		return &StageError{Stage: StageConfigure, ExitCode: -1, Err: err}
	}
	if res.Success() {
		fmt.Fprintln(p.out(), "> CMake configuration successful")
	} else {
		p.logger().Warn("cmake configure failed, attempting build anyway", "return_code", res.ExitCode)
	}

	build := process.Command{
		Name:    p.cmake(),
		Args:    []string{"--build", p.BuildPath, "--target", p.Target},
		Capture: true,
	}
	res, err = p.step(ctx, StageBuild, build)
	if err != nil {
		fmt.Fprintln(p.out(), "> CMake build failed")
		return &StageError{Stage: StageBuild, ExitCode: -1, Err: err}
	}
	if !res.Success() {
		fmt.Fprintf(p.out(), "> CMake build failed (return code %d)\n", res.ExitCode)
		return &StageError{Stage: StageBuild, ExitCode: res.ExitCode}
	}
	fmt.Fprintln(p.out(), "> CMake build successful")

	exe, err := filepath.Abs(filepath.Join(p.BuildPath, p.Target))
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}
	p.executable = exe
	p.logger().Debug("resolved executable", "path", exe)
	return nil
}

// step runs one build-system invocation, echoing it in verbose mode.
func (p *Project) step(ctx context.Context, stage string, cmd process.Command) (*process.Result, error) {
	if p.Verbose {
		fmt.Fprintln(p.out(), ">>CMake command: "+cmd.String())
	}
	p.logger().Debug("running build step", "stage", stage, "command", cmd.String())

	start := time.Now()
	res, err := p.runner().Run(ctx, cmd)
	p.observe(stage, time.Since(start), err == nil && res.Success())
	if err != nil {
		return nil, err
	}

	if p.Verbose {
		fmt.Fprintln(p.out(), res.Output())
	}
	return res, nil
}

// Run executes the built binary without arguments. With pipeOutput the
// binary's standard output is captured and returned.
//
// Run returns ErrNotBuilt when called before a successful Compile, and a
// *StageError when the binary exits with a non-zero status.
func (p *Project) Run(ctx context.Context, pipeOutput bool) (string, error) {
	if p.executable == "" {
		fmt.Fprintln(p.out(), "Executable not set")
		return "", ErrNotBuilt
	}

	cmd := process.Command{Name: p.executable, Dir: p.RunDir, Capture: pipeOutput, Stdout: p.out()}
	p.logger().Info("running benchmark", "executable", p.executable, "capture", pipeOutput)

	start := time.Now()
	res, err := p.runner().Run(ctx, cmd)
	p.observe(StageRun, time.Since(start), err == nil && res.Success())
	if err != nil {
		return "", &StageError{Stage: StageRun, ExitCode: -1, Err: err}
	}

	if !res.Success() {
		if pipeOutput {
			fmt.Fprintln(p.out(), res.Output())
		}
		fmt.Fprintln(p.out(), "Error while running executable")
		fmt.Fprintf(p.out(), "Return code: %d\n", res.ExitCode)
		return "", &StageError{Stage: StageRun, ExitCode: res.ExitCode}
	}
	return res.Output(), nil
}

func (p *Project) observe(stage string, d time.Duration, ok bool) {
	if p.Recorder != nil {
		p.Recorder.ObserveStage(stage, d, ok)
	}
}

func (p *Project) cmake() string {
	if p.CMake == "" {
		return "cmake"
	}
	return p.CMake
}

func (p *Project) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p *Project) runner() process.Runner {
	if p.Runner == nil {
		p.Runner = process.NewExecRunner()
	}
	return p.Runner
}

func (p *Project) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
