// Package process wraps external process execution behind a small interface
// so the build pipeline can be exercised without spawning real tools.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a process outlives ExecRunner.Timeout.
var ErrTimeout = errors.New("process timed out")

// Command describes a single external invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Capture buffers stdout into Result.Stdout instead of streaming it.
	Capture bool
	// Stdout receives the output when Capture is false. Defaults to os.Stdout.
	Stdout io.Writer
}

// String returns the command line as it would be typed in a shell.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a finished process.
type Result struct {
	Stdout   []byte
	ExitCode int
}

// Success reports whether the process exited with status 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode == 0
}

// Output returns the captured stdout as text.
func (r *Result) Output() string {
	if r == nil {
		return ""
	}
	return string(r.Stdout)
}

// Runner executes commands synchronously.
//
// A non-zero exit status is not an error: it is reported through
// Result.ExitCode. Implementations return an error only when the process could
// not be started or was interrupted.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// execCommand allows tests to substitute the spawned binary.
var execCommand = exec.CommandContext

// ExecRunner implements Runner using os/exec.
type ExecRunner struct {
	// Timeout bounds a single invocation. Zero waits indefinitely.
	Timeout time.Duration
	// Stderr receives the child's standard error. Defaults to os.Stderr.
	Stderr io.Writer
}

// NewExecRunner returns an ExecRunner that waits indefinitely.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	if c.Name == "" {
		return nil, errors.New("process: empty command name")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := execCommand(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir

	var out bytes.Buffer
	switch {
	case c.Capture:
		cmd.Stdout = &out
	case c.Stdout != nil:
		cmd.Stdout = c.Stdout
	default:
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	res := &Result{Stdout: out.Bytes()}
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return res, fmt.Errorf("%s: %w after %s", c.Name, ErrTimeout, r.Timeout)
		}
		return res, fmt.Errorf("%s: %w", c.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return nil, fmt.Errorf("failed to start %s: %w", c.Name, err)
}
