package cmake

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"benchplot/internal/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stageRecord struct {
	stage string
	ok    bool
}

type fakeRecorder struct {
	stages []stageRecord
}

func (f *fakeRecorder) ObserveStage(stage string, d time.Duration, ok bool) {
	f.stages = append(f.stages, stageRecord{stage: stage, ok: ok})
}

// exitCodes returns a RunFunc answering configure, build and run with the
// given exit codes, in that order.
func exitCodes(codes map[string]int, output string) func(context.Context, process.Command) (*process.Result, error) {
	return func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		stage := StageRun
		if cmd.Name == "cmake" {
			stage = StageConfigure
			if len(cmd.Args) > 0 && cmd.Args[0] == "--build" {
				stage = StageBuild
			}
		}
		res := &process.Result{ExitCode: codes[stage]}
		if cmd.Capture {
			res.Stdout = []byte(output)
		}
		return res, nil
	}
}

func newTestProject(t *testing.T, runner process.Runner) (*Project, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	p := NewProject("preprocessing", t.TempDir(), "build", "CMAKE_BUILD_TYPE=Release")
	p.Runner = runner
	p.Out = &out
	return p, &out
}

func TestCompile_Success(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)

	mock := &process.MockRunner{}
	p, out := newTestProject(t, mock)

	defs := NewDefinitions()
	defs.Add("SIMD", "avx512")
	require.NoError(t, p.Compile(context.Background(), CompileOptions{Definitions: defs}))

	calls := mock.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "cmake", calls[0].Name)
	assert.Equal(t, []string{".", "-B", "build", "-D", "CMAKE_BUILD_TYPE=Release", "-D", "DEFINITIONS=SIMD=avx512;"}, calls[0].Args)
	assert.Equal(t, []string{"--build", "build", "--target", "preprocessing"}, calls[1].Args)

	assert.Contains(t, out.String(), "> CMake configuration successful")
	assert.Contains(t, out.String(), "> CMake build successful")

	assertSameDir(t, filepath.Join(p.ProjectPath, "build"), filepath.Dir(p.Executable()))
	assert.Equal(t, "preprocessing", filepath.Base(p.Executable()))
	assert.DirExists(t, filepath.Join(p.ProjectPath, "build"))

	// the working directory change is scoped to the call
	assertCwd(t, orig)
}

func TestCompile_ExplicitOptionsDoNotAliasDefaults(t *testing.T) {
	mock := &process.MockRunner{}
	p, _ := newTestProject(t, mock)

	require.NoError(t, p.Compile(context.Background(), CompileOptions{}))
	require.NoError(t, p.Compile(context.Background(), CompileOptions{}))
	assert.Equal(t, []string{"CMAKE_BUILD_TYPE=Release"}, p.Options)

	require.NoError(t, p.Compile(context.Background(), CompileOptions{Options: []string{"FOO=bar"}}))
	calls := mock.Calls()
	require.Len(t, calls, 6)
	assert.Equal(t, []string{".", "-B", "build", "-D", "CMAKE_BUILD_TYPE=Release", "-D", "DEFINITIONS="}, calls[2].Args)
	assert.Equal(t, []string{".", "-B", "build", "-D", "FOO=bar", "-D", "DEFINITIONS="}, calls[4].Args)
}

func TestCompile_ConfigureFailureStillBuilds(t *testing.T) {
	mock := &process.MockRunner{RunFunc: exitCodes(map[string]int{StageConfigure: 1}, "")}
	p, out := newTestProject(t, mock)

	require.NoError(t, p.Compile(context.Background(), CompileOptions{}))
	assert.Len(t, mock.Calls(), 2)
	assert.NotContains(t, out.String(), "configuration successful")
	assert.NotEmpty(t, p.Executable())
}

func TestCompile_BuildFailureIsFatal(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)

	rec := &fakeRecorder{}
	mock := &process.MockRunner{RunFunc: exitCodes(map[string]int{StageConfigure: 1, StageBuild: 2}, "")}
	p, out := newTestProject(t, mock)
	p.Recorder = rec

	err = p.Compile(context.Background(), CompileOptions{})
	require.Error(t, err)
	assert.True(t, IsFatal(err))

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageBuild, se.Stage)
	assert.Equal(t, 2, se.ExitCode)

	assert.Empty(t, p.Executable())
	assert.Contains(t, out.String(), "> CMake build failed (return code 2)")
	assertCwd(t, orig)

	assert.Equal(t, []stageRecord{{StageConfigure, false}, {StageBuild, false}}, rec.stages)
}

func TestCompile_FailedRebuildClearsExecutable(t *testing.T) {
	codes := map[string]int{}
	mock := &process.MockRunner{RunFunc: exitCodes(codes, "")}
	p, _ := newTestProject(t, mock)

	require.NoError(t, p.Compile(context.Background(), CompileOptions{}))
	require.NotEmpty(t, p.Executable())

	codes[StageBuild] = 1
	require.Error(t, p.Compile(context.Background(), CompileOptions{}))
	assert.Empty(t, p.Executable())
}

func TestCompile_StartFailure(t *testing.T) {
	boom := errors.New("cmake not found")
	mock := &process.MockRunner{RunFunc: func(ctx context.Context, cmd process.Command) (*process.Result, error) {
		return nil, boom
	}}
	p, _ := newTestProject(t, mock)

	err := p.Compile(context.Background(), CompileOptions{})
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, mock.Calls(), 1)
}

func TestCompile_VerboseEchoesCommands(t *testing.T) {
	mock := &process.MockRunner{RunFunc: exitCodes(nil, "-- Configuring done")}
	p, out := newTestProject(t, mock)
	p.Verbose = true

	require.NoError(t, p.Compile(context.Background(), CompileOptions{}))
	assert.Contains(t, out.String(), ">>CMake command: cmake . -B build -D CMAKE_BUILD_TYPE=Release -D DEFINITIONS=")
	assert.Contains(t, out.String(), ">>CMake command: cmake --build build --target preprocessing")
	assert.Contains(t, out.String(), "-- Configuring done")
}

func TestRun_BeforeBuild(t *testing.T) {
	mock := &process.MockRunner{}
	p, out := newTestProject(t, mock)

	res, err := p.Run(context.Background(), true)
	assert.ErrorIs(t, err, ErrNotBuilt)
	assert.False(t, IsFatal(err))
	assert.Empty(t, res)
	assert.Contains(t, out.String(), "Executable not set")
	assert.Empty(t, mock.Calls())
}

func TestRun_CapturesOutput(t *testing.T) {
	report := "select,scalar,4096,0,1,10,11,12\n"
	rec := &fakeRecorder{}
	mock := &process.MockRunner{RunFunc: exitCodes(nil, report)}
	p, _ := newTestProject(t, mock)
	p.Recorder = rec
	require.NoError(t, p.Compile(context.Background(), CompileOptions{}))

	got, err := p.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, report, got)

	calls := mock.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, p.Executable(), last.Name)
	assert.Empty(t, last.Args)
	assert.True(t, last.Capture)
	assert.Equal(t, stageRecord{StageRun, true}, rec.stages[len(rec.stages)-1])
}

func TestRun_FailureIsFatal(t *testing.T) {
	codes := map[string]int{}
	mock := &process.MockRunner{RunFunc: exitCodes(codes, "segfault soon")}
	p, out := newTestProject(t, mock)
	require.NoError(t, p.Compile(context.Background(), CompileOptions{}))

	codes[StageRun] = 4
	_, err := p.Run(context.Background(), true)
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Contains(t, out.String(), "segfault soon")
	assert.Contains(t, out.String(), "Error while running executable")
	assert.Contains(t, out.String(), "Return code: 4")
}

func TestRun_FailureWithoutCaptureOmitsOutput(t *testing.T) {
	codes := map[string]int{}
	mock := &process.MockRunner{RunFunc: exitCodes(codes, "hidden")}
	p, out := newTestProject(t, mock)
	require.NoError(t, p.Compile(context.Background(), CompileOptions{}))
	out.Reset()

	codes[StageRun] = 1
	_, err := p.Run(context.Background(), false)
	require.Error(t, err)
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "Return code: 1")
}
