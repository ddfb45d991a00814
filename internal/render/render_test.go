package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benchplot/internal/benchmark"
	"benchplot/internal/series"
)

const report = `add,scalar,4096,0,1,10,10,10
add,scalar,8192,0,1,20,20,20
add,scalar,4096,0,0,15,15,15
add,scalar,8192,0,0,22,22,22
add,simd,4096,0,1,4,4,4
mul,scalar,1024,0,1,3,3,3
mul,scalar,1024,0,0,5,5,5
`

func operators(t *testing.T) []series.OperatorSeries {
	t.Helper()
	g, err := benchmark.Process(report, nil)
	require.NoError(t, err)
	ops, err := series.Build(g, series.PairBySize)
	require.NoError(t, err)
	return ops
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) ChartRendered(format, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[format+"/"+kind]++
}

func TestPNGRenderer(t *testing.T) {
	dir := t.TempDir()
	rec := &countingRecorder{}
	r := &PNGRenderer{Recorder: rec}

	paths, err := r.Render(operators(t)[0], dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "add_curve.png"),
		filepath.Join(dir, "add_diff.png"),
	}, paths)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, []byte("\x89PNG"), data[:4])
	}
	assert.Equal(t, 1, rec.counts["png/curve"])
	assert.Equal(t, 1, rec.counts["png/diff"])
}

func TestPNGRenderer_EmptySeries(t *testing.T) {
	op := series.OperatorSeries{
		Operator: "idle",
		Curves:   []series.Series{{Name: "scalar_0_True"}},
	}
	paths, err := (&PNGRenderer{Width: 4, Height: 3}).Render(op, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestPNGRenderer_MissingDir(t *testing.T) {
	_, err := (&PNGRenderer{}).Render(operators(t)[0], filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestPaletteColors(t *testing.T) {
	for _, n := range []int{0, 1, 3, 12, 40} {
		colors, err := paletteColors(n)
		require.NoError(t, err, n)
		assert.GreaterOrEqual(t, len(colors), minPaletteSize)
		assert.LessOrEqual(t, len(colors), maxPaletteSize)
	}
}

func TestHTMLRenderer(t *testing.T) {
	dir := t.TempDir()
	rec := &countingRecorder{}
	r := &HTMLRenderer{Recorder: rec}

	paths, err := r.Render(operators(t)[0], dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "add_curve.html", filepath.Base(paths[0]))
	assert.Equal(t, "add_diff.html", filepath.Base(paths[1]))

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "scalar_0_True")
	assert.Contains(t, string(data), "4KB")
	assert.Equal(t, 1, rec.counts["html/diff"])
}

func TestLineData_Gaps(t *testing.T) {
	s := series.Series{Points: []series.Point{{X: 2, Y: 7}, {X: 9, Y: 1}}}
	data := lineData(s, 3)
	require.Len(t, data, 3)
	assert.Equal(t, gap, data[0].Value)
	assert.Equal(t, gap, data[1].Value)
	assert.Equal(t, 7.0, data[2].Value)
}

func TestNew(t *testing.T) {
	r, err := New("", 0, 0, nil)
	require.NoError(t, err)
	assert.IsType(t, &PNGRenderer{}, r)

	rec := &countingRecorder{}
	r, err = New("html", 8, 4, rec)
	require.NoError(t, err)
	require.IsType(t, &HTMLRenderer{}, r)
	assert.Equal(t, rec, r.(*HTMLRenderer).Recorder)
	assert.Equal(t, 8.0, r.(*HTMLRenderer).Width)

	_, err = New("svg", 0, 0, nil)
	assert.Error(t, err)
}

func TestHTMLRenderer_Pixels(t *testing.T) {
	w, h := (&HTMLRenderer{Width: 8, Height: 4}).pixels()
	assert.Equal(t, "800px", w)
	assert.Equal(t, "400px", h)

	w, h = (&HTMLRenderer{}).pixels()
	assert.Equal(t, "1000px", w)
	assert.Equal(t, "500px", h)
}

func TestTimestampedDir(t *testing.T) {
	base := t.TempDir()
	ts := time.Date(2023, time.June, 19, 17, 44, 53, 0, time.UTC)

	dir, err := TimestampedDir(base, ts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "19_06_2023__17_44_53"), dir)
	assert.DirExists(t, dir)
	assert.Equal(t, "benchmark_"+filepath.Base(dir)+".csv", benchmark.ReportName(ts))

	again, err := TimestampedDir(base, ts)
	require.NoError(t, err)
	assert.Equal(t, dir, again)
}

type fakeRenderer struct {
	fail string
}

func (f fakeRenderer) Render(op series.OperatorSeries, dir string) ([]string, error) {
	if op.Operator == f.fail {
		return nil, errors.New("boom")
	}
	return []string{filepath.Join(dir, FileName(op.Operator, KindCurve, "txt"))}, nil
}

func TestRenderAll(t *testing.T) {
	ops := operators(t)

	paths, err := RenderAll(context.Background(), fakeRenderer{}, ops, "out", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("out", "add_curve.txt"),
		filepath.Join("out", "mul_curve.txt"),
	}, paths)

	_, err = RenderAll(context.Background(), fakeRenderer{fail: "mul"}, ops, "out", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operator mul")
}

func TestRenderAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RenderAll(ctx, fakeRenderer{}, operators(t), "out", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderAll_PNG(t *testing.T) {
	dir := t.TempDir()
	paths, err := RenderAll(context.Background(), &PNGRenderer{}, operators(t), dir, 2)
	require.NoError(t, err)
	assert.Len(t, paths, 4)
	for _, name := range []string{"add_curve.png", "add_diff.png", "mul_curve.png", "mul_diff.png"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}
