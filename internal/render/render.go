// Package render draws operator series to chart files.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"benchplot/internal/benchmark"
	"benchplot/internal/series"
)

// Chart kinds, used in file names and metrics.
const (
	KindCurve = "curve"
	KindDiff  = "diff"
)

// Axis titles.
const (
	LabelSize     = "Data Size"
	LabelDuration = "Duration"
	LabelDiff     = "Difference (unaligned - aligned)"
)

// Renderer writes the curve and difference charts of one operator into dir
// and returns the written paths.
type Renderer interface {
	Render(op series.OperatorSeries, dir string) ([]string, error)
}

// Recorder is notified of every chart written.
type Recorder interface {
	ChartRendered(format, kind string)
}

// FileName returns <operator>_<kind>.<ext>.
func FileName(operator, kind, ext string) string {
	return operator + "_" + kind + "." + ext
}

// New returns the renderer for a format name: "png" or "html". rec may be
// nil.
func New(format string, width, height float64, rec Recorder) (Renderer, error) {
	switch format {
	case "", "png":
		return &PNGRenderer{Width: width, Height: height, Recorder: rec}, nil
	case "html":
		return &HTMLRenderer{Width: width, Height: height, Recorder: rec}, nil
	}
	return nil, fmt.Errorf("unknown plot format %q (want png or html)", format)
}

// TimestampedDir creates base/DD_MM_YYYY__HH_MM_SS for t, the layout report
// names use.
func TimestampedDir(base string, t time.Time) (string, error) {
	dir := filepath.Join(base, t.Format(benchmark.TimestampLayout))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create plot directory %s: %w", dir, err)
	}
	return dir, nil
}

// RenderAll renders every operator with at most limit charts in flight. The
// returned paths follow the operator order.
func RenderAll(ctx context.Context, r Renderer, ops []series.OperatorSeries, dir string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 1
	}
	results := make([][]string, len(ops))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, op := range ops {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			paths, err := r.Render(op, dir)
			if err != nil {
				return fmt.Errorf("operator %s: %w", op.Operator, err)
			}
			results[i] = paths
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var all []string
	for _, paths := range results {
		all = append(all, paths...)
	}
	return all, nil
}
