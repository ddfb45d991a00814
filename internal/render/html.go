package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"benchplot/internal/series"
)

// gap marks a tick without a value; echarts leaves a hole in the line.
const gap = "-"

// PixelsPerInch converts the inch-based chart size for HTML pages.
const PixelsPerInch = 100

// HTMLRenderer writes interactive echarts pages. Width and Height are in
// inches and converted at PixelsPerInch; zero selects 10x5.
type HTMLRenderer struct {
	Width    float64
	Height   float64
	Recorder Recorder
}

func (r *HTMLRenderer) Render(op series.OperatorSeries, dir string) ([]string, error) {
	var paths []string

	curve := r.lineChart(op, LabelDuration, op.Curves)
	path, err := r.write(curve, dir, FileName(op.Operator, KindCurve, "html"))
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)
	if r.Recorder != nil {
		r.Recorder.ChartRendered("html", KindCurve)
	}

	diff := r.lineChart(op, LabelDiff, op.Differences)
	path, err = r.write(diff, dir, FileName(op.Operator, KindDiff, "html"))
	if err != nil {
		return nil, err
	}
	paths = append(paths, path)
	if r.Recorder != nil {
		r.Recorder.ChartRendered("html", KindDiff)
	}
	return paths, nil
}

func (r *HTMLRenderer) pixels() (string, string) {
	w, h := r.Width, r.Height
	if w <= 0 {
		w = 10
	}
	if h <= 0 {
		h = 5
	}
	return fmt.Sprintf("%.0fpx", w*PixelsPerInch), fmt.Sprintf("%.0fpx", h*PixelsPerInch)
}

func (r *HTMLRenderer) lineChart(op series.OperatorSeries, yLabel string, lines []series.Series) *charts.Line {
	width, height := r.pixels()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: op.Operator,
			Width:     width,
			Height:    height,
		}),
		charts.WithTitleOpts(opts.Title{Title: op.Operator}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: LabelSize}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel}),
	)

	var labels []string
	if op.Ticks != nil {
		labels = op.Ticks.Labels()
	}
	line.SetXAxis(labels)

	for _, s := range lines {
		line.AddSeries(s.Name, lineData(s, len(labels)))
	}
	return line
}

// lineData spreads a series over the category axis, leaving gaps for ticks
// the series has no value for.
func lineData(s series.Series, ticks int) []opts.LineData {
	data := make([]opts.LineData, ticks)
	for i := range data {
		data[i] = opts.LineData{Value: gap}
	}
	for _, p := range s.Points {
		if p.X >= 0 && p.X < ticks {
			data[p.X] = opts.LineData{Value: p.Y}
		}
	}
	return data
}

func (r *HTMLRenderer) write(line *charts.Line, dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	page := components.NewPage()
	page.AddCharts(line)
	if err := page.Render(f); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}
	return path, nil
}
