package render

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"benchplot/internal/series"
)

// Bounds of the qualitative palette.
const (
	minPaletteSize = 3
	maxPaletteSize = 12
)

// PNGRenderer draws line charts with gonum/plot. Width and Height are in
// inches; zero selects 10x5.
type PNGRenderer struct {
	Width    float64
	Height   float64
	Recorder Recorder
}

func (r *PNGRenderer) size() (vg.Length, vg.Length) {
	w, h := r.Width, r.Height
	if w <= 0 {
		w = 10
	}
	if h <= 0 {
		h = 5
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

func (r *PNGRenderer) Render(op series.OperatorSeries, dir string) ([]string, error) {
	charts := []struct {
		kind   string
		yLabel string
		lines  []series.Series
	}{
		{KindCurve, LabelDuration, op.Curves},
		{KindDiff, LabelDiff, op.Differences},
	}

	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		p, err := linePlot(op, c.yLabel, c.lines)
		if err != nil {
			return nil, fmt.Errorf("%s chart: %w", c.kind, err)
		}
		path := filepath.Join(dir, FileName(op.Operator, c.kind, "png"))
		w, h := r.size()
		if err := p.Save(w, h, path); err != nil {
			return nil, fmt.Errorf("failed to save %s: %w", path, err)
		}
		if r.Recorder != nil {
			r.Recorder.ChartRendered("png", c.kind)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func linePlot(op series.OperatorSeries, yLabel string, lines []series.Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = op.Operator
	p.X.Label.Text = LabelSize
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	if op.Ticks != nil {
		labels := op.Ticks.Labels()
		ticks := make([]plot.Tick, len(labels))
		for i, l := range labels {
			ticks[i] = plot.Tick{Value: float64(i), Label: l}
		}
		p.X.Tick.Marker = plot.ConstantTicks(ticks)
	}

	colors, err := paletteColors(len(lines))
	if err != nil {
		return nil, err
	}
	for i, s := range lines {
		if len(s.Points) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			pts[j].X = float64(pt.X)
			pts[j].Y = pt.Y
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.Color = colors[i%len(colors)]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	return p, nil
}

func paletteColors(n int) ([]color.Color, error) {
	n = max(minPaletteSize, min(n, maxPaletteSize))
	palette, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", n)
	if err != nil {
		return nil, fmt.Errorf("failed to load palette: %w", err)
	}
	return palette.Colors(), nil
}
