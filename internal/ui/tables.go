package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"benchplot/internal/benchmark"
	"benchplot/internal/series"
)

// numeric columns are right aligned.
func styleFunc(numeric map[int]bool) table.StyleFunc {
	return func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if numeric[col] {
			return numberStyle
		}
		return cellStyle
	}
}

func alignedLabel(aligned bool) string {
	if aligned {
		return "aligned"
	}
	return "unaligned"
}

// SummaryTable renders one row per reduced record.
func SummaryTable(title string, rows []benchmark.Summary) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("OPERATOR", "STYLE", "OFFSET", "ALIGNED", "SIZE", "N", "VALUE", "CI").
		StyleFunc(styleFunc(map[int]bool{2: true, 4: true, 5: true, 6: true, 7: true}))

	for _, s := range rows {
		t.Row(
			s.Key.Operator,
			s.Key.Style,
			strconv.FormatInt(s.Key.Offset, 10),
			alignedLabel(s.Key.Aligned),
			series.ReadableSize(s.Key.Size),
			strconv.Itoa(s.N),
			benchmark.FormatValue(s.Value),
			s.Interval(),
		)
	}
	return render(title, t, len(rows))
}

// CompareTable renders one row per joined record. Significant regressions
// above thresholdPct are highlighted.
func CompareTable(title string, rows []benchmark.Comparison, thresholdPct float64) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("BENCHMARK", "BASELINE", "CURRENT", "DELTA", "P").
		StyleFunc(styleFunc(map[int]bool{1: true, 2: true, 3: true, 4: true}))

	for _, c := range rows {
		t.Row(
			c.Key.String(),
			benchmark.FormatValue(c.Baseline),
			benchmark.FormatValue(c.Current),
			FormatDelta(c, thresholdPct),
			fmt.Sprintf("%.3f", c.P),
		)
	}
	return render(title, t, len(rows))
}

// FormatDelta colors a delta: red for a significant regression, green for a
// significant improvement, muted otherwise.
func FormatDelta(c benchmark.Comparison, thresholdPct float64) string {
	text := fmt.Sprintf("%+.2f%%", c.DeltaPct)
	switch {
	case c.Regressed(thresholdPct):
		return regressionStyle.Render(text)
	case c.Significant && c.DeltaPct < 0:
		return improvementStyle.Render(text)
	case !c.Significant:
		return mutedStyle.Render("~ " + text)
	}
	return text
}

func render(title string, t *table.Table, n int) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
	}
	if n == 0 {
		b.WriteString(mutedStyle.Render("no matching records"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}
