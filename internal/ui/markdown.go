package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"benchplot/internal/benchmark"
)

// CompareMarkdown renders comparisons as a GitHub flavored markdown report,
// suitable for pull request comments.
func CompareMarkdown(title string, rows []benchmark.Comparison, thresholdPct float64) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "## %s\n\n", title)
	}

	var regressions []benchmark.Comparison
	for _, c := range rows {
		if c.Regressed(thresholdPct) {
			regressions = append(regressions, c)
		}
	}
	if len(regressions) == 0 {
		fmt.Fprintf(&b, "No significant regression above %.1f%%.\n\n", thresholdPct)
	} else {
		fmt.Fprintf(&b, "**%d significant regression(s) above %.1f%%:**\n\n", len(regressions), thresholdPct)
		for _, c := range regressions {
			fmt.Fprintf(&b, "- `%s` %+.2f%%\n", c.Key, c.DeltaPct)
		}
		b.WriteString("\n")
	}

	b.WriteString("| Benchmark | Baseline | Current | Delta | p |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, c := range rows {
		delta := fmt.Sprintf("%+.2f%%", c.DeltaPct)
		if !c.Significant {
			delta = "~ " + delta
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s | %.3f |\n",
			c.Key, benchmark.FormatValue(c.Baseline), benchmark.FormatValue(c.Current), delta, c.P)
	}
	return b.String()
}

// RenderMarkdown renders markdown for the terminal. Without color the
// notty style is used.
func RenderMarkdown(md string, width int, color bool) (string, error) {
	style := glamour.WithAutoStyle()
	if !color {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
