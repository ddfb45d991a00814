package benchmark

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/perf/benchmath"
)

// DefaultAlpha is the significance level used when none is given.
const DefaultAlpha = 0.05

// Comparison holds the change of one record between two reports.
type Comparison struct {
	Key      Key
	Baseline float64
	Current  float64
	// DeltaPct is the percentage change of the reduced value. Positive means
	// the current run is slower.
	DeltaPct float64
	// P is the Mann-Whitney U p-value of the raw samples.
	P           float64
	Significant bool
}

// Regressed reports whether the comparison is a significant slowdown above
// thresholdPct percent.
func (c Comparison) Regressed(thresholdPct float64) bool {
	return c.Significant && c.DeltaPct > thresholdPct
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s: %+.2f%% (p=%.3f)", c.Key, c.DeltaPct, c.P)
}

// Compare joins the records of two reports on their key and compares the
// reduced values. Records present in only one report are skipped. The result
// follows the order of current.
func Compare(baseline, current []SampleRecord, r Reducer, alpha float64) ([]Comparison, error) {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	thresholds := benchmath.DefaultThresholds
	thresholds.CompareAlpha = alpha

	prev := make(map[Key]SampleRecord, len(baseline))
	for _, rec := range baseline {
		prev[rec.Key()] = rec
	}

	var comparisons []Comparison
	seen := make(map[Key]int)
	for _, rec := range current {
		p, ok := prev[rec.Key()]
		if !ok {
			continue
		}
		base, err := r.Reduce(p.Samples)
		if err != nil {
			return nil, fmt.Errorf("baseline %s: %w", rec.Key(), err)
		}
		curr, err := r.Reduce(rec.Samples)
		if err != nil {
			return nil, fmt.Errorf("current %s: %w", rec.Key(), err)
		}

		a := benchmath.NewSample(slices.Clone(p.Samples), &thresholds)
		b := benchmath.NewSample(slices.Clone(rec.Samples), &thresholds)
		cmp := benchmath.AssumeNothing.Compare(a, b)

		comp := Comparison{
			Key:         rec.Key(),
			Baseline:    base,
			Current:     curr,
			P:           cmp.P,
			Significant: !math.IsNaN(cmp.P) && cmp.P < alpha,
		}
		if base != 0 {
			comp.DeltaPct = (curr - base) / base * 100
		}

		if i, ok := seen[comp.Key]; ok {
			comparisons[i] = comp
			continue
		}
		seen[comp.Key] = len(comparisons)
		comparisons = append(comparisons, comp)
	}
	return comparisons, nil
}
