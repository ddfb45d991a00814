package benchmark

import (
	"fmt"
	"slices"

	"golang.org/x/perf/benchmath"
	"golang.org/x/perf/benchunit"
)

// DefaultConfidence is the confidence level of summary intervals.
const DefaultConfidence = 0.95

// Summary describes the samples of one record.
type Summary struct {
	Key   Key
	N     int
	Value float64 // reduced with the aggregator's statistic
	// Center, Lo and Hi come from a distribution-free summary over the
	// untrimmed samples.
	Center float64
	Lo     float64
	Hi     float64
}

// Summarize reduces every record and attaches a confidence interval. Records
// the filter excludes are left out; a later record with the same key replaces
// the earlier one in place.
func Summarize(records []SampleRecord, filter *IgnoreFilter, r Reducer, confidence float64) ([]Summary, error) {
	if confidence <= 0 || confidence >= 1 {
		confidence = DefaultConfidence
	}
	thresholds := benchmath.DefaultThresholds

	index := make(map[Key]int)
	var out []Summary
	for _, rec := range records {
		if filter.Excludes(rec) {
			continue
		}
		v, err := r.Reduce(rec.Samples)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rec.Key(), err)
		}
		sample := benchmath.NewSample(slices.Clone(rec.Samples), &thresholds)
		ci := benchmath.AssumeNothing.Summary(sample, confidence)

		s := Summary{
			Key:    rec.Key(),
			N:      len(rec.Samples),
			Value:  v,
			Center: ci.Center,
			Lo:     ci.Lo,
			Hi:     ci.Hi,
		}
		if i, ok := index[s.Key]; ok {
			out[i] = s
			continue
		}
		index[s.Key] = len(out)
		out = append(out, s)
	}
	return out, nil
}

// Interval renders the confidence interval relative to the center, e.g.
// "±3%". Infinite bounds render as "∞".
func (s Summary) Interval() string {
	if s.Center == 0 {
		return "-"
	}
	lo := (s.Center - s.Lo) / s.Center
	hi := (s.Hi - s.Center) / s.Center
	spread := max(lo, hi) * 100
	if spread > 1e6 {
		return "∞"
	}
	return fmt.Sprintf("±%.0f%%", spread)
}

// FormatValue scales a duration with SI prefixes.
func FormatValue(v float64) string {
	return benchunit.Scale(v, benchunit.Decimal)
}
