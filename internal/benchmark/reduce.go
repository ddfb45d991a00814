package benchmark

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MinTrimSamples is the smallest sample count from which the single minimum
// and maximum can be dropped without emptying the sequence.
const MinTrimSamples = 3

var (
	// ErrNoSamples is returned when a record carries no durations at all.
	ErrNoSamples = errors.New("no samples")
	// ErrTooFewSamples is returned in strict mode for sequences shorter than
	// MinTrimSamples.
	ErrTooFewSamples = errors.New("too few samples to trim")
)

// Statistic selects how the trimmed samples are collapsed to one value.
type Statistic string

const (
	StatisticMedian Statistic = "median"
	StatisticMean   Statistic = "mean"
)

// ParseStatistic validates a statistic name. Empty selects the median.
func ParseStatistic(s string) (Statistic, error) {
	switch Statistic(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatisticMedian:
		return StatisticMedian, nil
	case StatisticMean:
		return StatisticMean, nil
	}
	return "", fmt.Errorf("unknown statistic %q (want %s or %s)", s, StatisticMedian, StatisticMean)
}

// Reducer turns a record's raw durations into one representative value.
//
// The samples are sorted, the single minimum and single maximum are dropped,
// and the statistic is taken over what remains. Sequences shorter than
// MinTrimSamples are used untrimmed, or rejected with ErrTooFewSamples when
// Strict is set.
type Reducer struct {
	Statistic Statistic
	Strict    bool
}

// Reduce applies the reduction. The input slice is not modified.
func (r Reducer) Reduce(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrNoSamples
	}
	if r.Strict && len(samples) < MinTrimSamples {
		return 0, fmt.Errorf("%w: got %d, need %d", ErrTooFewSamples, len(samples), MinTrimSamples)
	}

	trimmed := Trim(samples)
	switch r.Statistic {
	case StatisticMean:
		var sum float64
		for _, v := range trimmed {
			sum += v
		}
		return sum / float64(len(trimmed)), nil
	case "", StatisticMedian:
		return trimmed[len(trimmed)/2], nil
	}
	return 0, fmt.Errorf("unknown statistic %q", r.Statistic)
}

// Trim returns a sorted copy of samples without its single smallest and single
// largest value. Fewer than MinTrimSamples values are returned sorted but
// otherwise intact.
func Trim(samples []float64) []float64 {
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	if len(sorted) < MinTrimSamples {
		return sorted
	}
	return sorted[1 : len(sorted)-1]
}

// TrimmedMedian is the default reduction: element len/2 of the trimmed, sorted
// samples.
func TrimmedMedian(samples []float64) (float64, error) {
	return Reducer{Statistic: StatisticMedian}.Reduce(samples)
}
