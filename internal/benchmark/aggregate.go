package benchmark

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Stats counts what happened to the lines of one report.
type Stats struct {
	Lines     int
	Parsed    int
	Filtered  int
	Malformed int
	Reduced   int
}

// Aggregator parses a report, applies the ignore filter and reduces every
// surviving record into a GroupedBenchmark.
type Aggregator struct {
	Filter  *IgnoreFilter
	Reducer Reducer
	// SkipMalformed logs and skips bad lines instead of failing the report.
	SkipMalformed bool
	Logger        *slog.Logger

	stats Stats
}

// NewAggregator returns an aggregator using the trimmed median.
func NewAggregator(filter *IgnoreFilter) *Aggregator {
	return &Aggregator{
		Filter:  filter,
		Reducer: Reducer{Statistic: StatisticMedian},
	}
}

// Stats returns the counters of the last Process call.
func (a *Aggregator) Stats() Stats {
	return a.stats
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Process reads the whole report in one pass. A later record with the same
// key as an earlier one overwrites its value without moving it.
func (a *Aggregator) Process(r io.Reader) (*GroupedBenchmark, error) {
	a.stats = Stats{}
	g := NewGroupedBenchmark()
	log := a.logger()

	err := scanLines(r, func(n int, line string) error {
		a.stats.Lines++
		rec, err := ParseRecord(line)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = n
			}
			if a.SkipMalformed && errors.Is(err, ErrMalformedRecord) {
				a.stats.Malformed++
				log.Warn("skipping malformed record", "line", n, "error", err)
				return nil
			}
			return err
		}
		a.stats.Parsed++

		if a.Filter.Excludes(rec) {
			a.stats.Filtered++
			return nil
		}

		d, err := a.Reducer.Reduce(rec.Samples)
		if err != nil {
			return fmt.Errorf("line %d (%s): %w", n, rec.Key(), err)
		}
		g.set(rec.Key(), d)
		a.stats.Reduced++
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("report aggregated",
		"lines", a.stats.Lines,
		"parsed", a.stats.Parsed,
		"filtered", a.stats.Filtered,
		"malformed", a.stats.Malformed,
		"groups", g.Len())
	return g, nil
}

// ProcessString aggregates report text.
func (a *Aggregator) ProcessString(text string) (*GroupedBenchmark, error) {
	return a.Process(strings.NewReader(text))
}

// ProcessFile aggregates the report stored at path.
func (a *Aggregator) ProcessFile(path string) (*GroupedBenchmark, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	g, err := a.Process(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Process aggregates report text with the default reduction.
func Process(text string, filter *IgnoreFilter) (*GroupedBenchmark, error) {
	return NewAggregator(filter).ProcessString(text)
}
