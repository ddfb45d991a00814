// Package series turns a GroupedBenchmark into plot-ready line series.
package series

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"benchplot/internal/benchmark"
)

// ErrUnpairedSize marks a size measured only on one side of an
// aligned/unaligned pair.
var ErrUnpairedSize = errors.New("size has no aligned/unaligned counterpart")

// Pairing selects how aligned and unaligned entries are matched when building
// difference series.
type Pairing string

const (
	// PairBySize matches entries with equal size.
	PairBySize Pairing = "size"
	// PairByPosition zips both groups in iteration order and takes the x
	// position from the aligned entry. Both groups must have been filled with
	// sizes in the same order for the result to be meaningful.
	PairByPosition Pairing = "position"
)

// ParsePairing validates a pairing mode name. Empty selects PairBySize.
func ParsePairing(s string) (Pairing, error) {
	switch Pairing(strings.ToLower(strings.TrimSpace(s))) {
	case "", PairBySize:
		return PairBySize, nil
	case PairByPosition:
		return PairByPosition, nil
	}
	return "", fmt.Errorf("unknown pairing %q (want %s or %s)", s, PairBySize, PairByPosition)
}

// Point is one (tick, value) pair.
type Point struct {
	X int
	Y float64
}

// Series is a named line.
type Series struct {
	Name   string
	Points []Point
}

// OperatorSeries holds everything needed to draw the two charts of one
// operator.
type OperatorSeries struct {
	Operator    string
	Ticks       *TickMap
	Curves      []Series
	Differences []Series
}

// Unpaired identifies a size present in only one group of a pair.
type Unpaired struct {
	Operator string
	Style    string
	Offset   int64
	Size     int64
	Aligned  bool // side the size was found on
}

// PairingError lists every size that could not be paired. Series built from
// the matched sizes are still returned next to it.
type PairingError struct {
	Unpaired []Unpaired
}

func (e *PairingError) Error() string {
	parts := make([]string, 0, len(e.Unpaired))
	for _, u := range e.Unpaired {
		side := "unaligned"
		if u.Aligned {
			side = "aligned"
		}
		parts = append(parts, fmt.Sprintf("%s/%s_%d size %d (%s only)", u.Operator, u.Style, u.Offset, u.Size, side))
	}
	return fmt.Sprintf("%v: %s", ErrUnpairedSize, strings.Join(parts, ", "))
}

func (e *PairingError) Unwrap() error { return ErrUnpairedSize }

// CurveName labels a curve as style_offset_True or style_offset_False.
func CurveName(style string, offset int64, aligned bool) string {
	flag := "False"
	if aligned {
		flag = "True"
	}
	return DiffName(style, offset) + "_" + flag
}

// DiffName labels a difference series as style_offset.
func DiffName(style string, offset int64) string {
	return style + "_" + strconv.FormatInt(offset, 10)
}

// Curves returns one series per (style, offset, aligned) group of op, with
// points in the group's size order.
func Curves(g *benchmark.GroupedBenchmark, op string, ticks *TickMap) []Series {
	styles, ok := g.Operator(op)
	if !ok {
		return nil
	}
	if ticks == nil {
		ticks = NewTickMap(styles)
	}

	var out []Series
	for style, offsets := range styles.All() {
		for offset, alignments := range offsets.All() {
			for aligned, sizes := range alignments.All() {
				s := Series{Name: CurveName(style, offset, aligned)}
				for size, d := range sizes.All() {
					x, _ := ticks.Tick(size)
					s.Points = append(s.Points, Point{X: x, Y: d})
				}
				out = append(out, s)
			}
		}
	}
	return out
}

// Differences returns one unaligned minus aligned series per (style, offset)
// of op. Pairs lacking either group are skipped. With PairBySize, sizes found
// on one side only are reported through a *PairingError.
func Differences(g *benchmark.GroupedBenchmark, op string, ticks *TickMap, pairing Pairing) ([]Series, error) {
	styles, ok := g.Operator(op)
	if !ok {
		return nil, nil
	}
	if ticks == nil {
		ticks = NewTickMap(styles)
	}

	var (
		out      []Series
		unpaired []Unpaired
	)
	for style, offsets := range styles.All() {
		for offset, alignments := range offsets.All() {
			aligned, okA := alignments.Get(true)
			unaligned, okU := alignments.Get(false)
			if !okA || !okU {
				continue
			}

			s := Series{Name: DiffName(style, offset)}
			switch pairing {
			case PairByPosition:
				s.Points = pairByPosition(aligned, unaligned, ticks)
			case "", PairBySize:
				var missing []Unpaired
				s.Points, missing = pairBySize(aligned, unaligned, ticks)
				for i := range missing {
					missing[i].Operator, missing[i].Style, missing[i].Offset = op, style, offset
				}
				unpaired = append(unpaired, missing...)
			default:
				return nil, fmt.Errorf("unknown pairing %q", pairing)
			}
			out = append(out, s)
		}
	}

	if len(unpaired) > 0 {
		return out, &PairingError{Unpaired: unpaired}
	}
	return out, nil
}

func pairByPosition(aligned, unaligned *benchmark.SizeDurations, ticks *TickMap) []Point {
	as, us := aligned.Keys(), unaligned.Keys()
	n := min(len(as), len(us))
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		a, _ := aligned.Get(as[i])
		u, _ := unaligned.Get(us[i])
		x, _ := ticks.Tick(as[i])
		points = append(points, Point{X: x, Y: u - a})
	}
	return points
}

func pairBySize(aligned, unaligned *benchmark.SizeDurations, ticks *TickMap) ([]Point, []Unpaired) {
	var (
		points   []Point
		unpaired []Unpaired
	)
	for size, a := range aligned.All() {
		u, ok := unaligned.Get(size)
		if !ok {
			unpaired = append(unpaired, Unpaired{Size: size, Aligned: true})
			continue
		}
		x, _ := ticks.Tick(size)
		points = append(points, Point{X: x, Y: u - a})
	}
	for size := range unaligned.All() {
		if _, ok := aligned.Get(size); !ok {
			unpaired = append(unpaired, Unpaired{Size: size, Aligned: false})
		}
	}
	return points, unpaired
}

// Build produces the series of every operator in first-seen order. Pairing
// problems of all operators are merged into one *PairingError returned with
// the complete result.
func Build(g *benchmark.GroupedBenchmark, pairing Pairing) ([]OperatorSeries, error) {
	var (
		out      []OperatorSeries
		unpaired []Unpaired
	)
	for _, op := range g.Operators() {
		styles, _ := g.Operator(op)
		ticks := NewTickMap(styles)

		diffs, err := Differences(g, op, ticks, pairing)
		if err != nil {
			var pe *PairingError
			if !errors.As(err, &pe) {
				return nil, fmt.Errorf("operator %s: %w", op, err)
			}
			unpaired = append(unpaired, pe.Unpaired...)
		}

		out = append(out, OperatorSeries{
			Operator:    op,
			Ticks:       ticks,
			Curves:      Curves(g, op, ticks),
			Differences: diffs,
		})
	}

	if len(unpaired) > 0 {
		return out, &PairingError{Unpaired: unpaired}
	}
	return out, nil
}
