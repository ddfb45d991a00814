package benchmark

import "iter"

// Levels of a GroupedBenchmark, outermost last.
type (
	SizeDurations   = OrderedMap[int64, float64]
	AlignmentGroups = OrderedMap[bool, *SizeDurations]
	OffsetGroups    = OrderedMap[int64, *AlignmentGroups]
	StyleGroups     = OrderedMap[string, *OffsetGroups]
)

// GroupedBenchmark holds one reduced duration per
// operator -> style -> offset -> aligned -> size.
//
// Every level keeps first-seen order; plot tick indices are derived from that
// order, not from numeric size order. A GroupedBenchmark is only mutated while
// an Aggregator builds it.
type GroupedBenchmark struct {
	cases *OrderedMap[string, *StyleGroups]
}

// NewGroupedBenchmark returns an empty structure.
func NewGroupedBenchmark() *GroupedBenchmark {
	return &GroupedBenchmark{cases: newOrderedMap[string, *StyleGroups]()}
}

// Operators returns the operators in first-seen order.
func (g *GroupedBenchmark) Operators() []string {
	return g.cases.Keys()
}

// Operator returns the style groups recorded for op.
func (g *GroupedBenchmark) Operator(op string) (*StyleGroups, bool) {
	return g.cases.Get(op)
}

// Group returns the size -> duration mapping of one (operator, style, offset,
// aligned) combination.
func (g *GroupedBenchmark) Group(op, style string, offset int64, aligned bool) (*SizeDurations, bool) {
	styles, ok := g.cases.Get(op)
	if !ok {
		return nil, false
	}
	offsets, ok := styles.Get(style)
	if !ok {
		return nil, false
	}
	alignments, ok := offsets.Get(offset)
	if !ok {
		return nil, false
	}
	return alignments.Get(aligned)
}

// Value returns the reduced duration stored under k.
func (g *GroupedBenchmark) Value(k Key) (float64, bool) {
	sizes, ok := g.Group(k.Operator, k.Style, k.Offset, k.Aligned)
	if !ok {
		return 0, false
	}
	return sizes.Get(k.Size)
}

// Len returns the number of reduced values.
func (g *GroupedBenchmark) Len() int {
	n := 0
	for range g.All() {
		n++
	}
	return n
}

// All iterates over every reduced value in nested first-seen order.
func (g *GroupedBenchmark) All() iter.Seq2[Key, float64] {
	return func(yield func(Key, float64) bool) {
		for op, styles := range g.cases.All() {
			for style, offsets := range styles.All() {
				for offset, alignments := range offsets.All() {
					for aligned, sizes := range alignments.All() {
						for size, d := range sizes.All() {
							k := Key{Operator: op, Style: style, Offset: offset, Aligned: aligned, Size: size}
							if !yield(k, d) {
								return
							}
						}
					}
				}
			}
		}
	}
}

// set stores d under k, creating intermediate levels on first use. An existing
// value is overwritten in place.
func (g *GroupedBenchmark) set(k Key, d float64) {
	styles := g.cases.getOrCreate(k.Operator, newOrderedMap[string, *OffsetGroups])
	offsets := styles.getOrCreate(k.Style, newOrderedMap[int64, *AlignmentGroups])
	alignments := offsets.getOrCreate(k.Offset, newOrderedMap[bool, *SizeDurations])
	sizes := alignments.getOrCreate(k.Aligned, newOrderedMap[int64, float64])
	sizes.set(k.Size, d)
}
