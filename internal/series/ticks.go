package series

import (
	"strconv"

	"benchplot/internal/benchmark"
)

// TickMap assigns every distinct size of one operator a zero-based x-axis
// index, in the order the sizes are first met while walking
// style -> offset -> aligned -> size.
type TickMap struct {
	sizes []int64
	index map[int64]int
}

// NewTickMap collects the sizes recorded under one operator.
func NewTickMap(styles *benchmark.StyleGroups) *TickMap {
	tm := &TickMap{index: make(map[int64]int)}
	for _, offsets := range styles.All() {
		for _, alignments := range offsets.All() {
			for _, sizes := range alignments.All() {
				for _, size := range sizes.Keys() {
					tm.add(size)
				}
			}
		}
	}
	return tm
}

func (tm *TickMap) add(size int64) {
	if _, ok := tm.index[size]; ok {
		return
	}
	tm.index[size] = len(tm.sizes)
	tm.sizes = append(tm.sizes, size)
}

// Tick returns the index assigned to size.
func (tm *TickMap) Tick(size int64) (int, bool) {
	i, ok := tm.index[size]
	return i, ok
}

// Sizes returns the sizes in tick order.
func (tm *TickMap) Sizes() []int64 {
	out := make([]int64, len(tm.sizes))
	copy(out, tm.sizes)
	return out
}

// Len returns the number of ticks.
func (tm *TickMap) Len() int { return len(tm.sizes) }

// Labels returns the human readable size of every tick.
func (tm *TickMap) Labels() []string {
	labels := make([]string, len(tm.sizes))
	for i, s := range tm.sizes {
		labels[i] = ReadableSize(s)
	}
	return labels
}

// ReadableSize renders a byte count with a binary unit, truncating to whole
// units: 1536 is "1KB".
func ReadableSize(size int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case size < kb:
		return strconv.FormatInt(size, 10) + "B"
	case size < mb:
		return strconv.FormatInt(size/kb, 10) + "KB"
	case size < gb:
		return strconv.FormatInt(size/mb, 10) + "MB"
	default:
		return strconv.FormatInt(size/gb, 10) + "GB"
	}
}
