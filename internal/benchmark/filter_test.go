package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnoreFilter_Excludes(t *testing.T) {
	rec := SampleRecord{Operator: "add", Style: "scalar", Size: 1024, Offset: 2, Aligned: true}

	tests := []struct {
		name   string
		filter *IgnoreFilter
		want   bool
	}{
		{"nil", nil, false},
		{"empty", &IgnoreFilter{}, false},
		{"style", (&IgnoreFilter{}).IgnoreStyle("scalar"), true},
		{"other style", (&IgnoreFilter{}).IgnoreStyle("simd"), false},
		{"offset", (&IgnoreFilter{}).IgnoreOffset(2), true},
		{"aligned", (&IgnoreFilter{}).IgnoreAligned(true), true},
		{"unaligned", (&IgnoreFilter{}).IgnoreAligned(false), false},
		{"size", (&IgnoreFilter{}).IgnoreSize(4096, 1024), true},
		{"chained miss", (&IgnoreFilter{}).IgnoreStyle("simd").IgnoreOffset(0).IgnoreSize(64), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Excludes(rec))
		})
	}
}

func TestGroupedBenchmark_Value(t *testing.T) {
	g := NewGroupedBenchmark()
	k := Key{Operator: "add", Style: "scalar", Offset: 0, Aligned: true, Size: 64}
	g.set(k, 12)

	v, ok := g.Value(k)
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)

	k.Aligned = false
	_, ok = g.Value(k)
	assert.False(t, ok)

	_, ok = g.Group("mul", "scalar", 0, true)
	assert.False(t, ok)
	assert.Equal(t, 1, g.Len())
}
