package benchmark

// IgnoreFilter excludes records by style, offset, alignment or size. A record
// is dropped when it matches any populated dimension. The zero value excludes
// nothing.
type IgnoreFilter struct {
	Styles  map[string]struct{}
	Offsets map[int64]struct{}
	Aligned map[bool]struct{}
	Sizes   map[int64]struct{}
}

func (f *IgnoreFilter) IgnoreStyle(styles ...string) *IgnoreFilter {
	if f.Styles == nil {
		f.Styles = make(map[string]struct{}, len(styles))
	}
	for _, s := range styles {
		f.Styles[s] = struct{}{}
	}
	return f
}

func (f *IgnoreFilter) IgnoreOffset(offsets ...int64) *IgnoreFilter {
	if f.Offsets == nil {
		f.Offsets = make(map[int64]struct{}, len(offsets))
	}
	for _, o := range offsets {
		f.Offsets[o] = struct{}{}
	}
	return f
}

func (f *IgnoreFilter) IgnoreAligned(aligned ...bool) *IgnoreFilter {
	if f.Aligned == nil {
		f.Aligned = make(map[bool]struct{}, len(aligned))
	}
	for _, a := range aligned {
		f.Aligned[a] = struct{}{}
	}
	return f
}

func (f *IgnoreFilter) IgnoreSize(sizes ...int64) *IgnoreFilter {
	if f.Sizes == nil {
		f.Sizes = make(map[int64]struct{}, len(sizes))
	}
	for _, s := range sizes {
		f.Sizes[s] = struct{}{}
	}
	return f
}

// Empty reports whether the filter excludes nothing.
func (f *IgnoreFilter) Empty() bool {
	return f == nil || len(f.Styles)+len(f.Offsets)+len(f.Aligned)+len(f.Sizes) == 0
}

// Excludes reports whether rec should be dropped before reduction.
func (f *IgnoreFilter) Excludes(rec SampleRecord) bool {
	if f == nil {
		return false
	}
	if _, ok := f.Styles[rec.Style]; ok {
		return true
	}
	if _, ok := f.Offsets[rec.Offset]; ok {
		return true
	}
	if _, ok := f.Aligned[rec.Aligned]; ok {
		return true
	}
	_, ok := f.Sizes[rec.Size]
	return ok
}
