package benchmark

import (
	"fmt"
	"strconv"
)

// Key identifies one benchmark group: an operator run in one processing style
// at one offset, alignment and data size.
type Key struct {
	Operator string
	Style    string
	Offset   int64
	Aligned  bool
	Size     int64
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%d/%s/%d", k.Operator, k.Style, k.Offset, strconv.FormatBool(k.Aligned), k.Size)
}

// SampleRecord is one line of a benchmark report: the group key plus every
// raw duration the binary measured for it, in emission order.
type SampleRecord struct {
	Operator string
	Style    string
	Size     int64
	Offset   int64
	Aligned  bool
	Samples  []float64
}

// Key returns the grouping key of the record.
func (r SampleRecord) Key() Key {
	return Key{
		Operator: r.Operator,
		Style:    r.Style,
		Offset:   r.Offset,
		Aligned:  r.Aligned,
		Size:     r.Size,
	}
}
