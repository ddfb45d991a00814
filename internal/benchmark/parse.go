package benchmark

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedRecord marks a report line that does not follow the
// operator,style,size,offset,aligned,duration... layout.
var ErrMalformedRecord = errors.New("malformed record")

const (
	fieldOperator = iota
	fieldStyle
	fieldSize
	fieldOffset
	fieldAligned
	fieldFirstDuration
)

// maxLineSize bounds a single report line.
const maxLineSize = 1 << 20

// ParseError describes a report line that could not be parsed.
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s %q: %v", e.Line, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func malformed(field, value string, cause error) *ParseError {
	err := ErrMalformedRecord
	if cause != nil {
		err = fmt.Errorf("%w: %v", ErrMalformedRecord, cause)
	}
	return &ParseError{Field: field, Value: value, Err: err}
}

// ParseRecord parses a single report line.
//
// Size and offset are base-10 integers, the aligned flag is true only for the
// exact literal "1", and at least one finite duration must follow. Numeric
// fields may carry surrounding whitespace; operator, style and the aligned
// flag are taken verbatim.
func ParseRecord(line string) (SampleRecord, error) {
	fields := strings.Split(line, ",")
	if len(fields) <= fieldFirstDuration {
		return SampleRecord{}, malformed("record", line,
			fmt.Errorf("expected at least %d fields, got %d", fieldFirstDuration+1, len(fields)))
	}

	rec := SampleRecord{
		Operator: fields[fieldOperator],
		Style:    fields[fieldStyle],
		Aligned:  fields[fieldAligned] == "1",
	}
	if rec.Operator == "" {
		return SampleRecord{}, malformed("operator", rec.Operator, errors.New("empty"))
	}

	size, err := strconv.ParseInt(strings.TrimSpace(fields[fieldSize]), 10, 64)
	if err != nil {
		return SampleRecord{}, malformed("size", fields[fieldSize], err)
	}
	if size < 0 {
		return SampleRecord{}, malformed("size", fields[fieldSize], errors.New("negative"))
	}
	rec.Size = size

	offset, err := strconv.ParseInt(strings.TrimSpace(fields[fieldOffset]), 10, 64)
	if err != nil {
		return SampleRecord{}, malformed("offset", fields[fieldOffset], err)
	}
	rec.Offset = offset

	rec.Samples = make([]float64, 0, len(fields)-fieldFirstDuration)
	for _, f := range fields[fieldFirstDuration:] {
		d, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return SampleRecord{}, malformed("duration", f, err)
		}
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return SampleRecord{}, malformed("duration", f, errors.New("not finite"))
		}
		rec.Samples = append(rec.Samples, d)
	}
	return rec, nil
}

// scanLines calls fn for every non-blank line with its 1-based line number.
func scanLines(r io.Reader, fn func(n int, line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	return nil
}

// ParseReport parses every record of a report, stopping at the first
// malformed line.
func ParseReport(r io.Reader) ([]SampleRecord, error) {
	var records []SampleRecord
	err := scanLines(r, func(n int, line string) error {
		rec, err := ParseRecord(line)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = n
			}
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ParseReportSkipMalformed parses every well-formed record of a report and
// returns the malformed lines separately. Read errors still fail.
func ParseReportSkipMalformed(r io.Reader) ([]SampleRecord, []*ParseError, error) {
	var (
		records []SampleRecord
		skipped []*ParseError
	)
	err := scanLines(r, func(n int, line string) error {
		rec, err := ParseRecord(line)
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				return err
			}
			pe.Line = n
			skipped = append(skipped, pe)
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return records, skipped, nil
}
