package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"benchplot/internal/benchmark"
	"benchplot/internal/series"
)

// IgnoreFilter builds the record filter from the ignore.* keys.
func IgnoreFilter() (*benchmark.IgnoreFilter, error) {
	f := &benchmark.IgnoreFilter{}
	if styles := viper.GetStringSlice(KeyIgnoreStyle); len(styles) > 0 {
		f.IgnoreStyle(styles...)
	}

	for _, s := range viper.GetStringSlice(KeyIgnoreOffset) {
		o, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid offset %q", KeyIgnoreOffset, s)
		}
		f.IgnoreOffset(o)
	}

	for _, s := range viper.GetStringSlice(KeyIgnoreAligned) {
		a, err := ParseAligned(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyIgnoreAligned, err)
		}
		f.IgnoreAligned(a)
	}

	for _, s := range viper.GetStringSlice(KeyIgnoreSize) {
		size, err := ParseSize(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyIgnoreSize, err)
		}
		f.IgnoreSize(size)
	}
	return f, nil
}

// Reducer builds the sample reduction from the reduce.* keys.
func Reducer() (benchmark.Reducer, error) {
	stat, err := benchmark.ParseStatistic(viper.GetString(KeyReduceStatistic))
	if err != nil {
		return benchmark.Reducer{}, fmt.Errorf("%s: %w", KeyReduceStatistic, err)
	}
	return benchmark.Reducer{
		Statistic: stat,
		Strict:    viper.GetBool(KeyReduceStrict),
	}, nil
}

// Pairing returns the difference pairing mode.
func Pairing() (series.Pairing, error) {
	p, err := series.ParsePairing(viper.GetString(KeySeriesPairing))
	if err != nil {
		return "", fmt.Errorf("%s: %w", KeySeriesPairing, err)
	}
	return p, nil
}

// ParseAligned accepts 1/0, true/false and aligned/unaligned.
func ParseAligned(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "aligned":
		return true, nil
	case "0", "false", "unaligned":
		return false, nil
	}
	return false, fmt.Errorf("invalid aligned value %q", s)
}

// ParseSize reads a byte count, optionally suffixed with B, KB, MB or GB
// (binary multiples).
func ParseSize(s string) (int64, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	mult := int64(1)
	for _, u := range []struct {
		suffix string
		mult   int64
	}{{"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10}, {"B", 1}} {
		if strings.HasSuffix(v, u.suffix) {
			v = strings.TrimSpace(strings.TrimSuffix(v, u.suffix))
			mult = u.mult
			break
		}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if n > math.MaxInt64/mult {
		return 0, fmt.Errorf("size %q out of range", s)
	}
	return n * mult, nil
}
