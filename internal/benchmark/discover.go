package benchmark

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoReport is returned when a directory holds no benchmark report.
var ErrNoReport = errors.New("no benchmark report found")

const (
	reportPrefix = "benchmark_"
	reportSuffix = ".csv"
	// TimestampLayout is the day-first layout the benchmark binary embeds in
	// report names and benchplot uses for plot directories.
	TimestampLayout = "02_01_2006__15_04_05"
)

// ReportName returns the file name the benchmark binary uses for a run
// started at t.
func ReportName(t time.Time) string {
	return reportPrefix + t.Format(TimestampLayout) + reportSuffix
}

// reportTime extracts the timestamp embedded in a report name.
func reportTime(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, reportSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, reportPrefix), reportSuffix)
	t, err := time.ParseInLocation(TimestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FindLatestReport returns the newest benchmark_*.csv in dir. Names carrying
// a timestamp are ordered by it; other matches fall back to their
// modification time.
func FindLatestReport(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, reportPrefix+"*"+reportSuffix))
	if err != nil {
		return "", fmt.Errorf("failed to list reports: %w", err)
	}

	var (
		latest     string
		latestTime time.Time
	)
	for _, path := range matches {
		t, ok := reportTime(filepath.Base(path))
		if !ok {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			t = info.ModTime()
		}
		if latest == "" || t.After(latestTime) {
			latest, latestTime = path, t
		}
	}
	if latest == "" {
		return "", fmt.Errorf("%w in %s", ErrNoReport, dir)
	}
	return latest, nil
}
