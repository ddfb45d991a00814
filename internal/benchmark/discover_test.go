package benchmark

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportName(t *testing.T) {
	ts := time.Date(2024, time.March, 7, 14, 5, 9, 0, time.Local)
	assert.Equal(t, "benchmark_07_03_2024__14_05_09.csv", ReportName(ts))
}

func TestFindLatestReport(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	// Lexical order differs from chronological order with day-first names.
	write("benchmark_31_01_2024__10_00_00.csv")
	write("benchmark_01_02_2024__09_00_00.csv")
	write("notes.csv")

	got, err := FindLatestReport(dir)
	require.NoError(t, err)
	assert.Equal(t, "benchmark_01_02_2024__09_00_00.csv", filepath.Base(got))
}

func TestFindLatestReport_ModTimeFallback(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "benchmark_old.csv")
	recent := filepath.Join(dir, "benchmark_new.csv")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(recent, []byte("x"), 0644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	got, err := FindLatestReport(dir)
	require.NoError(t, err)
	assert.Equal(t, recent, got)
}

func TestFindLatestReport_None(t *testing.T) {
	_, err := FindLatestReport(t.TempDir())
	assert.ErrorIs(t, err, ErrNoReport)
}
