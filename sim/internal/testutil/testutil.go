// Package testutil provides shared test infrastructure for netguard-sim.
// It consolidates scenario fixtures and event-log assertions used across
// sim/ and cmd/ test packages.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/netguard-sim/netguard-sim/sim/eventlog"
)

// WriteTempYAML writes content to a fresh file under t.TempDir and returns its path.
func WriteTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp YAML: %v", err)
	}
	return path
}

// AssertNonDecreasing fails if any record's timestamp is earlier than the
// one before it.
func AssertNonDecreasing(t *testing.T, records []eventlog.Record) {
	t.Helper()
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp < records[i-1].Timestamp {
			t.Fatalf("record %d at %v precedes record %d at %v", i, records[i].Timestamp, i-1, records[i-1].Timestamp)
		}
	}
}

// WindowKey identifies one (source, window) bucket.
type WindowKey struct {
	Source string
	Window int64
}

// CountByWindow counts records per (source, floor(timestamp/windowSeconds)).
func CountByWindow(records []eventlog.Record, windowSeconds float64) map[WindowKey]int {
	counts := make(map[WindowKey]int)
	for _, r := range records {
		w := int64(math.Floor(r.Timestamp/windowSeconds + 1e-9))
		counts[WindowKey{Source: r.Source, Window: w}]++
	}
	return counts
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
