// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/thermo/lib/clock"
	"github.com/bureau-foundation/thermo/lib/statsregion"
	"github.com/bureau-foundation/thermo/lib/window"
)

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestCollector builds a collector over a region in a temp
// directory. The region is closed when the test ends.
func newTestCollector(t *testing.T, fakeClock *clock.FakeClock, capacity int) *Collector {
	t.Helper()
	region, err := statsregion.Create(filepath.Join(t.TempDir(), "stats"), fakeClock.Now())
	if err != nil {
		t.Fatalf("creating region: %v", err)
	}
	t.Cleanup(func() { region.Close() })

	return &Collector{
		window:     window.New(capacity),
		region:     region,
		clock:      fakeClock,
		logger:     testLogger(),
		metrics:    newMetrics(),
		period:     5 * time.Second,
		startedAt:  fakeClock.Now(),
		instanceID: "test-instance",
		rendezvous: "/tmp/thermo/TempServer",
	}
}

func readSnapshot(t *testing.T, region *statsregion.Region) statsregion.Snapshot {
	t.Helper()
	snapshot, err := region.Read()
	if err != nil {
		t.Fatalf("reading region: %v", err)
	}
	return snapshot
}

// waitForSequence polls until the region's sequence passes after.
func waitForSequence(t *testing.T, region *statsregion.Region, after uint64) statsregion.Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		snapshot := readSnapshot(t, region)
		if snapshot.Sequence > after {
			return snapshot
		}
		if time.Now().After(deadline) {
			t.Fatalf("region sequence stuck at %d", snapshot.Sequence)
		}
		time.Sleep(time.Millisecond)
	}
}
