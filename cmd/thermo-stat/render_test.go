// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/thermo/lib/schema/collector"
	"github.com/bureau-foundation/thermo/lib/statsregion"
)

var testEpoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testSnapshot() statsregion.Snapshot {
	return statsregion.Snapshot{
		Sequence:    42,
		Average:     25,
		Minimum:     20,
		Maximum:     30,
		Count:       3,
		LastWriter:  statsregion.WriterPublisher,
		LastUpdated: testEpoch,
	}
}

func TestRenderRegionPlain(t *testing.T) {
	output := newView(false).renderRegion("/dev/shm/temp_stats_shm", testSnapshot(), testEpoch.Add(2*time.Second))

	expected := `Temperature statistics
Region     /dev/shm/temp_stats_shm
Readings   3
Average    25.000
Minimum    20.000
Maximum    30.000
Updated    2026-01-01T12:00:00Z (2s ago, by publisher)
Sequence   42
`
	if output != expected {
		t.Fatalf("renderRegion output:\n%s\nwant:\n%s", output, expected)
	}
}

func TestRenderRegionEmpty(t *testing.T) {
	snapshot := statsregion.Snapshot{LastUpdated: testEpoch}
	output := newView(false).renderRegion("/r", snapshot, testEpoch)

	if !strings.Contains(output, "Readings   none yet\n") {
		t.Errorf("empty region output missing 'none yet':\n%s", output)
	}
	if strings.Contains(output, "Average") {
		t.Errorf("empty region shows an average:\n%s", output)
	}
}

func TestRenderRegionStale(t *testing.T) {
	fresh := newView(false).renderRegion("/r", testSnapshot(), testEpoch.Add(staleAfter))
	if strings.Contains(fresh, "[stale]") {
		t.Errorf("snapshot exactly at the threshold marked stale:\n%s", fresh)
	}

	stale := newView(false).renderRegion("/r", testSnapshot(), testEpoch.Add(staleAfter+time.Second))
	if !strings.Contains(stale, "[stale]") {
		t.Errorf("old snapshot not marked stale:\n%s", stale)
	}
}

func TestRenderStyledKeepsValues(t *testing.T) {
	output := newView(true).renderRegion("/r", testSnapshot(), testEpoch)
	for _, want := range []string{"25.000", "20.000", "30.000", "publisher"} {
		if !strings.Contains(output, want) {
			t.Errorf("styled output missing %q:\n%s", want, output)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	output := newView(false).renderStatus(collector.StatusResponse{
		InstanceID:       "9b2e",
		UptimeSeconds:    90.4,
		RendezvousPath:   "/tmp/thermo/TempServer",
		ReadingsAccepted: 10,
		ReadingsRejected: 1,
		PublishCycles:    18,
		WindowLength:     10,
		WindowCapacity:   1024,
		TotalPushes:      10,
	})

	for _, want := range []string{
		"Instance   9b2e\n",
		"Uptime     1m30s\n",
		"Accepted   10\n",
		"Rejected   1\n",
		"Window     10/1024 (10 pushed)\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("status output missing %q:\n%s", want, output)
		}
	}
}

func TestNewReport(t *testing.T) {
	r := newReport("/r", testSnapshot(), testEpoch.Add(20*time.Second), nil)

	if r.Published.Count != 3 || r.Published.Average != 25 || r.Published.LastWriter != "publisher" {
		t.Errorf("published = %+v", r.Published)
	}
	if r.Published.LastUpdated != testEpoch.Unix() {
		t.Errorf("last updated = %d, want %d", r.Published.LastUpdated, testEpoch.Unix())
	}
	if r.AgeSeconds != 20 || !r.Stale {
		t.Errorf("age = %v stale = %v, want 20 and stale", r.AgeSeconds, r.Stale)
	}
}
