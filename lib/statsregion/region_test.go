// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package statsregion

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/thermo/lib/window"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func createRegion(t *testing.T) *Region {
	t.Helper()
	region, err := Create(filepath.Join(t.TempDir(), "stats"), testEpoch)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { region.Close() })
	return region
}

func readSnapshot(t *testing.T, region *Region) Snapshot {
	t.Helper()
	snapshot, err := region.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return snapshot
}

func TestCreateInitializesRegion(t *testing.T) {
	region := createRegion(t)

	info, err := os.Stat(region.Name())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != Size {
		t.Fatalf("region file is %d bytes, want %d", info.Size(), Size)
	}

	snapshot := readSnapshot(t, region)
	if snapshot.Average != 0 || snapshot.Minimum != 0 || snapshot.Maximum != 0 || snapshot.Count != 0 {
		t.Fatalf("fresh region has statistics: %+v", snapshot)
	}
	if snapshot.Sequence != 0 || snapshot.LastWriter != WriterNone {
		t.Fatalf("fresh region sequence/writer = %d/%v", snapshot.Sequence, snapshot.LastWriter)
	}
	if !snapshot.LastUpdated.Equal(testEpoch) {
		t.Fatalf("LastUpdated = %v, want %v", snapshot.LastUpdated, testEpoch)
	}
}

func TestCreateResetsStaleRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats")
	if err := os.WriteFile(path, []byte("leftover from a crashed collector, longer than the region"), 0o644); err != nil {
		t.Fatalf("writing stale file: %v", err)
	}

	region, err := Create(path, testEpoch)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer region.Close()

	snapshot := readSnapshot(t, region)
	if snapshot.Count != 0 || snapshot.Sequence != 0 {
		t.Fatalf("stale contents survived: %+v", snapshot)
	}
}

func TestPublishWritesAllFields(t *testing.T) {
	region := createRegion(t)
	publishedAt := testEpoch.Add(5 * time.Second)

	aggregate := window.Aggregate{Average: 25.0, Minimum: 20.0, Maximum: 30.0, Count: 3}
	if err := region.Publish(aggregate, publishedAt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	snapshot := readSnapshot(t, region)
	if snapshot.Average != 25.0 || snapshot.Minimum != 20.0 || snapshot.Maximum != 30.0 || snapshot.Count != 3 {
		t.Fatalf("snapshot = %+v", snapshot)
	}
	if !snapshot.LastUpdated.Equal(publishedAt) {
		t.Fatalf("LastUpdated = %v, want %v", snapshot.LastUpdated, publishedAt)
	}
	if snapshot.Sequence != 1 || snapshot.LastWriter != WriterPublisher {
		t.Fatalf("sequence/writer = %d/%v, want 1/publisher", snapshot.Sequence, snapshot.LastWriter)
	}
}

func TestTouchUpdatesOnlyTimestamp(t *testing.T) {
	region := createRegion(t)

	aggregate := window.Aggregate{Average: 21.0, Minimum: 19.0, Maximum: 23.0, Count: 2}
	if err := region.Publish(aggregate, testEpoch.Add(time.Second)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	touchedAt := testEpoch.Add(9 * time.Second)
	if err := region.Touch(touchedAt); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	snapshot := readSnapshot(t, region)
	if snapshot.Average != 21.0 || snapshot.Minimum != 19.0 || snapshot.Maximum != 23.0 || snapshot.Count != 2 {
		t.Fatalf("Touch changed statistics: %+v", snapshot)
	}
	if !snapshot.LastUpdated.Equal(touchedAt) {
		t.Fatalf("LastUpdated = %v, want %v", snapshot.LastUpdated, touchedAt)
	}
	if snapshot.Sequence != 2 || snapshot.LastWriter != WriterListener {
		t.Fatalf("sequence/writer = %d/%v, want 2/listener", snapshot.Sequence, snapshot.LastWriter)
	}
}

func TestLastWriterWins(t *testing.T) {
	region := createRegion(t)

	// A touch stamped later followed by a publish stamped earlier: the
	// publish still lands last, and its timestamp is what readers see.
	if err := region.Touch(testEpoch.Add(10 * time.Second)); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := region.Publish(window.Aggregate{}, testEpoch.Add(5*time.Second)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	snapshot := readSnapshot(t, region)
	if !snapshot.LastUpdated.Equal(testEpoch.Add(5 * time.Second)) {
		t.Fatalf("LastUpdated = %v, want the publisher's timestamp", snapshot.LastUpdated)
	}
	if snapshot.LastWriter != WriterPublisher || snapshot.Sequence != 2 {
		t.Fatalf("sequence/writer = %d/%v", snapshot.Sequence, snapshot.LastWriter)
	}
}

func TestReaderSeesOwnerWrites(t *testing.T) {
	owner := createRegion(t)

	reader, err := Open(owner.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()

	aggregate := window.Aggregate{Average: 30.5, Minimum: 15.25, Maximum: 39.75, Count: 1024}
	if err := owner.Publish(aggregate, testEpoch.Add(time.Minute)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	snapshot := readSnapshot(t, reader)
	if snapshot.Average != 30.5 || snapshot.Minimum != 15.25 || snapshot.Maximum != 39.75 || snapshot.Count != 1024 {
		t.Fatalf("reader snapshot = %+v", snapshot)
	}
}

func TestReaderCannotWrite(t *testing.T) {
	owner := createRegion(t)
	reader, err := Open(owner.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()

	if err := reader.Touch(testEpoch); err == nil {
		t.Fatal("Touch on a read-only mapping succeeded")
	}
}

func TestReaderCloseKeepsName(t *testing.T) {
	owner := createRegion(t)
	reader, err := Open(owner.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := reader.Close(); err != nil {
		t.Fatalf("reader Close: %v", err)
	}
	if _, err := os.Stat(owner.Name()); err != nil {
		t.Fatalf("reader Close removed the region: %v", err)
	}
}

func TestOwnerCloseUnlinks(t *testing.T) {
	region, err := Create(filepath.Join(t.TempDir(), "stats"), testEpoch)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := region.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(region.Name()); !os.IsNotExist(err) {
		t.Fatalf("region still present after Close: %v", err)
	}
	if err := region.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := region.Read(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Read after Close = %v, want ErrClosed", err)
	}
	if err := region.Touch(testEpoch); !errors.Is(err, ErrClosed) {
		t.Fatalf("Touch after Close = %v, want ErrClosed", err)
	}
}

func TestOpenRejectsWrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short")
	if err := os.WriteFile(path, make([]byte, Size/2), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("Open accepted a short region")
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Open = %v, want os.ErrNotExist", err)
	}
}

func TestPath(t *testing.T) {
	for name, want := range map[string]string{
		"temp_stats_shm":  "/dev/shm/temp_stats_shm",
		"/temp_stats_shm": "/dev/shm/temp_stats_shm",
	} {
		if got := Path(name); got != want {
			t.Errorf("Path(%q) = %q, want %q", name, got, want)
		}
	}
}

// TestConcurrentPublishAndReadNeverTorn publishes records whose fields
// all derive from one value while a separate mapping reads. Every read
// must show fields from a single publish.
func TestConcurrentPublishAndReadNeverTorn(t *testing.T) {
	owner := createRegion(t)
	reader, err := Open(owner.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()

	stop := make(chan struct{})
	var group sync.WaitGroup
	torn := make(chan Snapshot, 1)

	group.Add(1)
	go func() {
		defer group.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			snapshot, err := reader.Read()
			if err != nil {
				return
			}
			value := float64(snapshot.Count)
			if snapshot.Average != value || snapshot.Minimum != value || snapshot.Maximum != value {
				select {
				case torn <- snapshot:
				default:
				}
				return
			}
		}
	}()

	for i := 1; i <= 5000; i++ {
		value := float64(i)
		aggregate := window.Aggregate{Average: value, Minimum: value, Maximum: value, Count: i}
		if err := owner.Publish(aggregate, testEpoch); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	close(stop)
	group.Wait()

	select {
	case snapshot := <-torn:
		t.Fatalf("torn read: %+v", snapshot)
	default:
	}
}
