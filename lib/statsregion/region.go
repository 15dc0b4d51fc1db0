// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package statsregion

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/thermo/lib/window"
)

const (
	// Size is the byte size of the mapped region.
	Size = 48

	// DefaultName is the region's well-known name in the shared
	// memory namespace.
	DefaultName = "temp_stats_shm"

	// ShmDir is where POSIX shared memory objects live on Linux.
	ShmDir = "/dev/shm"
)

const (
	offsetSequence    = 0
	offsetAverage     = 8
	offsetMinimum     = 16
	offsetMaximum     = 24
	offsetCount       = 32
	offsetWriter      = 36
	offsetLastUpdated = 40
)

// Writer identifies which code path performed the most recent write.
type Writer uint32

const (
	WriterNone      Writer = 0
	WriterPublisher Writer = 1
	WriterListener  Writer = 2
)

func (w Writer) String() string {
	switch w {
	case WriterNone:
		return "none"
	case WriterPublisher:
		return "publisher"
	case WriterListener:
		return "listener"
	default:
		return fmt.Sprintf("writer(%d)", uint32(w))
	}
}

// ErrClosed is returned by operations on a closed Region.
var ErrClosed = errors.New("stats region closed")

// Snapshot is one consistent read of the region.
type Snapshot struct {
	Sequence    uint64
	Average     float64
	Minimum     float64
	Maximum     float64
	Count       int32
	LastWriter  Writer
	LastUpdated time.Time
}

// Region is a mapping of the stats region. A Region from Create is
// writable and owns the name; one from Open is read-only.
type Region struct {
	mutex  sync.Mutex
	path   string
	file   *os.File
	data   []byte
	owner  bool
	closed bool
}

// Path resolves a region name in the shared memory namespace. A leading
// slash, as used by shm_open, is accepted.
func Path(name string) string {
	return filepath.Join(ShmDir, filepath.Base("/"+name))
}

// Create creates (or takes over) the region at path, sizes it, maps it
// read-write, zeroes the statistics and stamps now as the last update.
// The caller owns the region and must Close it, which also unlinks path.
func Create(path string, now time.Time) (*Region, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating stats region %s: %w", path, err)
	}
	fd := int(file.Fd())

	if err := unix.Ftruncate(fd, Size); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("sizing stats region %s to %d bytes: %w", path, Size, err)
	}

	data, err := unix.Mmap(fd, 0, Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("mapping stats region %s: %w", path, err)
	}

	region := &Region{path: path, file: file, data: data, owner: true}
	if err := region.write(func() {
		clear(region.data)
		region.putTimestamp(now)
	}); err != nil {
		region.Close()
		return nil, err
	}
	return region, nil
}

// Open maps an existing region read-only.
func Open(path string) (*Region, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stats region %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stating stats region %s: %w", path, err)
	}
	if info.Size() != Size {
		file.Close()
		return nil, fmt.Errorf("stats region %s is %d bytes, want %d", path, info.Size(), Size)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, Size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mapping stats region %s: %w", path, err)
	}
	return &Region{path: path, file: file, data: data}, nil
}

// Publish writes a full statistics record stamped with now.
func (r *Region) Publish(aggregate window.Aggregate, now time.Time) error {
	return r.write(func() {
		binary.LittleEndian.PutUint64(r.data[offsetAverage:], math.Float64bits(aggregate.Average))
		binary.LittleEndian.PutUint64(r.data[offsetMinimum:], math.Float64bits(aggregate.Minimum))
		binary.LittleEndian.PutUint64(r.data[offsetMaximum:], math.Float64bits(aggregate.Maximum))
		binary.LittleEndian.PutUint32(r.data[offsetCount:], uint32(int32(aggregate.Count)))
		r.putTimestamp(now)
		r.bump(WriterPublisher)
	})
}

// Touch updates only the last-updated timestamp.
func (r *Region) Touch(now time.Time) error {
	return r.write(func() {
		r.putTimestamp(now)
		r.bump(WriterListener)
	})
}

// Read returns a consistent snapshot of the region.
func (r *Region) Read() (Snapshot, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return Snapshot{}, ErrClosed
	}
	if err := r.lock(unix.LOCK_SH); err != nil {
		return Snapshot{}, err
	}
	defer r.unlock()

	return Snapshot{
		Sequence:    binary.LittleEndian.Uint64(r.data[offsetSequence:]),
		Average:     math.Float64frombits(binary.LittleEndian.Uint64(r.data[offsetAverage:])),
		Minimum:     math.Float64frombits(binary.LittleEndian.Uint64(r.data[offsetMinimum:])),
		Maximum:     math.Float64frombits(binary.LittleEndian.Uint64(r.data[offsetMaximum:])),
		Count:       int32(binary.LittleEndian.Uint32(r.data[offsetCount:])),
		LastWriter:  Writer(binary.LittleEndian.Uint32(r.data[offsetWriter:])),
		LastUpdated: time.Unix(int64(binary.LittleEndian.Uint64(r.data[offsetLastUpdated:])), 0),
	}, nil
}

// Name returns the filesystem path backing the region.
func (r *Region) Name() string { return r.path }

// Close unmaps the region and closes its descriptor. The owning Region
// also removes the name so no reader can map a stale record. Close is
// idempotent.
func (r *Region) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	if err := unix.Munmap(r.data); err != nil {
		errs = append(errs, fmt.Errorf("unmapping stats region: %w", err))
	}
	r.data = nil
	if err := r.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing stats region: %w", err))
	}
	if r.owner {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("removing stats region %s: %w", r.path, err))
		}
	}
	return errors.Join(errs...)
}

// write runs mutate with exclusive access to a writable region.
func (r *Region) write(mutate func()) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return ErrClosed
	}
	if !r.owner {
		return fmt.Errorf("stats region %s is mapped read-only", r.path)
	}
	if err := r.lock(unix.LOCK_EX); err != nil {
		return err
	}
	defer r.unlock()

	mutate()
	return nil
}

func (r *Region) putTimestamp(now time.Time) {
	binary.LittleEndian.PutUint64(r.data[offsetLastUpdated:], uint64(now.Unix()))
}

func (r *Region) bump(writer Writer) {
	sequence := binary.LittleEndian.Uint64(r.data[offsetSequence:])
	binary.LittleEndian.PutUint64(r.data[offsetSequence:], sequence+1)
	binary.LittleEndian.PutUint32(r.data[offsetWriter:], uint32(writer))
}

func (r *Region) lock(how int) error {
	for {
		err := unix.Flock(int(r.file.Fd()), how)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EINTR) {
			return fmt.Errorf("locking stats region %s: %w", r.path, err)
		}
	}
}

func (r *Region) unlock() {
	unix.Flock(int(r.file.Fd()), unix.LOCK_UN)
}
