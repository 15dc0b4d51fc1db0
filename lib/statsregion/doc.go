// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package statsregion publishes the collector's summary statistics in a
// small memory-mapped file that unrelated processes can map and read.
//
// The region lives in the POSIX shared memory namespace (/dev/shm), so
// any process that knows the name can map it, with no need to talk to
// the collector. The collector is the only writer. It creates the
// region with [Create], writes it with [Region.Publish] and
// [Region.Touch], and removes it with [Region.Close]. Readers use
// [Open] and [Region.Read].
//
// # Layout
//
// The region is [Size] bytes, little-endian, fixed offsets:
//
//	offset  0  uint64  sequence (bumped by every write)
//	offset  8  float64 average
//	offset 16  float64 minimum
//	offset 24  float64 maximum
//	offset 32  int32   count
//	offset 36  uint32  last writer (0 none, 1 publisher, 2 listener)
//	offset 40  int64   last updated, Unix seconds
//
// # Locking
//
// Writers hold an exclusive flock(2) on the backing file and readers a
// shared one, so a reader never observes a half-written record. The
// kernel drops flock locks when their holder exits, so a reader killed
// mid-read cannot wedge the collector. Within one process a sync.Mutex
// serializes goroutines sharing the same descriptor, since flock locks
// belong to the open file description rather than to a thread.
//
// # Two writers of one timestamp
//
// The publisher writes the whole record every period; the listener
// bumps only the timestamp on every accepted reading. Both go through
// the same lock and the last one wins. Readers that care which path
// produced the current timestamp can check LastWriter, and Sequence
// lets them detect that anything changed between two reads.
package statsregion
