// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package window implements the collector's rolling window: a
// fixed-capacity ring of the most recent temperature readings, with
// summary statistics computed over whatever it currently holds.
//
// A single mutex serializes every push and every aggregate
// computation. At a few thousand samples and a handful of producers
// there is nothing to gain from reader/writer separation, and a single
// lock makes the consistency argument trivial: an Aggregate always
// reflects some prefix of the push history, never a half-applied push.
package window

import (
	"fmt"
	"sync"
)

// DefaultCapacity is the number of readings retained by the collector.
const DefaultCapacity = 1024

// Aggregate summarizes the window's contents at one instant. When
// Count is zero every other field is zero as well.
type Aggregate struct {
	Average float64
	Minimum float64
	Maximum float64
	Count   int
}

// Window is a fixed-capacity ring of float64 samples. When full, each
// Push overwrites the oldest sample. All methods are safe for
// concurrent use.
type Window struct {
	mutex   sync.Mutex
	samples []float64
	// next is the slot the next Push writes. The oldest retained
	// sample lives count slots behind it (mod capacity).
	next  int
	count int
	// total counts every Push ever made, evicted or not.
	total uint64
}

// New creates an empty window. Panics if capacity is not positive.
func New(capacity int) *Window {
	if capacity <= 0 {
		panic(fmt.Sprintf("window: capacity must be positive, got %d", capacity))
	}
	return &Window{samples: make([]float64, capacity)}
}

// Push appends value, evicting the oldest sample if the window is full.
func (w *Window) Push(value float64) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.samples[w.next] = value
	w.next = (w.next + 1) % len(w.samples)
	if w.count < len(w.samples) {
		w.count++
	}
	w.total++
}

// Aggregate computes average, minimum, maximum and count over the
// retained samples, scanning them oldest first.
func (w *Window) Aggregate() Aggregate {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.count == 0 {
		return Aggregate{}
	}

	capacity := len(w.samples)
	start := w.next + capacity - w.count
	first := w.samples[start%capacity]
	sum, minimum, maximum := 0.0, first, first
	for i := 0; i < w.count; i++ {
		value := w.samples[(start+i)%capacity]
		sum += value
		if value < minimum {
			minimum = value
		}
		if value > maximum {
			maximum = value
		}
	}

	return Aggregate{
		Average: sum / float64(w.count),
		Minimum: minimum,
		Maximum: maximum,
		Count:   w.count,
	}
}

// Values returns a copy of the retained samples, oldest first.
func (w *Window) Values() []float64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	capacity := len(w.samples)
	values := make([]float64, w.count)
	start := w.next + capacity - w.count
	for i := range values {
		values[i] = w.samples[(start+i)%capacity]
	}
	return values
}

// Len returns the number of retained samples.
func (w *Window) Len() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.count
}

// Capacity returns the maximum number of retained samples.
func (w *Window) Capacity() int {
	return len(w.samples)
}

// Total returns the number of Push calls since creation.
func (w *Window) Total() uint64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.total
}
