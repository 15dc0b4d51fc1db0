// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package window

import (
	"math"
	"math/rand/v2"
	"sync"
	"testing"
)

func TestAggregateEmpty(t *testing.T) {
	window := New(8)
	if got := window.Aggregate(); got != (Aggregate{}) {
		t.Fatalf("empty aggregate = %+v, want zero", got)
	}
	if window.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", window.Len())
	}
}

func TestAggregateThreeReadings(t *testing.T) {
	window := New(DefaultCapacity)
	window.Push(20.0)
	window.Push(25.0)
	window.Push(30.0)

	want := Aggregate{Average: 25.0, Minimum: 20.0, Maximum: 30.0, Count: 3}
	if got := window.Aggregate(); got != want {
		t.Fatalf("aggregate = %+v, want %+v", got, want)
	}
}

func TestPushEvictsOldestWhenFull(t *testing.T) {
	window := New(3)
	for _, value := range []float64{1.0, 2.0, 3.0, 4.0} {
		window.Push(value)
	}

	values := window.Values()
	if len(values) != 3 || values[0] != 2.0 || values[1] != 3.0 || values[2] != 4.0 {
		t.Fatalf("retained = %v, want [2 3 4]", values)
	}

	want := Aggregate{Average: 3.0, Minimum: 2.0, Maximum: 4.0, Count: 3}
	if got := window.Aggregate(); got != want {
		t.Fatalf("aggregate = %+v, want %+v", got, want)
	}
	if window.Total() != 4 {
		t.Fatalf("Total() = %d, want 4", window.Total())
	}
}

func TestAggregateMatchesDirectComputation(t *testing.T) {
	random := rand.New(rand.NewPCG(1, 2))

	for _, count := range []int{1, 2, 17, 100, 128} {
		window := New(128)
		values := make([]float64, count)
		for i := range values {
			values[i] = 15.0 + random.Float64()*25.0
		}
		// Push order must not matter for the aggregate.
		random.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
		for _, value := range values {
			window.Push(value)
		}

		sum, minimum, maximum := 0.0, math.Inf(1), math.Inf(-1)
		for _, value := range values {
			sum += value
			minimum = math.Min(minimum, value)
			maximum = math.Max(maximum, value)
		}

		got := window.Aggregate()
		if got.Count != count {
			t.Fatalf("count %d: Count = %d", count, got.Count)
		}
		if got.Minimum != minimum || got.Maximum != maximum {
			t.Fatalf("count %d: min/max = %v/%v, want %v/%v", count, got.Minimum, got.Maximum, minimum, maximum)
		}
		if math.Abs(got.Average-sum/float64(count)) > 1e-9 {
			t.Fatalf("count %d: average = %v, want %v", count, got.Average, sum/float64(count))
		}
	}
}

func TestOverflowKeepsMostRecent(t *testing.T) {
	const capacity = 16
	window := New(capacity)
	for i := 1; i <= 100; i++ {
		window.Push(float64(i))
	}

	got := window.Aggregate()
	want := Aggregate{Average: (85.0 + 100.0) / 2, Minimum: 85, Maximum: 100, Count: capacity}
	if got != want {
		t.Fatalf("aggregate = %+v, want %+v", got, want)
	}
	values := window.Values()
	for i, value := range values {
		if value != float64(85+i) {
			t.Fatalf("values[%d] = %v, want %d", i, value, 85+i)
		}
	}
}

func TestNewPanicsOnNonPositiveCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero capacity")
		}
	}()
	New(0)
}

// TestAggregateNeverTorn pushes 1, 2, 3, ... from one writer while
// readers aggregate concurrently. Every aggregate must describe a
// contiguous run ending at the latest push: max-min == count-1 and the
// average is the midpoint. A torn read would break one of these.
func TestAggregateNeverTorn(t *testing.T) {
	const capacity = 64
	const pushes = 20000
	window := New(capacity)

	var readers sync.WaitGroup
	stop := make(chan struct{})
	failures := make(chan string, 4)

	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				got := window.Aggregate()
				if got.Count == 0 {
					continue
				}
				if got.Maximum-got.Minimum != float64(got.Count-1) ||
					got.Average != (got.Minimum+got.Maximum)/2 ||
					(got.Count < capacity && got.Minimum != 1) {
					select {
					case failures <- "inconsistent aggregate":
					default:
					}
					return
				}
			}
		}()
	}

	for i := 1; i <= pushes; i++ {
		window.Push(float64(i))
	}
	close(stop)
	readers.Wait()

	select {
	case failure := <-failures:
		t.Fatal(failure)
	default:
	}
}

func TestConcurrentPushesAreAllCounted(t *testing.T) {
	const writers = 8
	const perWriter = 1000
	window := New(DefaultCapacity)

	var group sync.WaitGroup
	for w := 0; w < writers; w++ {
		group.Add(1)
		go func() {
			defer group.Done()
			for i := 0; i < perWriter; i++ {
				window.Push(21.0)
			}
		}()
	}
	group.Wait()

	if window.Total() != writers*perWriter {
		t.Fatalf("Total() = %d, want %d", window.Total(), writers*perWriter)
	}
	got := window.Aggregate()
	if got.Count != DefaultCapacity || got.Average != 21.0 {
		t.Fatalf("aggregate = %+v", got)
	}
}
