// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock lets time-driven code run against either the wall
// clock or a test-controlled one.
//
// The stats publisher ticks on a fixed period and the producer sleeps
// between sends. Both take a [Clock] instead of calling the time
// package, so tests can drive whole publish cycles without waiting:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go publisher.run(ctx)
//	fake.WaitForTimers(1)       // publisher has registered its ticker
//	fake.Advance(5 * time.Second)
//
// WaitForTimers closes the race between a goroutine registering a
// timer and the test advancing past it.
package clock
