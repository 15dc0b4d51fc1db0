// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/thermo/lib/clock"
	"github.com/bureau-foundation/thermo/lib/statsregion"
	"github.com/bureau-foundation/thermo/lib/window"
)

// Collector holds the collector's runtime state. Created in serve()
// and shared between the listener, the publisher, and the control
// socket handlers.
type Collector struct {
	window *window.Window
	region *statsregion.Region
	clock  clock.Clock
	logger *slog.Logger

	metrics *metrics

	period     time.Duration
	startedAt  time.Time
	instanceID string
	rendezvous string

	// Written by the listener and publisher goroutines, read by the
	// status handler.
	accepted      atomic.Uint64
	rejected      atomic.Uint64
	receiveErrors atomic.Uint64
	publishCycles atomic.Uint64
}
