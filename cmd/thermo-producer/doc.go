// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Thermo-producer sends a pseudo-random temperature reading to the
// collector every INTERVAL seconds (default 1.0) until interrupted.
//
//	thermo-producer [INTERVAL] [--socket PATH]
//
// Readings are uniform in [15, 40) degrees and carry the producer's
// process ID. Each send blocks until the collector acknowledges it.
// The producer does not reconnect: if the collector is absent at
// startup, or a send fails, it logs the failure and exits non-zero.
package main
