// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Thermo-collector receives temperature readings from any number of
// producers and republishes summary statistics for unrelated readers.
//
// Producers open the well-known rendezvous name (TempServer under
// /tmp/thermo by default) and send fixed-size readings, each answered
// synchronously with an ACK once the reading is in the window. A
// single listener goroutine serves every producer, so readings enter
// the window one at a time.
//
// Data flow:
//
//	producer → rendezvous name → listener → rolling window → publisher → /dev/shm/temp_stats_shm
//
// Every publisher period (default 5s) the window's average, minimum,
// maximum and count are written to the shared statistics region with
// a fresh timestamp. The listener also refreshes that timestamp on
// every accepted reading, so the region's last-updated field reports
// whichever of the two wrote last; its writer field says which.
//
// Optional surfaces, both configured in the YAML config:
//   - a CBOR control socket answering "status" and "stats"
//   - a Prometheus /metrics endpoint
//
// SIGINT or SIGTERM detaches the name, unmaps and removes the region
// and removes the control socket.
package main
