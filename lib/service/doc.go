// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the scaffolding thermo binaries share for
// their operator-facing surface:
//
//   - Socket server: a CBOR request/response protocol on a Unix
//     socket, one request per connection, dispatched by "action",
//     with connection timeouts and graceful shutdown on context
//     cancellation.
//   - Client: the matching one-call-per-connection client.
//   - Logger: the standard structured logger for long-running
//     binaries.
//
// The collector's control socket is built from these pieces. The
// reading path between producers and the collector is a different
// protocol entirely (lib/rendezvous carrying lib/wire records) and does
// not go through this package.
//
// Binaries compose these pieces in their own run() functions; the
// package provides building blocks, not a runtime.
package service
