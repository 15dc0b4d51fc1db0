// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by the socket and goroutine
// tests across the repository.
//
// [SocketDir] returns a short temporary directory for Unix sockets.
// sun_path is limited to 108 bytes, and t.TempDir() paths under some
// test runners exceed it.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so a hung goroutine fails the test instead of hanging it.
// They are the only places tests wait on the wall clock; everything
// periodic in production code runs on lib/clock and is driven by a
// fake clock in tests.
//
// All helpers fail the test via t.Fatalf rather than returning errors.
package testutil
