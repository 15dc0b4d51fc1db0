// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Thermo-stat prints the statistics the collector publishes in its
// shared region. It maps the region read-only and never blocks the
// collector for longer than one read.
//
//	thermo-stat                  # one snapshot, styled on a terminal
//	thermo-stat --json           # one snapshot as JSON
//	thermo-stat --watch          # live view, refreshed every --interval
//	thermo-stat --control /tmp/thermo/collector.sock
//	                             # also ask the collector for its status
//
// A snapshot whose timestamp is older than three default publisher
// periods is flagged stale: the collector has probably exited without
// its region being removed, or is wedged.
package main
