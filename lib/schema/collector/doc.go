// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package collector defines the response types of the collector's
// control socket actions. They travel as CBOR between thermo-collector
// and thermo-stat, and thermo-stat prints them as JSON under --json, so
// they carry json tags only (see lib/codec).
package collector
