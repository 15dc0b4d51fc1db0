// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil classifies socket errors shared by the rendezvous
// channel and the control socket.
package netutil
