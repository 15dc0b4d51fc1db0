// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the entrypoint error handler shared by the
// thermo binaries. main() calls [Fatal] with the error from run(),
// where the structured logger may not exist yet.
package process
