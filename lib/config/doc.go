// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the thermo
// binaries.
//
// Configuration comes from at most one file, named by the THERMO_CONFIG
// environment variable (via [Load]) or a --config flag (via
// [LoadFile]). When neither is given the collector runs on [Default],
// which reproduces the well-known names every producer and reader
// expects: the TempServer rendezvous name under /tmp/thermo and the
// temp_stats_shm region under /dev/shm.
//
// The file may contain environment-specific sections (development,
// staging, production) whose non-empty values override the base
// values when [Config].Environment matches. Production without an
// explicit section gets JSON logging at info level.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${THERMO_DIR} (the rendezvous directory) and
// ${VAR:-default} patterns are expanded. No other environment
// variables override config values.
package config
