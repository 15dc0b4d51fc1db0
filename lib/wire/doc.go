// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the two records exchanged on the rendezvous
// channel: the fixed-size reading a producer sends, and the text reply
// the collector sends back.
//
// A reading is exactly [RequestSize] bytes, little-endian, with no
// padding:
//
//	offset 0  int32   kind (unused; producers send KindReading)
//	offset 4  int32   producer id
//	offset 8  float64 temperature
//
// A reply is NUL-terminated ASCII of at most [MaxReplySize] bytes
// including the terminator, for example "ACK: received 22.500 from pid 7".
//
// Both layouts are an unversioned ABI shared with producers that may
// not be written in Go, so they are encoded field by field at fixed
// offsets rather than by reinterpreting struct memory.
package wire
