// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the one CBOR configuration used by the
// collector's control socket and its clients.
//
// The reading path does not use CBOR: readings and acknowledgments are
// fixed-layout records (see lib/wire) so that producers written in any
// language can speak them without a CBOR library. CBOR is for the
// extensible operator-facing protocol, where fields come and go.
//
// Encoding follows Core Deterministic Encoding (RFC 8949 §4.2), so the
// same value always produces the same bytes:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Sockets use the streaming forms:
//
//	codec.NewEncoder(conn).Encode(request)
//	codec.NewDecoder(conn).Decode(&response)
//
// Types that only ever travel as CBOR carry `cbor` struct tags. Types
// that are also printed as JSON (see lib/schema/collector) carry only
// `json` tags; the CBOR library falls back to them, so both encodings
// use the same field names.
package codec
