// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rendezvous implements the named, synchronous request/reply
// channel between producers and the collector.
//
// The collector attaches a well-known name, which is a Unix
// SOCK_SEQPACKET socket at a well-known path. Producers open the name
// once and then send requests over the connection, each blocking until
// its reply arrives. SEQPACKET keeps message boundaries, so the
// collector sees every request at its exact size and can reject
// mis-sized ones instead of mis-framing a byte stream.
//
// Server side:
//
//	server, err := rendezvous.Attach(path, logger)
//	defer server.Detach()
//	for {
//	    request, err := server.ReceiveNext(ctx)
//	    ...
//	    request.Reply(message)
//	}
//
// Every connection gets a reader goroutine that hands requests to
// ReceiveNext and writes back whatever the caller passes to Reply.
// Requests from all connections funnel through one channel, so a
// single caller of ReceiveNext processes them strictly one at a time.
// A connection does not read its next request until the current one
// has been answered.
//
// Client side:
//
//	conn, err := rendezvous.Open(ctx, path)
//	defer conn.Close()
//	reply, err := conn.Send(ctx, request)
package rendezvous
