// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"

	"github.com/bureau-foundation/thermo/lib/rendezvous"
	"github.com/bureau-foundation/thermo/lib/wire"
)

// requestSource is the receiving half of the rendezvous server.
type requestSource interface {
	ReceiveNext(ctx context.Context) (*rendezvous.Request, error)
}

// runListener answers readings one at a time until ctx is done. A
// failed receive is logged and counted and the loop continues.
func (c *Collector) runListener(ctx context.Context, source requestSource) error {
	for {
		request, err := source.ReceiveNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, rendezvous.ErrClosed) {
				return err
			}
			c.receiveErrors.Add(1)
			c.metrics.receiveErrors.Inc()
			c.logger.Error("receive failed", "error", err)
			continue
		}
		c.handleRequest(request)
	}
}

// handleRequest applies one request to the window and answers it. The
// reading is in the window before the ACK is sent.
func (c *Collector) handleRequest(request *rendezvous.Request) {
	reading, err := wire.Decode(request.Payload)
	if err != nil {
		c.rejected.Add(1)
		c.metrics.readingsRejected.Inc()
		c.logger.Warn("rejected reading",
			"peer_pid", request.PeerPID,
			"size", len(request.Payload),
			"error", err,
		)
		c.reply(request, wire.Nak(err))
		return
	}

	c.window.Push(reading.Temperature)
	if err := c.region.Touch(c.clock.Now()); err != nil {
		c.logger.Error("touching stats region", "error", err)
	}

	c.accepted.Add(1)
	c.metrics.readingsAccepted.Inc()
	c.metrics.windowSamples.Set(float64(c.window.Len()))
	c.logger.Info("reading received",
		"producer_id", reading.ProducerID,
		"peer_pid", request.PeerPID,
		"temperature", reading.Temperature,
	)
	c.reply(request, wire.Ack(reading))
}

func (c *Collector) reply(request *rendezvous.Request, message []byte) {
	if err := request.Reply(message); err != nil {
		c.logger.Debug("reply not delivered", "peer_pid", request.PeerPID, "error", err)
	}
}
