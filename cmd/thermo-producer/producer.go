// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/bureau-foundation/thermo/lib/clock"
	"github.com/bureau-foundation/thermo/lib/wire"
)

// Reading range in degrees: [minimumTemperature, minimumTemperature+temperatureSpan).
const (
	minimumTemperature = 15.0
	temperatureSpan    = 25.0
)

// sender is the producer's half of the rendezvous channel.
type sender interface {
	Send(ctx context.Context, request []byte) ([]byte, error)
}

// Producer sends one reading per interval and waits for each reply.
type Producer struct {
	sender   sender
	clock    clock.Clock
	logger   *slog.Logger
	interval time.Duration
	id       int32
	random   *rand.Rand
}

// Run sends readings until ctx is done. A failed send ends the loop
// with an error; cancellation ends it cleanly.
func (p *Producer) Run(ctx context.Context) error {
	for {
		if err := p.sendOne(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("send failed", "error", err)
			return err
		}

		select {
		case <-p.clock.After(p.interval):
		case <-ctx.Done():
			return nil
		}
	}
}

func (p *Producer) sendOne(ctx context.Context) error {
	reading := wire.Reading{
		Kind:        wire.KindReading,
		ProducerID:  p.id,
		Temperature: p.nextTemperature(),
	}

	reply, err := p.sender.Send(ctx, reading.Encode())
	if err != nil {
		return fmt.Errorf("sending reading: %w", err)
	}
	p.logger.Info("reading sent",
		"temperature", reading.Temperature,
		"reply", wire.ReplyText(reply),
	)
	return nil
}

func (p *Producer) nextTemperature() float64 {
	return minimumTemperature + p.random.Float64()*temperatureSpan
}
