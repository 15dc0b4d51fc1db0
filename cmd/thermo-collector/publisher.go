// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
)

// runPublisher writes the window's statistics to the region every
// period until ctx is done.
func (c *Collector) runPublisher(ctx context.Context) {
	ticker := c.clock.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.publish()
		case <-ctx.Done():
			return
		}
	}
}

func (c *Collector) publish() {
	aggregate := c.window.Aggregate()
	if err := c.region.Publish(aggregate, c.clock.Now()); err != nil {
		c.logger.Error("publishing stats", "error", err)
		return
	}

	c.publishCycles.Add(1)
	c.metrics.observePublish(aggregate)
	c.logger.Info("stats published",
		"count", aggregate.Count,
		"average", aggregate.Average,
		"minimum", aggregate.Minimum,
		"maximum", aggregate.Maximum,
	)
}
