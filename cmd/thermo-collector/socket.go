// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/thermo/lib/schema/collector"
	"github.com/bureau-foundation/thermo/lib/service"
)

// registerActions registers the control socket actions. Both are
// read-only.
func (c *Collector) registerActions(server *service.SocketServer) {
	server.Handle(collector.ActionStatus, c.handleStatus)
	server.Handle(collector.ActionStats, c.handleStats)
}

func (c *Collector) handleStatus(_ context.Context, _ []byte) (any, error) {
	return &collector.StatusResponse{
		InstanceID:       c.instanceID,
		UptimeSeconds:    c.clock.Now().Sub(c.startedAt).Seconds(),
		RendezvousPath:   c.rendezvous,
		RegionPath:       c.region.Name(),
		ReadingsAccepted: c.accepted.Load(),
		ReadingsRejected: c.rejected.Load(),
		ReceiveErrors:    c.receiveErrors.Load(),
		PublishCycles:    c.publishCycles.Load(),
		WindowLength:     c.window.Len(),
		WindowCapacity:   c.window.Capacity(),
		TotalPushes:      c.window.Total(),
	}, nil
}

// handleStats returns the aggregate over the window as it is now next
// to the region's last published content, which lags by up to one
// publisher period.
func (c *Collector) handleStats(_ context.Context, _ []byte) (any, error) {
	live := c.window.Aggregate()
	snapshot, err := c.region.Read()
	if err != nil {
		return nil, fmt.Errorf("reading stats region: %w", err)
	}

	return &collector.StatsResponse{
		Live: collector.Aggregate{
			Average: live.Average,
			Minimum: live.Minimum,
			Maximum: live.Maximum,
			Count:   live.Count,
		},
		Published: collector.Published{
			Aggregate: collector.Aggregate{
				Average: snapshot.Average,
				Minimum: snapshot.Minimum,
				Maximum: snapshot.Maximum,
				Count:   int(snapshot.Count),
			},
			Sequence:    snapshot.Sequence,
			LastWriter:  snapshot.LastWriter.String(),
			LastUpdated: snapshot.LastUpdated.Unix(),
		},
	}, nil
}
