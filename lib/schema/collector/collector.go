// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package collector

// Control socket actions.
const (
	ActionStatus = "status"
	ActionStats  = "stats"
)

// StatusResponse is the "status" action's result.
type StatusResponse struct {
	InstanceID       string  `json:"instance_id"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	RendezvousPath   string  `json:"rendezvous_path"`
	RegionPath       string  `json:"region_path"`
	ReadingsAccepted uint64  `json:"readings_accepted"`
	ReadingsRejected uint64  `json:"readings_rejected"`
	ReceiveErrors    uint64  `json:"receive_errors"`
	PublishCycles    uint64  `json:"publish_cycles"`
	WindowLength     int     `json:"window_length"`
	WindowCapacity   int     `json:"window_capacity"`
	TotalPushes      uint64  `json:"total_pushes"`
}

// Aggregate mirrors window.Aggregate on the wire.
type Aggregate struct {
	Average float64 `json:"average"`
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
	Count   int     `json:"count"`
}

// Published is the shared region's content.
type Published struct {
	Aggregate
	Sequence    uint64 `json:"sequence"`
	LastWriter  string `json:"last_writer"`
	LastUpdated int64  `json:"last_updated"`
}

// StatsResponse is the "stats" action's result: the window's aggregate
// computed at request time next to what was last published.
type StatsResponse struct {
	Live      Aggregate `json:"live"`
	Published Published `json:"published"`
}
