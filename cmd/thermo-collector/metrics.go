// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bureau-foundation/thermo/lib/window"
)

// metrics are the collector's Prometheus collectors, registered on a
// private registry so tests can build as many collectors as they like.
type metrics struct {
	registry *prometheus.Registry

	readingsAccepted prometheus.Counter
	readingsRejected prometheus.Counter
	receiveErrors    prometheus.Counter
	publishCycles    prometheus.Counter

	windowSamples    prometheus.Gauge
	publishedAverage prometheus.Gauge
	publishedMinimum prometheus.Gauge
	publishedMaximum prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		readingsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thermo_readings_accepted_total",
			Help: "Readings pushed into the rolling window and acknowledged.",
		}),
		readingsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thermo_readings_rejected_total",
			Help: "Requests answered with NAK because they were not a valid reading.",
		}),
		receiveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thermo_receive_errors_total",
			Help: "Failed receives on the rendezvous name.",
		}),
		publishCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thermo_publish_cycles_total",
			Help: "Statistics records written to the shared region.",
		}),
		windowSamples: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "thermo_window_samples",
			Help: "Readings currently held in the rolling window.",
		}),
		publishedAverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "thermo_published_average_celsius",
			Help: "Average temperature in the last published record.",
		}),
		publishedMinimum: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "thermo_published_minimum_celsius",
			Help: "Minimum temperature in the last published record.",
		}),
		publishedMaximum: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "thermo_published_maximum_celsius",
			Help: "Maximum temperature in the last published record.",
		}),
	}

	m.registry.MustRegister(
		m.readingsAccepted,
		m.readingsRejected,
		m.receiveErrors,
		m.publishCycles,
		m.windowSamples,
		m.publishedAverage,
		m.publishedMinimum,
		m.publishedMaximum,
	)
	return m
}

func (m *metrics) observePublish(aggregate window.Aggregate) {
	m.publishCycles.Inc()
	m.windowSamples.Set(float64(aggregate.Count))
	m.publishedAverage.Set(aggregate.Average)
	m.publishedMinimum.Set(aggregate.Minimum)
	m.publishedMaximum.Set(aggregate.Maximum)
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
