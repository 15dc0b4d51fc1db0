// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/thermo/lib/schema/collector"
	"github.com/bureau-foundation/thermo/lib/statsregion"
)

// staleAfter is three default publisher periods.
const staleAfter = 15 * time.Second

// report is the --json output.
type report struct {
	Region     string                    `json:"region"`
	Published  collector.Published       `json:"published"`
	AgeSeconds float64                   `json:"age_seconds"`
	Stale      bool                      `json:"stale"`
	Status     *collector.StatusResponse `json:"status,omitempty"`
}

func newReport(path string, snapshot statsregion.Snapshot, now time.Time, status *collector.StatusResponse) report {
	age := now.Sub(snapshot.LastUpdated)
	return report{
		Region:     path,
		Published:  published(snapshot),
		AgeSeconds: age.Seconds(),
		Stale:      age > staleAfter,
		Status:     status,
	}
}

func published(snapshot statsregion.Snapshot) collector.Published {
	return collector.Published{
		Aggregate: collector.Aggregate{
			Average: snapshot.Average,
			Minimum: snapshot.Minimum,
			Maximum: snapshot.Maximum,
			Count:   int(snapshot.Count),
		},
		Sequence:    snapshot.Sequence,
		LastWriter:  snapshot.LastWriter.String(),
		LastUpdated: snapshot.LastUpdated.Unix(),
	}
}

// view renders snapshots as aligned "label value" lines, styled with
// lipgloss when writing to a terminal and as plain text otherwise.
type view struct {
	styled bool
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
}

func newView(styled bool) view {
	return view{
		styled: styled,
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		value:  lipgloss.NewStyle().Bold(true),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		help:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
	}
}

func (v view) render(style lipgloss.Style, text string) string {
	if !v.styled {
		return text
	}
	return style.Render(text)
}

func (v view) field(builder *strings.Builder, name, value string) {
	builder.WriteString(v.render(v.label, fmt.Sprintf("%-10s", name)))
	builder.WriteString(" ")
	builder.WriteString(v.render(v.value, value))
	builder.WriteString("\n")
}

func (v view) renderRegion(path string, snapshot statsregion.Snapshot, now time.Time) string {
	var builder strings.Builder
	builder.WriteString(v.render(v.title, "Temperature statistics"))
	builder.WriteString("\n")
	v.field(&builder, "Region", path)

	if snapshot.Count == 0 {
		v.field(&builder, "Readings", "none yet")
	} else {
		v.field(&builder, "Readings", fmt.Sprintf("%d", snapshot.Count))
		v.field(&builder, "Average", fmt.Sprintf("%.3f", snapshot.Average))
		v.field(&builder, "Minimum", fmt.Sprintf("%.3f", snapshot.Minimum))
		v.field(&builder, "Maximum", fmt.Sprintf("%.3f", snapshot.Maximum))
	}

	age := now.Sub(snapshot.LastUpdated).Truncate(time.Second)
	updated := fmt.Sprintf("%s (%s ago, by %s)",
		snapshot.LastUpdated.UTC().Format(time.RFC3339), age, snapshot.LastWriter)
	if age > staleAfter {
		updated += " " + v.render(v.warn, "[stale]")
	}
	v.field(&builder, "Updated", updated)
	v.field(&builder, "Sequence", fmt.Sprintf("%d", snapshot.Sequence))
	return builder.String()
}

func (v view) renderStatus(status collector.StatusResponse) string {
	var builder strings.Builder
	builder.WriteString(v.render(v.title, "Collector"))
	builder.WriteString("\n")
	v.field(&builder, "Instance", status.InstanceID)
	v.field(&builder, "Uptime", (time.Duration(status.UptimeSeconds) * time.Second).String())
	v.field(&builder, "Name", status.RendezvousPath)
	v.field(&builder, "Accepted", fmt.Sprintf("%d", status.ReadingsAccepted))
	v.field(&builder, "Rejected", fmt.Sprintf("%d", status.ReadingsRejected))
	v.field(&builder, "Errors", fmt.Sprintf("%d receive", status.ReceiveErrors))
	v.field(&builder, "Published", fmt.Sprintf("%d cycles", status.PublishCycles))
	v.field(&builder, "Window", fmt.Sprintf("%d/%d (%d pushed)", status.WindowLength, status.WindowCapacity, status.TotalPushes))
	return builder.String()
}
