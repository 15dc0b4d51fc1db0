// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/thermo/lib/schema/collector"
	"github.com/bureau-foundation/thermo/lib/service"
	"github.com/bureau-foundation/thermo/lib/statsregion"
	"github.com/bureau-foundation/thermo/lib/testutil"
	"github.com/bureau-foundation/thermo/lib/window"
)

// publishedRegion creates a region holding the 20/25/30 example.
func publishedRegion(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), statsregion.DefaultName)
	region, err := statsregion.Create(path, time.Now())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { region.Close() })

	if err := region.Publish(window.Aggregate{Average: 25, Minimum: 20, Maximum: 30, Count: 3}, time.Now()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	return path
}

func TestRunPlain(t *testing.T) {
	path := publishedRegion(t)

	var output bytes.Buffer
	if err := run([]string{"--region", path}, &output); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Readings   3\n", "Average    25.000\n", "by publisher"} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("output missing %q:\n%s", want, output.String())
		}
	}
	// A bytes.Buffer is not a terminal: no escape sequences.
	if strings.Contains(output.String(), "\x1b[") {
		t.Errorf("plain output contains ANSI escapes:\n%q", output.String())
	}
}

func TestRunJSONWithControl(t *testing.T) {
	path := publishedRegion(t)

	socketPath := filepath.Join(testutil.SocketDir(t), "collector.sock")
	server := service.NewSocketServer(socketPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	server.Handle(collector.ActionStatus, func(context.Context, []byte) (any, error) {
		return &collector.StatusResponse{InstanceID: "abc", ReadingsAccepted: 3, WindowCapacity: 1024}, nil
	})
	if err := server.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()
	defer func() {
		cancel()
		testutil.RequireReceive(t, done, 5*time.Second, "control socket shutdown")
	}()

	var output bytes.Buffer
	if err := run([]string{"--region", path, "--json", "--control", socketPath}, &output); err != nil {
		t.Fatalf("run: %v", err)
	}

	var decoded report
	if err := json.Unmarshal(output.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output.String())
	}
	if decoded.Region != path || decoded.Published.Count != 3 || decoded.Published.Average != 25 {
		t.Errorf("report = %+v", decoded)
	}
	if decoded.Published.Sequence != 1 || decoded.Published.LastWriter != "publisher" || decoded.Stale {
		t.Errorf("report metadata = %+v", decoded)
	}
	if decoded.Status == nil || decoded.Status.InstanceID != "abc" || decoded.Status.ReadingsAccepted != 3 {
		t.Errorf("status = %+v", decoded.Status)
	}
}

func TestRunErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing region", args: []string{"--region", missing}, want: "is thermo-collector running?"},
		{name: "watch and json", args: []string{"--watch", "--json"}, want: "cannot be combined"},
		{name: "zero interval", args: []string{"--interval", "0s"}, want: "--interval must be positive"},
		{name: "positional", args: []string{"extra"}, want: "unexpected argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, io.Discard)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("run(%q) = %v, want error containing %q", tt.args, err, tt.want)
			}
		})
	}
}

func TestRunControlUnreachable(t *testing.T) {
	path := publishedRegion(t)
	socketPath := filepath.Join(testutil.SocketDir(t), "absent.sock")

	err := run([]string{"--region", path, "--control", socketPath}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "querying collector status") {
		t.Fatalf("run = %v, want status query error", err)
	}
}

func TestRunVersion(t *testing.T) {
	var output bytes.Buffer
	if err := run([]string{"--version"}, &output); err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(output.String(), "thermo-stat ") {
		t.Fatalf("version output = %q", output.String())
	}
}
