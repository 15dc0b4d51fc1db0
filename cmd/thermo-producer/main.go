// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/thermo/lib/clock"
	"github.com/bureau-foundation/thermo/lib/process"
	"github.com/bureau-foundation/thermo/lib/rendezvous"
	"github.com/bureau-foundation/thermo/lib/version"
)

const defaultInterval = 1.0

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("thermo-producer", pflag.ContinueOnError)
	socketPath := flagSet.String("socket", rendezvous.Path(rendezvous.DefaultDir, rendezvous.DefaultName), "rendezvous socket of the collector")
	showVersion := flagSet.Bool("version", false, "print version information and exit")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: thermo-producer [INTERVAL] [flags]\n\nINTERVAL is seconds between readings (default %.1f).\n\nFlags:\n", defaultInterval)
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		version.Print(os.Stdout, "thermo-producer")
		return nil
	}

	interval, err := parseInterval(flagSet.Args())
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := rendezvous.Open(ctx, *socketPath)
	if err != nil {
		logger.Error("collector not reachable", "socket", *socketPath, "error", err)
		return err
	}
	defer conn.Close()

	producer := &Producer{
		sender:   conn,
		clock:    clock.Real(),
		logger:   logger,
		interval: interval,
		id:       int32(os.Getpid()),
		random:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	logger.Info("producer running", "socket", *socketPath, "interval", interval, "pid", producer.id)
	return producer.Run(ctx)
}

// parseInterval reads the optional INTERVAL argument in seconds.
func parseInterval(args []string) (time.Duration, error) {
	seconds := defaultInterval
	switch len(args) {
	case 0:
	case 1:
		parsed, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid interval %q: want seconds as a number", args[0])
		}
		seconds = parsed
	default:
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}

	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, fmt.Errorf("invalid interval %v: must be a positive number of seconds", seconds)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
