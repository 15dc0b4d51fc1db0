// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/thermo/lib/clock"
	"github.com/bureau-foundation/thermo/lib/config"
	"github.com/bureau-foundation/thermo/lib/process"
	"github.com/bureau-foundation/thermo/lib/rendezvous"
	"github.com/bureau-foundation/thermo/lib/service"
	"github.com/bureau-foundation/thermo/lib/statsregion"
	"github.com/bureau-foundation/thermo/lib/version"
	"github.com/bureau-foundation/thermo/lib/window"
)

// metricsShutdownTimeout bounds draining in-flight scrapes on exit.
const metricsShutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := pflag.NewFlagSet("thermo-collector", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to the YAML config file (default: $"+config.EnvironmentVariable+", else built-in defaults)")
	showVersion := flagSet.Bool("version", false, "print version information and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		version.Print(os.Stdout, "thermo-collector")
		return nil
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logger, err := service.NewLogger(os.Stderr, cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, clock.Real(), logger)
}

func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// serve acquires every collector resource, runs until ctx is done,
// and releases everything it acquired on every return path.
//
// The rendezvous name is attached before the region is created: a
// second collector started against the same names fails on the
// attach without touching the region the first one is publishing.
func serve(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	period, err := cfg.PublisherPeriod()
	if err != nil {
		return err
	}

	server, err := rendezvous.Attach(cfg.RendezvousPath(), logger)
	if err != nil {
		return fmt.Errorf("attaching rendezvous name: %w", err)
	}
	defer func() {
		if err := server.Detach(); err != nil {
			logger.Error("detaching rendezvous name", "error", err)
		}
	}()

	region, err := statsregion.Create(cfg.RegionPath(), clk.Now())
	if err != nil {
		return fmt.Errorf("creating stats region: %w", err)
	}
	defer func() {
		if err := region.Close(); err != nil {
			logger.Error("closing stats region", "error", err)
		}
	}()

	collector := &Collector{
		window:     window.New(cfg.Window.Capacity),
		region:     region,
		clock:      clk,
		logger:     logger,
		metrics:    newMetrics(),
		period:     period,
		startedAt:  clk.Now(),
		instanceID: uuid.NewString(),
		rendezvous: server.Path(),
	}
	collector.logger = logger.With("instance_id", collector.instanceID)

	// Background goroutines stop on cancel; the deferred Wait keeps
	// the region and name alive until they have.
	ctx, cancel := context.WithCancel(ctx)
	var workers sync.WaitGroup
	defer workers.Wait()
	defer cancel()

	if cfg.Control.SocketPath != "" {
		socketServer := service.NewSocketServer(cfg.Control.SocketPath, collector.logger)
		collector.registerActions(socketServer)
		if err := socketServer.Listen(); err != nil {
			return fmt.Errorf("starting control socket: %w", err)
		}
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := socketServer.Serve(ctx); err != nil {
				collector.logger.Error("control socket failed", "error", err)
			}
		}()
	}

	if cfg.Metrics.Listen != "" {
		listener, err := net.Listen("tcp", cfg.Metrics.Listen)
		if err != nil {
			return fmt.Errorf("starting metrics listener: %w", err)
		}
		startMetricsServer(ctx, &workers, listener, collector.metrics.handler(), collector.logger)
	}

	workers.Add(1)
	go func() {
		defer workers.Done()
		collector.runPublisher(ctx)
	}()

	collector.logger.Info("collector running",
		"rendezvous", server.Path(),
		"region", region.Name(),
		"control_socket", cfg.Control.SocketPath,
		"metrics", cfg.Metrics.Listen,
		"window_capacity", cfg.Window.Capacity,
		"publish_period", period,
	)

	err = collector.runListener(ctx, server)
	collector.logger.Info("shutting down")
	return err
}

// startMetricsServer serves handler on listener until ctx is done.
func startMetricsServer(ctx context.Context, workers *sync.WaitGroup, listener net.Listener, handler http.Handler, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	workers.Add(2)
	go func() {
		defer workers.Done()
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		defer workers.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()
	logger.Info("metrics listening", "address", listener.Addr().String())
}
