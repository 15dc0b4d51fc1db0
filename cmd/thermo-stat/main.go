// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/thermo/lib/process"
	"github.com/bureau-foundation/thermo/lib/schema/collector"
	"github.com/bureau-foundation/thermo/lib/service"
	"github.com/bureau-foundation/thermo/lib/statsregion"
	"github.com/bureau-foundation/thermo/lib/version"
)

// controlTimeout bounds the status query against the collector.
const controlTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		process.Fatal(err)
	}
}

type options struct {
	regionPath  string
	jsonOutput  bool
	watch       bool
	interval    time.Duration
	controlPath string
}

func run(args []string, stdout io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("thermo-stat", pflag.ContinueOnError)
	flagSet.StringVar(&opts.regionPath, "region", statsregion.Path(statsregion.DefaultName), "path of the shared statistics region")
	flagSet.BoolVar(&opts.jsonOutput, "json", false, "print the snapshot as JSON")
	flagSet.BoolVar(&opts.watch, "watch", false, "keep refreshing until q is pressed")
	flagSet.DurationVar(&opts.interval, "interval", time.Second, "refresh interval for --watch")
	flagSet.StringVar(&opts.controlPath, "control", "", "collector control socket; adds the collector's status to the output")
	showVersion := flagSet.Bool("version", false, "print version information and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		version.Print(stdout, "thermo-stat")
		return nil
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	if opts.watch && opts.jsonOutput {
		return errors.New("--watch and --json cannot be combined")
	}
	if opts.interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", opts.interval)
	}

	region, err := statsregion.Open(opts.regionPath)
	if err != nil {
		return fmt.Errorf("%w (is thermo-collector running?)", err)
	}
	defer region.Close()

	if opts.watch {
		return watch(region, opts, stdout)
	}
	return printOnce(region, opts, stdout)
}

func printOnce(region *statsregion.Region, opts options, stdout io.Writer) error {
	snapshot, err := region.Read()
	if err != nil {
		return err
	}
	now := time.Now()

	var status *collector.StatusResponse
	if opts.controlPath != "" {
		status, err = queryStatus(opts.controlPath)
		if err != nil {
			return err
		}
	}

	if opts.jsonOutput {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(newReport(opts.regionPath, snapshot, now, status))
	}

	output := newView(isTerminal(stdout))
	fmt.Fprint(stdout, output.renderRegion(opts.regionPath, snapshot, now))
	if status != nil {
		fmt.Fprint(stdout, "\n", output.renderStatus(*status))
	}
	return nil
}

func queryStatus(controlPath string) (*collector.StatusResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	var status collector.StatusResponse
	if err := service.NewServiceClient(controlPath).Call(ctx, collector.ActionStatus, nil, &status); err != nil {
		return nil, fmt.Errorf("querying collector status: %w", err)
	}
	return &status, nil
}

func watch(region *statsregion.Region, opts options, stdout io.Writer) error {
	model := newWatchModel(region, opts.regionPath, opts.interval, newView(isTerminal(stdout)))
	final, err := tea.NewProgram(model, tea.WithOutput(stdout)).Run()
	if err != nil {
		return err
	}
	if finished, ok := final.(watchModel); ok && finished.err != nil {
		return finished.err
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
