// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/thermo/lib/statsregion"
)

type snapshotReader interface {
	Read() (statsregion.Snapshot, error)
}

// snapshotMsg carries the result of one region read.
type snapshotMsg struct {
	snapshot statsregion.Snapshot
	err      error
}

// refreshMsg asks for the next read.
type refreshMsg struct{}

// watchModel re-reads the region every interval until the user quits
// or a read fails.
type watchModel struct {
	reader   snapshotReader
	path     string
	interval time.Duration
	view     view
	now      func() time.Time

	snapshot statsregion.Snapshot
	loaded   bool
	err      error
}

func newWatchModel(reader snapshotReader, path string, interval time.Duration, output view) watchModel {
	return watchModel{
		reader:   reader,
		path:     path,
		interval: interval,
		view:     output,
		now:      time.Now,
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.read
}

func (m watchModel) read() tea.Msg {
	snapshot, err := m.reader.Read()
	return snapshotMsg{snapshot: snapshot, err: err}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.snapshot = msg.snapshot
		m.loaded = true
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return refreshMsg{} })
	case refreshMsg:
		return m, m.read
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n"
	}
	if !m.loaded {
		return "reading " + m.path + "...\n"
	}
	return m.view.renderRegion(m.path, m.snapshot, m.now()) +
		"\n" + m.view.render(m.view.help, "q to quit") + "\n"
}
