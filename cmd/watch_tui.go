// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The Railscope Authors

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/railscope/railscope/pkg/psulink"
)

// Event log entry
type watchLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for informational entries
}

// supplyItem adapts a SupplyInfo for the picker list
type supplyItem struct {
	info SupplyInfo
}

// Implement list.Item interface
func (s supplyItem) Title() string { return fmt.Sprintf("%s  %s", s.info.Model, s.info.Path) }
func (s supplyItem) Description() string {
	if s.info.Serial != "" {
		return fmt.Sprintf("%04x:%04x serial %s", s.info.Vendor, s.info.Product, s.info.Serial)
	}
	return fmt.Sprintf("%04x:%04x", s.info.Vendor, s.info.Product)
}
func (s supplyItem) FilterValue() string { return s.info.Model + " " + s.info.Path }

// watchModel is the Bubble Tea model for the live dashboard. It starts on
// the supply picker when no connection was established up front.
type watchModel struct {
	// Connection (nil while picking)
	conn     Connection
	connInfo string

	// Picker state
	picking bool
	picker  list.Model

	// Polling
	interval      time.Duration
	stats         *psulink.Stats
	lastSnapshot  *psulink.Snapshot
	lastAnomalies []psulink.ValidationError
	lastError     error

	// Event log
	errorLog      []watchLogEntry
	maxLogEntries int

	// UI state
	width    int
	height   int
	quitting bool
}

// Messages
type watchTickMsg time.Time
type watchPollMsg struct{}
type watchSnapshotMsg struct {
	snapshot  *psulink.Snapshot
	err       error
	anomalies []psulink.ValidationError
}
type watchConnectedMsg struct {
	conn     Connection
	connInfo string
}
type watchConnectFailedMsg struct {
	err error
}

func newWatchModel(conn Connection, connInfo string, supplies []SupplyInfo, interval time.Duration) watchModel {
	m := watchModel{
		conn:          conn,
		connInfo:      connInfo,
		interval:      interval,
		stats:         psulink.NewStats(),
		errorLog:      make([]watchLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}

	if conn == nil {
		m.picking = true
		items := make([]list.Item, len(supplies))
		for i, s := range supplies {
			items[i] = supplyItem{info: s}
		}
		delegate := list.NewDefaultDelegate()
		picker := list.New(items, delegate, 60, 14)
		picker.Title = "Select a power supply"
		picker.SetShowStatusBar(false)
		picker.SetFilteringEnabled(false)
		m.picker = picker
	}

	return m
}

func (m watchModel) Init() tea.Cmd {
	if m.picking {
		return watchTickCmd()
	}
	return tea.Batch(watchTickCmd(), watchPollCmd(m.conn))
}

func watchTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

// watchPollCmd takes one snapshot. The exchange blocks inside the command,
// never in Update, so the UI stays responsive during a slow poll.
func watchPollCmd(conn Connection) tea.Cmd {
	return func() tea.Msg {
		snap, err := psulink.TakeSnapshot(conn)
		if err != nil {
			return watchSnapshotMsg{err: err}
		}
		return watchSnapshotMsg{snapshot: snap, anomalies: psulink.ValidateSnapshot(snap)}
	}
}

// watchConnectCmd opens the picked supply off the UI goroutine
func watchConnectCmd(info SupplyInfo) tea.Cmd {
	return func() tea.Msg {
		conn, err := OpenHIDConnection(info.Path)
		if err != nil {
			return watchConnectFailedMsg{err: err}
		}
		return watchConnectedMsg{
			conn:     conn,
			connInfo: fmt.Sprintf("HID: %s (%s)", info.Path, info.Model),
		}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			if m.conn != nil {
				m.conn.Close()
			}
			return m, tea.Quit
		case "enter":
			if m.picking {
				if item, ok := m.picker.SelectedItem().(supplyItem); ok {
					m.addLogEntry(fmt.Sprintf("Connecting to %s...", item.info.Path), false)
					return m, watchConnectCmd(item.info)
				}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.picking {
			m.picker.SetSize(msg.Width-4, msg.Height-6)
		}

	case watchTickMsg:
		m.stats.CalculateRates()
		return m, watchTickCmd()

	case watchConnectedMsg:
		m.picking = false
		m.conn = msg.conn
		m.connInfo = msg.connInfo
		m.addLogEntry(fmt.Sprintf("Connected: %s", msg.connInfo), false)
		return m, watchPollCmd(m.conn)

	case watchConnectFailedMsg:
		m.addLogEntry(fmt.Sprintf("Connect failed: %v", msg.err), true)

	case watchPollMsg:
		return m, watchPollCmd(m.conn)

	case watchSnapshotMsg:
		m.stats.Update(msg.snapshot, msg.err, msg.anomalies)

		if msg.err != nil {
			m.lastError = msg.err
			m.addLogEntry(fmt.Sprintf("POLL FAILED: %v", msg.err), true)
		} else {
			m.lastError = nil
			m.lastSnapshot = msg.snapshot
			m.lastAnomalies = msg.anomalies
			for _, a := range msg.anomalies {
				m.addLogEntry(a.Message, true)
			}
		}

		// Schedule the next poll one interval after this one finished.
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg {
			return watchPollMsg{}
		})
	}

	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *watchModel) addLogEntry(message string, isError bool) {
	entry := watchLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

// anomalous reports whether a reading was flagged on the last poll, so the
// dashboard can highlight just the implausible cell.
func (m watchModel) anomalous(substr string) bool {
	for _, a := range m.lastAnomalies {
		if strings.Contains(a.Message, substr) {
			return true
		}
	}
	return false
}

func (m watchModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("RAILSCOPE - TELEMETRY MONITOR"))
	s.WriteString("\n")

	if m.picking {
		s.WriteString(headerStyle.Render("Several supported supplies found | Enter to connect | 'q' to quit"))
		s.WriteString("\n\n")
		s.WriteString(m.picker.View())
		return s.String()
	}

	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Interval: %v | Press 'q' to quit", m.connInfo, m.interval)))
	s.WriteString("\n\n")

	// reading renders one labelled value, highlighted when flagged
	reading := func(label, value, anomalyKey string) string {
		style := valueStyle
		if anomalyKey != "" && m.anomalous(anomalyKey) {
			style = errorStyle
		}
		return fmt.Sprintf("%s %s", labelStyle.Render(label), style.Render(value))
	}

	if m.lastSnapshot == nil {
		if m.lastError != nil {
			s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Poll failed: %v", m.lastError)))
		} else {
			s.WriteString(warningStyle.Render("⏳ Waiting for first snapshot..."))
		}
		s.WriteString("\n\n")
	} else {
		snap := m.lastSnapshot

		// Identity and uptime pane
		identity := strings.Builder{}
		identity.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("Name:"), valueStyle.Render(snap.Name),
			labelStyle.Render("Vendor:"), valueStyle.Render(snap.Vendor),
			labelStyle.Render("Product:"), valueStyle.Render(snap.Product),
		))
		identity.WriteString(fmt.Sprintf("%s %s   %s %s",
			labelStyle.Render("Powered:"), valueStyle.Render(psulink.FormatUptime(snap.Powered)),
			labelStyle.Render("Uptime:"), valueStyle.Render(psulink.FormatUptime(snap.Uptime)),
		))
		s.WriteString(boxStyle.Render(identity.String()))
		s.WriteString("\n\n")

		// Environment pane
		env := strings.Builder{}
		env.WriteString(reading("Temp 1:", fmt.Sprintf("%5.1f°C", snap.TempA), "temp1"))
		env.WriteString("   ")
		env.WriteString(reading("Temp 2:", fmt.Sprintf("%5.1f°C", snap.TempB), "temp2"))
		env.WriteString("   ")
		env.WriteString(reading("Fan:", fmt.Sprintf("%4.0f rpm", snap.FanRPM), "fan speed"))
		env.WriteString("\n")
		env.WriteString(reading("Supply:", fmt.Sprintf("%5.1fV", snap.SupplyVolts), "supply voltage"))
		env.WriteString("   ")
		env.WriteString(reading("Total:", fmt.Sprintf("%5.1fW", snap.TotalWatts), "total power"))
		s.WriteString(boxStyle.Render(env.String()))
		s.WriteString("\n\n")

		// Rails pane
		rails := strings.Builder{}
		for i, r := range snap.Rails {
			key := fmt.Sprintf("output%d", i)
			rails.WriteString(reading(fmt.Sprintf("Output %d:", i),
				fmt.Sprintf("%6.2fV %6.2fA %6.1fW", r.Volts, r.Amps, r.Watts), key))
			if i < len(snap.Rails)-1 {
				rails.WriteString("\n")
			}
		}
		s.WriteString(boxStyle.Render(rails.String()))
		s.WriteString("\n\n")
	}

	// Statistics line
	m.stats.CalculateRates()
	var cleanPercent float64
	if m.stats.TotalPolls > 0 {
		cleanPercent = float64(m.stats.CleanPolls) * 100.0 / float64(m.stats.TotalPolls)
	}
	errorCount := m.stats.TransportErrors + m.stats.EchoMismatches

	statsContent := fmt.Sprintf("%s %s   %s %s   %s %s   %s %s",
		labelStyle.Render("Polls:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalPolls)),
		labelStyle.Render("Clean:"), valueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.CleanPolls, cleanPercent)),
		labelStyle.Render("Errors:"), func() string {
			if errorCount > 0 {
				return errorStyle.Render(fmt.Sprintf("%d", errorCount))
			}
			return valueStyle.Render("0")
		}(),
		labelStyle.Render("Anomalies:"), func() string {
			if m.stats.Anomalies > 0 {
				return warningStyle.Render(fmt.Sprintf("%d", m.stats.Anomalies))
			}
			return valueStyle.Render("0")
		}(),
	)
	s.WriteString(boxStyle.Render(statsContent))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := m.height - 20 // Reserve space for header and panes
	if logHeight < 4 {
		logHeight = 4
	}

	logContent := strings.Builder{}
	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
