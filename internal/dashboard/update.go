package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
)

// fixed rows used by everything above the log pane
const chromeHeight = 12

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "s":
			if m.busy || m.snapshot.Running {
				m.statusLine = "Already running"
				break
			}
			m.busy = true
			cmds = append(cmds, m.startCmd())
		case "x":
			if m.busy || !m.snapshot.Running {
				m.statusLine = "Not running"
				break
			}
			m.busy = true
			m.statusLine = "Stopping..."
			cmds = append(cmds, m.stopCmd())
		default:
			var cmd tea.Cmd
			m.logPort, cmd = m.logPort.Update(msg)
			cmds = append(cmds, cmd)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logPort.Width = max(msg.Width-4, 20)
		m.logPort.Height = max(msg.Height-chromeHeight, 3)
		m.refreshLogPort()
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.logPort, cmd = m.logPort.Update(msg)
		cmds = append(cmds, cmd)
	case snapshotMsg:
		m.snapshot = msg.Snapshot
		cmds = append(cmds, m.listenSnapshots())
	case logLineMsg:
		m.appendLog(msg.Entry)
		cmds = append(cmds, m.listenLogs())
	case actionMsg:
		m.busy = false
		m.statusLine = ""
		if !msg.Changed {
			m.statusLine = "Nothing to " + msg.Action
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) appendLog(e lib.LogEntry) {
	m.logs = append(m.logs, e.String())
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
	m.refreshLogPort()
}

func (m *Model) refreshLogPort() {
	follow := m.logPort.AtBottom()
	m.logPort.SetContent(strings.Join(m.logs, "\n"))
	if follow {
		m.logPort.GotoBottom()
	}
}
