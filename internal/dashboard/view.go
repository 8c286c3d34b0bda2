package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Developer Control Center"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("ACTIVE USERS"))
	b.WriteString("\n")
	b.WriteString(m.usersView())
	b.WriteString("\n\n")

	b.WriteString(m.controlsView())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("SYSTEM LOGS"))
	b.WriteString("\n")
	b.WriteString(logBoxStyle.Render(m.logPort.View()))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("s start • x stop • ↑/↓ scroll • q quit"))
	return b.String()
}

func (m Model) usersView() string {
	c := m.snapshot.Connectivity
	switch c.State {
	case lib.Online:
		return statStyle.Render(c.Label())
	case lib.Connecting:
		return m.spinner.View() + " " + connectingStyle.Render(c.Label())
	default:
		return offlineStyle.Render(c.Label())
	}
}

func (m Model) controlsView() string {
	start := startButtonStyle.Render("▶ START SERVER")
	stop := disabledButtonStyle.Render("■ STOP")
	if m.snapshot.Running || m.busy {
		start = disabledButtonStyle.Render("▶ START SERVER")
	}
	if m.snapshot.Running && !m.busy {
		stop = stopButtonStyle.Render("■ STOP")
	}
	timer := labelStyle.Render("Next Push: " + m.snapshot.NextPush())

	left := lipgloss.JoinHorizontal(lipgloss.Center, start, " ", stop)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(timer)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + timer
}

func (m Model) statusView() string {
	var parts []string
	if p := m.snapshot.Process; p != nil {
		if p.State == lib.ProcessStateRunning {
			parts = append(parts, fmt.Sprintf("pid %d, up since %s", p.PID, humanize.Time(p.StartTime)))
		} else if p.ExitCode != nil {
			parts = append(parts, fmt.Sprintf("last run exited %d", *p.ExitCode))
		}
	}
	if lp := m.snapshot.LastPush; lp != nil {
		mark := "✔"
		if !lp.Success {
			mark = "✘"
		}
		parts = append(parts, fmt.Sprintf("last push %s %s", mark, humanize.Time(lp.At)))
	}
	line := dimStyle.Render(strings.Join(parts, " • "))
	if m.snapshot.StartError != "" {
		line = errorStyle.Render("start failed: " + m.snapshot.StartError)
	}
	if m.statusLine != "" {
		line += "  " + connectingStyle.Render(m.statusLine)
	}
	return line
}
