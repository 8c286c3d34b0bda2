// Package dashboard is the terminal control surface of the dev panel.
package dashboard

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/panel"
)

// maxLogLines caps the lines kept for the log pane.
const maxLogLines = 400

// Controller is the part of the panel coordinator the dashboard drives.
type Controller interface {
	Start() bool
	Stop() bool
	Snapshot() panel.Snapshot
	Subscribe(ctx context.Context) <-chan panel.Snapshot
	Logs(ctx context.Context) <-chan lib.LogEntry
}

type snapshotMsg struct {
	Snapshot panel.Snapshot
}

type logLineMsg struct {
	Entry lib.LogEntry
}

// actionMsg reports the outcome of a start or stop request.
type actionMsg struct {
	Action  string
	Changed bool
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctl    Controller
	snapCh <-chan panel.Snapshot
	logCh  <-chan lib.LogEntry

	snapshot   panel.Snapshot
	logs       []string
	statusLine string
	busy       bool

	logPort viewport.Model
	spinner spinner.Model
	width   int
	height  int
}

// New subscribes to ctl for as long as ctx lives.
func New(ctx context.Context, ctl Controller) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = connectingStyle

	return Model{
		ctl:      ctl,
		snapCh:   ctl.Subscribe(ctx),
		logCh:    ctl.Logs(ctx),
		snapshot: ctl.Snapshot(),
		logPort:  viewport.New(80, 12),
		spinner:  spin,
	}
}

// Run shows the dashboard until the user quits. The panel is stopped on exit.
func Run(ctx context.Context, ctl Controller) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	_, err := tea.NewProgram(New(ctx, ctl), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	ctl.Stop()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.listenSnapshots(),
		m.listenLogs(),
	)
}

func (m Model) listenSnapshots() tea.Cmd {
	if m.snapCh == nil {
		return nil
	}
	ch := m.snapCh
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg{Snapshot: s}
	}
}

func (m Model) listenLogs() tea.Cmd {
	if m.logCh == nil {
		return nil
	}
	ch := m.logCh
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return logLineMsg{Entry: e}
	}
}

func (m Model) startCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		return actionMsg{Action: "start", Changed: ctl.Start()}
	}
}

func (m Model) stopCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		return actionMsg{Action: "stop", Changed: ctl.Stop()}
	}
}
