package lib

import (
	"fmt"
	"time"
)

// ProcessState mirrors the high-level states reported by the control API.
type ProcessState int

const (
	ProcessStateUnspecified ProcessState = iota
	ProcessStateRunning
	ProcessStateStopped
)

func (s ProcessState) String() string {
	switch s {
	case ProcessStateRunning:
		return "running"
	case ProcessStateStopped:
		return "stopped"
	default:
		return "unspecified"
	}
}

// Command captures the shell command line used to start the supervised process.
type Command struct {
	Line string
	Dir  string
}

// ProcessStatus captures runtime state and timestamps of one supervised run.
type ProcessStatus struct {
	RunID     string
	PID       int
	State     ProcessState
	ExitCode  *int
	StartTime time.Time
	EndTime   *time.Time
}

// ConnectivityState is the tag of a Connectivity value.
type ConnectivityState int

const (
	Offline ConnectivityState = iota
	Connecting
	Online
)

func (s ConnectivityState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Online:
		return "online"
	default:
		return "offline"
	}
}

// Connectivity is what the status poller reports. Count is meaningful only when
// State is Online.
type Connectivity struct {
	State ConnectivityState
	Count int
}

func OfflineStatus() Connectivity    { return Connectivity{State: Offline} }
func ConnectingStatus() Connectivity { return Connectivity{State: Connecting} }

func OnlineStatus(count int) Connectivity {
	return Connectivity{State: Online, Count: count}
}

// Label is the text shown in the ACTIVE USERS display.
func (c Connectivity) Label() string {
	switch c.State {
	case Online:
		return fmt.Sprint(c.Count)
	case Connecting:
		return "Starting..."
	default:
		return "OFFLINE"
	}
}

// Stream identifies the pipe an output line came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// OutputLine is one line of supervised process output.
type OutputLine struct {
	Stream Stream
	Text   string
}

// LogSource tags who produced a panel log entry.
type LogSource string

const (
	SourcePanel  LogSource = "panel"
	SourceServer LogSource = "server"
	SourceGit    LogSource = "git"
	SourcePoll   LogSource = "poll"
)

// LogEntry is one line of the append-only panel log.
type LogEntry struct {
	Seq     uint64
	Time    time.Time
	Source  LogSource
	Message string
}

// String renders the entry the way the log pane shows it: "[15:04:05] message".
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format("15:04:05"), e.Message)
}
