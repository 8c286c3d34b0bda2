// Package apiv1 holds the JSON messages of the dev panel control API and a
// client for it.
package apiv1

import "time"

const (
	PathStart   = "/v1/start"
	PathStop    = "/v1/stop"
	PathStatus  = "/v1/status"
	PathLogs    = "/v1/logs"
	PathHistory = "/v1/history"
	PathHealth  = "/healthz"
)

// Process states as reported in ProcessStatus.State.
const (
	ProcessStateUnspecified = "unspecified"
	ProcessStateRunning     = "running"
	ProcessStateStopped     = "stopped"
)

type ProcessStatus struct {
	RunID     string     `json:"run_id"`
	PID       int        `json:"pid"`
	State     string     `json:"state"`
	ExitCode  *int       `json:"exit_code,omitempty"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Connectivity is the stats endpoint state: offline, connecting or online.
type Connectivity struct {
	State string `json:"state"`
	Count int    `json:"count"`
	Label string `json:"label"`
}

type PushOutcome struct {
	At         time.Time `json:"at"`
	Committed  bool      `json:"committed"`
	Success    bool      `json:"success"`
	Detail     string    `json:"detail,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

type StatusResponse struct {
	Running        bool           `json:"running"`
	Epoch          uint64         `json:"epoch"`
	Command        string         `json:"command"`
	Owner          string         `json:"owner,omitempty"`
	Process        *ProcessStatus `json:"process,omitempty"`
	Connectivity   Connectivity   `json:"connectivity"`
	NextPush       string         `json:"next_push"`
	RemainingTicks int            `json:"remaining_ticks"`
	PeriodTicks    int            `json:"period_ticks"`
	LastPush       *PushOutcome   `json:"last_push,omitempty"`
	StartError     string         `json:"start_error,omitempty"`
}

// StartResponse reports whether the call started the panel. Started is false
// when the panel was already running.
type StartResponse struct {
	Started bool           `json:"started"`
	Status  StatusResponse `json:"status"`
}

// StopResponse reports whether the call stopped the panel. Stopped is false
// when the panel was not running.
type StopResponse struct {
	Stopped bool           `json:"stopped"`
	Status  StatusResponse `json:"status"`
}

// LogEntry is one line of the panel log. The logs endpoint streams them as
// newline-delimited JSON.
type LogEntry struct {
	Seq     uint64    `json:"seq"`
	Time    time.Time `json:"time"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
}

type RunRecord struct {
	ID        string     `json:"id"`
	Command   string     `json:"command"`
	PID       int        `json:"pid"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	ExitCode  *int       `json:"exit_code,omitempty"`
}

type PushRecord struct {
	ID        int64     `json:"id"`
	At        time.Time `json:"at"`
	Committed bool      `json:"committed"`
	Success   bool      `json:"success"`
	Detail    string    `json:"detail,omitempty"`
}

type HistoryResponse struct {
	Runs   []RunRecord  `json:"runs"`
	Pushes []PushRecord `json:"pushes"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
