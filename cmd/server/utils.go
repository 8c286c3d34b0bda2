package main

import (
	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
	"github.com/SanjoDeundiak/devpanel/pkg/lib"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/history"
	"github.com/SanjoDeundiak/devpanel/pkg/lib/panel"
)

func toStatusResponse(s panel.Snapshot, owner string) apiv1.StatusResponse {
	resp := apiv1.StatusResponse{
		Running:        s.Running,
		Epoch:          s.Epoch,
		Command:        s.Command,
		Owner:          owner,
		Connectivity:   toConnectivity(s.Connectivity),
		NextPush:       s.NextPush(),
		RemainingTicks: s.Remaining,
		PeriodTicks:    s.Period,
		StartError:     s.StartError,
	}
	if s.Process != nil {
		resp.Process = toProcessStatus(s.Process)
	}
	if s.LastPush != nil {
		resp.LastPush = &apiv1.PushOutcome{
			At:         s.LastPush.At,
			Committed:  s.LastPush.Committed,
			Success:    s.LastPush.Success,
			Detail:     s.LastPush.Detail,
			DurationMS: s.LastPush.Duration.Milliseconds(),
		}
	}
	return resp
}

func toProcessStatus(st *lib.ProcessStatus) *apiv1.ProcessStatus {
	ps := &apiv1.ProcessStatus{
		RunID:     st.RunID,
		PID:       st.PID,
		State:     toProcessState(st.State),
		StartTime: st.StartTime,
	}
	if st.ExitCode != nil {
		v := *st.ExitCode
		ps.ExitCode = &v
	}
	if st.EndTime != nil {
		t := *st.EndTime
		ps.EndTime = &t
	}
	return ps
}

func toProcessState(s lib.ProcessState) string {
	switch s {
	case lib.ProcessStateRunning:
		return apiv1.ProcessStateRunning
	case lib.ProcessStateStopped:
		return apiv1.ProcessStateStopped
	default:
		return apiv1.ProcessStateUnspecified
	}
}

func toConnectivity(c lib.Connectivity) apiv1.Connectivity {
	return apiv1.Connectivity{State: c.State.String(), Count: c.Count, Label: c.Label()}
}

func toLogEntry(e lib.LogEntry) apiv1.LogEntry {
	return apiv1.LogEntry{Seq: e.Seq, Time: e.Time, Source: string(e.Source), Message: e.Message}
}

func toRunRecord(r history.RunRecord) apiv1.RunRecord {
	return apiv1.RunRecord{
		ID:        r.ID,
		Command:   r.Command,
		PID:       r.PID,
		StartedAt: r.StartedAt,
		EndedAt:   r.EndedAt,
		ExitCode:  r.ExitCode,
	}
}

func toPushRecord(p history.PushRecord) apiv1.PushRecord {
	return apiv1.PushRecord{ID: p.ID, At: p.At, Committed: p.Committed, Success: p.Success, Detail: p.Detail}
}
