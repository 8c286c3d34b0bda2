package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	apiv1 "github.com/SanjoDeundiak/devpanel/api/v1"
)

func printStatusTable(w io.Writer, st *apiv1.StatusResponse) {
	state := "Stopped"
	if st.Running {
		state = "Running"
	}
	pid := "-"
	if st.Process != nil && st.Process.State == apiv1.ProcessStateRunning {
		pid = fmt.Sprint(st.Process.PID)
	}

	rows := [][2]string{
		{"STATE", state},
		{"COMMAND", st.Command},
		{"PID", pid},
		{"ACTIVE USERS", st.Connectivity.Label},
		{"NEXT PUSH", st.NextPush},
	}
	if st.Owner != "" {
		rows = append(rows, [2]string{"OWNER", st.Owner})
	}
	if st.LastPush != nil {
		rows = append(rows, [2]string{"LAST PUSH", pushSummary(*st.LastPush)})
	}
	if st.StartError != "" {
		rows = append(rows, [2]string{"START ERROR", st.StartError})
	}
	printRows(w, rows)
}

func pushSummary(p apiv1.PushOutcome) string {
	result := "ok"
	if !p.Success {
		result = "failed"
	}
	return fmt.Sprintf("%s %s", result, humanize.Time(p.At))
}

// printRows draws a two-column key/value table.
func printRows(w io.Writer, rows [][2]string) {
	keyW, valW := 3, 5
	for _, r := range rows {
		keyW = maxInt(keyW, len(r[0]))
		valW = maxInt(valW, len(r[1]))
	}

	sep := fmt.Sprintf("+-%s-+-%s-+\n", strings.Repeat("-", keyW), strings.Repeat("-", valW))
	fmt.Fprint(w, sep)
	for _, r := range rows {
		fmt.Fprintf(w, "| %s | %s |\n", pad(r[0], keyW), pad(r[1], valW))
	}
	fmt.Fprint(w, sep)
}

func printHistory(w io.Writer, h *apiv1.HistoryResponse) {
	fmt.Fprintln(w, "RUNS")
	runRows := [][]string{{"ID", "PID", "STARTED", "ENDED", "EXIT"}}
	for _, r := range h.Runs {
		ended, exit := "running", "-"
		if r.EndedAt != nil {
			ended = humanize.Time(*r.EndedAt)
		}
		if r.ExitCode != nil {
			exit = fmt.Sprint(*r.ExitCode)
		}
		runRows = append(runRows, []string{shortID(r.ID), fmt.Sprint(r.PID), humanize.Time(r.StartedAt), ended, exit})
	}
	printGrid(w, runRows)

	fmt.Fprintln(w, "PUSHES")
	pushRows := [][]string{{"ID", "AT", "COMMITTED", "RESULT", "DETAIL"}}
	for _, p := range h.Pushes {
		result := "ok"
		if !p.Success {
			result = "failed"
		}
		pushRows = append(pushRows, []string{
			fmt.Sprint(p.ID), humanize.Time(p.At), fmt.Sprint(p.Committed), result, firstLine(p.Detail),
		})
	}
	printGrid(w, pushRows)
}

// printGrid draws a table whose first row is the header.
func printGrid(w io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = maxInt(widths[i], len(cell))
		}
	}

	var sep strings.Builder
	sep.WriteString("+")
	for _, width := range widths {
		sep.WriteString(strings.Repeat("-", width+2))
		sep.WriteString("+")
	}
	sep.WriteString("\n")

	fmt.Fprint(w, sep.String())
	for i, r := range rows {
		fmt.Fprint(w, "|")
		for j, cell := range r {
			fmt.Fprintf(w, " %s |", pad(cell, widths[j]))
		}
		fmt.Fprintln(w)
		if i == 0 {
			fmt.Fprint(w, sep.String())
		}
	}
	fmt.Fprint(w, sep.String())
}

func printLogEntry(w io.Writer, e apiv1.LogEntry) {
	fmt.Fprintf(w, "[%s] %s\n", e.Time.Local().Format(time.TimeOnly), e.Message)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
