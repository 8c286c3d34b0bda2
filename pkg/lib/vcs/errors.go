package vcs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotRepository indicates the directory is not inside a git work tree.
	ErrNotRepository = errors.New("not a git repository")

	// ErrNothingToCommit indicates the commit step found no staged changes.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrPushRejected indicates the remote refused the push.
	ErrPushRejected = errors.New("push rejected by remote")

	// ErrGitNotFound indicates the git executable is not on PATH.
	ErrGitNotFound = errors.New("git executable not found")
)

// CommandError describes a git invocation that exited unsuccessfully.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s: exit %d: %s", strings.Join(e.Args, " "), e.ExitCode, msg)
}

func (e *CommandError) Unwrap() error { return e.Err }
