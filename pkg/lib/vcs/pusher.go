package vcs

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DefaultCommitMessage is used when no message is configured.
const DefaultCommitMessage = "Auto-save: 10 min interval"

// PushResult reports what one auto-push cycle did.
type PushResult struct {
	Committed bool
	Pushed    bool
}

// AutoPusher stages, commits and pushes a repository in one step.
type AutoPusher struct {
	Repo    *Repository
	Message string
	Remote  string
	Branch  string
}

// Push runs add, commit and push in sequence. A failed commit does not stop
// the push; only the push outcome decides success. Add failures abort the
// cycle.
func (p *AutoPusher) Push(ctx context.Context) (PushResult, error) {
	var res PushResult

	if err := p.Repo.AddAll(ctx); err != nil {
		return res, fmt.Errorf("stage changes: %w", err)
	}

	msg := p.Message
	if msg == "" {
		msg = DefaultCommitMessage
	}
	switch err := p.Repo.Commit(ctx, msg); {
	case err == nil:
		res.Committed = true
	case errors.Is(err, ErrNothingToCommit):
		p.Repo.logger.Debug("nothing to commit")
	default:
		p.Repo.logger.Warn("commit failed, pushing anyway", zap.Error(err))
	}

	if err := p.Repo.Push(ctx, p.Remote, p.Branch); err != nil {
		return res, err
	}
	res.Pushed = true
	return res, nil
}

// FailureText returns the text a user should see for a failed push: git's
// stderr when available, else the error message.
func FailureText(err error) string {
	var cerr *CommandError
	if errors.As(err, &cerr) && cerr.Stderr != "" {
		return cerr.Stderr
	}
	return err.Error()
}
