// Package vcs runs the git commands behind the auto-push action.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Repository runs git in a fixed working directory.
type Repository struct {
	dir    string
	logger *zap.Logger
}

// Open returns a Repository for dir. An empty dir means the current directory.
func Open(dir string, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{dir: dir, logger: logger}
}

// Dir returns the working directory git runs in.
func (r *Repository) Dir() string {
	return r.dir
}

// Verify checks that git is installed and dir is inside a work tree.
func (r *Repository) Verify(ctx context.Context) error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}
	out, err := r.git(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(out) != "true" {
		return ErrNotRepository
	}
	return nil
}

// AddAll stages every change in the work tree.
func (r *Repository) AddAll(ctx context.Context) error {
	_, err := r.git(ctx, "add", "-A")
	return err
}

// Commit records the staged changes. It returns ErrNothingToCommit when the
// index matches HEAD.
func (r *Repository) Commit(ctx context.Context, message string) error {
	out, err := r.git(ctx, "commit", "-m", message)
	if err != nil {
		var cerr *CommandError
		if errors.As(err, &cerr) && (strings.Contains(out, "nothing to commit") ||
			strings.Contains(cerr.Stderr, "nothing to commit") ||
			strings.Contains(out, "nothing added to commit")) {
			return ErrNothingToCommit
		}
		return err
	}
	return nil
}

// Push pushes to remote and branch. Both are optional; branch is ignored
// without a remote.
func (r *Repository) Push(ctx context.Context, remote, branch string) error {
	args := []string{"push"}
	if remote != "" {
		args = append(args, remote)
		if branch != "" {
			args = append(args, branch)
		}
	}

	_, err := r.git(ctx, args...)
	if err != nil {
		var cerr *CommandError
		if errors.As(err, &cerr) && strings.Contains(cerr.Stderr, "[rejected]") {
			cerr.Err = ErrPushRejected
		}
		return err
	}
	return nil
}

// git runs one git command and returns its stdout. A non-zero exit is reported
// as *CommandError carrying the captured stderr.
func (r *Repository) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if r.dir != "" {
		cmd.Dir = r.dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running git", zap.Strings("args", args), zap.String("dir", r.dir))
	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if errors.Is(err, exec.ErrNotFound) {
			err = ErrGitNotFound
		}
		return stdout.String(), &CommandError{
			Args:     args,
			ExitCode: code,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	return stdout.String(), nil
}
