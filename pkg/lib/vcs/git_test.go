package vcs

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

// testRepo creates a work tree with one commit and a bare "origin" it tracks.
func testRepo(t *testing.T) (work, bare string) {
	t.Helper()
	requireGit(t)

	root := t.TempDir()
	bare = filepath.Join(root, "origin.git")
	work = filepath.Join(root, "work")
	require.NoError(t, os.MkdirAll(work, 0o755))

	runGit(t, root, "init", "--bare", bare)
	runGit(t, work, "init")
	runGit(t, work, "config", "user.email", "test@example.com")
	runGit(t, work, "config", "user.name", "Test User")
	runGit(t, work, "checkout", "-b", "main")
	writeFile(t, work, "README.md", "hello\n")
	runGit(t, work, "add", "-A")
	runGit(t, work, "commit", "-m", "initial")
	runGit(t, work, "remote", "add", "origin", bare)
	runGit(t, work, "push", "-u", "origin", "main")
	return work, bare
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestVerify(t *testing.T) {
	work, _ := testRepo(t)
	require.NoError(t, Open(work, nil).Verify(context.Background()))

	err := Open(t.TempDir(), nil).Verify(context.Background())
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestCommitNothingToCommit(t *testing.T) {
	work, _ := testRepo(t)
	repo := Open(work, nil)

	require.NoError(t, repo.AddAll(context.Background()))
	err := repo.Commit(context.Background(), "empty")
	assert.ErrorIs(t, err, ErrNothingToCommit)
}

func TestAutoPusherPushesNewCommit(t *testing.T) {
	work, bare := testRepo(t)
	writeFile(t, work, "change.txt", "new content\n")

	p := &AutoPusher{Repo: Open(work, nil), Message: "Auto-save: test"}
	res, err := p.Push(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.True(t, res.Pushed)

	assert.Equal(t, "Auto-save: test", runGit(t, bare, "log", "-1", "--format=%s", "main"))
}

func TestAutoPusherPushesWithoutChanges(t *testing.T) {
	work, _ := testRepo(t)

	p := &AutoPusher{Repo: Open(work, nil), Remote: "origin", Branch: "main"}
	res, err := p.Push(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Committed, "nothing to commit must not abort the push")
	assert.True(t, res.Pushed)
}

func TestAutoPusherReportsPushStderr(t *testing.T) {
	work, _ := testRepo(t)
	writeFile(t, work, "change.txt", "data\n")

	p := &AutoPusher{Repo: Open(work, nil), Remote: "nowhere"}
	res, err := p.Push(context.Background())
	require.Error(t, err)
	assert.True(t, res.Committed)
	assert.False(t, res.Pushed)

	var cerr *CommandError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, []string{"push", "nowhere"}, cerr.Args)
	assert.NotZero(t, cerr.ExitCode)
	assert.NotEmpty(t, cerr.Stderr)
	assert.Equal(t, cerr.Stderr, FailureText(err))
}

func TestAutoPusherAbortsWhenAddFails(t *testing.T) {
	requireGit(t)

	p := &AutoPusher{Repo: Open(t.TempDir(), nil)}
	res, err := p.Push(context.Background())
	require.Error(t, err)
	assert.False(t, res.Pushed)
	assert.Contains(t, err.Error(), "stage changes")
}

func TestCommandErrorFallsBackToErr(t *testing.T) {
	err := &CommandError{Args: []string{"push"}, ExitCode: -1, Err: errors.New("signal: killed")}
	assert.Equal(t, "git push: exit -1: signal: killed", err.Error())
	assert.Equal(t, err.Error(), FailureText(err))
}
