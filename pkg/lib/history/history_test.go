package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	start := time.UnixMilli(time.Now().UnixMilli())

	require.NoError(t, s.RecordRun(ctx, RunRecord{ID: "run-1", Command: "yarn start", PID: 42, StartedAt: start}))

	runs, err := s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndedAt)
	assert.Nil(t, runs[0].ExitCode)

	code := 0
	end := start.Add(time.Second)
	require.NoError(t, s.FinishRun(ctx, RunRecord{ID: "run-1", EndedAt: &end, ExitCode: &code}))

	runs, err = s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "yarn start", runs[0].Command)
	assert.Equal(t, 42, runs[0].PID)
	assert.True(t, start.Equal(runs[0].StartedAt))
	require.NotNil(t, runs[0].EndedAt)
	assert.True(t, end.Equal(*runs[0].EndedAt))
	require.NotNil(t, runs[0].ExitCode)
	assert.Equal(t, 0, *runs[0].ExitCode)
}

func TestFinishBeforeRecordKeepsBoth(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	start := time.UnixMilli(time.Now().UnixMilli())
	end := start.Add(10 * time.Millisecond)
	code := 1

	run := RunRecord{ID: "fast", Command: "false", PID: 7, StartedAt: start, EndedAt: &end, ExitCode: &code}
	require.NoError(t, s.FinishRun(ctx, run))
	require.NoError(t, s.RecordRun(ctx, RunRecord{ID: "fast", Command: "false", PID: 7, StartedAt: start}))

	runs, err := s.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].EndedAt)
	assert.True(t, end.Equal(*runs[0].EndedAt))
	require.NotNil(t, runs[0].ExitCode)
	assert.Equal(t, 1, *runs[0].ExitCode)
	assert.Equal(t, 7, runs[0].PID)
}

func TestRecentPushesNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		_, err := s.RecordPush(ctx, PushRecord{
			At:        base.Add(time.Duration(i) * time.Minute),
			Committed: i%2 == 0,
			Success:   i != 3,
			Detail:    "push " + string(rune('a'+i)),
		})
		require.NoError(t, err)
	}

	pushes, err := s.RecentPushes(ctx, 3)
	require.NoError(t, err)
	require.Len(t, pushes, 3)
	assert.Equal(t, "push e", pushes[0].Detail)
	assert.Equal(t, "push d", pushes[1].Detail)
	assert.False(t, pushes[1].Success)
	assert.True(t, pushes[0].Committed)
	assert.False(t, pushes[1].Committed)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.RecordPush(context.Background(), PushRecord{At: time.Now(), Success: true})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	pushes, err := s.RecentPushes(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pushes, 1)
}

func TestInMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.RecordRun(context.Background(), RunRecord{ID: "x", Command: "true", StartedAt: time.Now()}))
	runs, err := s.RecentRuns(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
