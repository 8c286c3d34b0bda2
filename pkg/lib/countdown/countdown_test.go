package countdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidPeriod(t *testing.T) {
	_, err := New(0, nil)
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestStepScenarioPeriodThree(t *testing.T) {
	var published []int
	var fired []int

	timer, err := New(3, func(context.Context) error {
		fired = append(fired, len(published))
		return nil
	}, WithPublisher(func(v int) { published = append(published, v) }))
	require.NoError(t, err)

	timer.Reset()
	for i := 0; i < 6; i++ {
		timer.Step(context.Background())
	}

	// 3,2,1,0 -> action -> 3,2,1,0 -> action -> 3
	assert.Equal(t, []int{3, 2, 1, 0, 3, 2, 1, 0, 3}, published)
	assert.Equal(t, 2, timer.Invocations())
	// The action runs right after 0 is published and before the reset.
	assert.Equal(t, []int{4, 8}, fired)
	assert.Equal(t, 3, timer.Remaining())
}

func TestFailingActionDoesNotStallTimer(t *testing.T) {
	var outcomes []error
	boom := errors.New("push rejected")

	timer, err := New(2, func(context.Context) error { return boom },
		WithOutcome(func(err error) { outcomes = append(outcomes, err) }))
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		timer.Step(context.Background())
	}

	assert.Equal(t, 3, timer.Invocations())
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.ErrorIs(t, o, boom)
	}
	assert.Equal(t, 2, timer.Remaining())
}

func TestPeriodOneFiresEveryTick(t *testing.T) {
	timer, err := New(1, nil)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		assert.True(t, timer.Step(context.Background()))
		assert.Equal(t, i, timer.Invocations())
	}
}

func TestRunStopsWhenFlagCleared(t *testing.T) {
	var mu sync.Mutex
	var published []int
	timer, err := New(3, nil,
		WithTick(5*time.Millisecond),
		WithPublisher(func(v int) {
			mu.Lock()
			published = append(published, v)
			mu.Unlock()
		}))
	require.NoError(t, err)

	var running sync.Map
	running.Store("on", true)
	isRunning := func() bool {
		v, _ := running.Load("on")
		return v.(bool)
	}

	done := make(chan struct{})
	go func() {
		timer.Run(context.Background(), isRunning)
		close(done)
	}()

	require.Eventually(t, func() bool { return timer.Invocations() >= 2 }, time.Second, time.Millisecond)
	running.Store("on", false)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not observe the cleared flag")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, published)
	assert.Equal(t, 3, published[0], "Run publishes the initial period first")
}

func TestRunReturnsOnContextCancel(t *testing.T) {
	timer, err := New(100, nil, WithTick(time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		timer.Run(ctx, func() bool { return true })
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run ignored context cancellation")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		remaining int
		tick      time.Duration
		want      string
	}{
		{600, time.Second, "10:00"},
		{59, time.Second, "00:59"},
		{0, time.Second, "00:00"},
		{61, time.Second, "01:01"},
		{4, 500 * time.Millisecond, "00:02"},
		{-1, time.Second, "--:--"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Format(tc.remaining, tc.tick))
	}
}
