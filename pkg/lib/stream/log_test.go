package stream

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestRunNewLog_Empty(t *testing.T) {
	l := RunNewLog[string]()
	defer l.Stop()

	cnt := 0
	l.ForEach(func(string) bool {
		cnt++
		return true
	})
	if cnt != 0 {
		t.Fatalf("expected 0 items, got %d", cnt)
	}
	if got := l.Len(); got != 0 {
		t.Fatalf("expected empty log, got len %d", got)
	}
}

func TestAppendAndForEach_OrderAndEarlyStop(t *testing.T) {
	l := RunNewLog[string]()
	defer l.Stop()
	l.Append("a")
	l.Append("b")
	l.Append("c")

	want := []string{"a", "b", "c"}
	if got := l.Snapshot(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("order mismatch: got=%v want=%v", got, want)
	}

	// Early stop after two elements
	var got []string
	calls := 0
	l.ForEach(func(v string) bool {
		calls++
		got = append(got, v)
		return calls < 2
	})
	if calls != 2 || fmt.Sprint(got) != fmt.Sprint([]string{"a", "b"}) {
		t.Fatalf("early stop failed: calls=%d got=%v", calls, got)
	}
}

func TestTail(t *testing.T) {
	l := RunNewLog[int]()
	defer l.Stop()
	for i := 1; i <= 5; i++ {
		l.Append(i)
	}
	if got := l.Tail(2); fmt.Sprint(got) != "[4 5]" {
		t.Fatalf("unexpected tail: %v", got)
	}
	if got := l.Tail(10); len(got) != 5 {
		t.Fatalf("expected whole log, got %v", got)
	}
}

func TestNilReceiverSafety(t *testing.T) {
	var l *Log[string]

	l.ForEach(nil)

	called := false
	l.ForEach(func(string) bool {
		called = true
		return true
	})
	if called {
		t.Fatalf("ForEach should not invoke iter for nil receiver")
	}

	l.Append("x")
	l.Stop()

	if got := l.Len(); got != 0 {
		t.Fatalf("expected zero length from nil receiver, got %d", got)
	}
}

func TestSubscribe_DeliversExistingItemsInOrder(t *testing.T) {
	l := RunNewLog[string]()
	defer l.Stop()
	l.Append("a")
	l.Append("b")
	l.Append("c")

	ch := l.Subscribe(context.Background(), 3)

	for _, want := range []string{"a", "b", "c"} {
		if v, ok := recvWithTimeout(t, ch, 200*time.Millisecond); !ok || v != want {
			t.Fatalf("expected %q, ok=%v v=%q", want, ok, v)
		}
	}

	// No further messages should arrive without new appends
	assertNoRecv(t, ch, 50*time.Millisecond)

	l.Append("d")
	if v, ok := recvWithTimeout(t, ch, 200*time.Millisecond); !ok || v != "d" {
		t.Fatalf("expected live item 'd', ok=%v v=%q", ok, v)
	}
}

func TestSubscribe_ChannelClosesOnStop(t *testing.T) {
	l := RunNewLog[string]()
	l.Append("x")

	ch := l.Subscribe(context.Background(), 1)

	if v, ok := recvWithTimeout(t, ch, 200*time.Millisecond); !ok || v != "x" {
		t.Fatalf("expected initial item 'x', ok=%v v=%q", ok, v)
	}

	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()

	l.Stop()

	select {
	case <-done:
	case <-time.After(300 * time.Millisecond):
		t.Fatalf("subscription channel did not close after Stop")
	}
}

func TestSubscribe_ChannelClosesOnCancel(t *testing.T) {
	l := RunNewLog[string]()
	defer l.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	ch := l.Subscribe(ctx, 1)

	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(300 * time.Millisecond):
		t.Fatalf("subscription channel did not close after context cancellation")
	}
}

func TestSubscribe_AfterStopReplaysEverything(t *testing.T) {
	l := RunNewLog[string]()
	l.Append("1")
	l.Append("2")
	l.Stop()

	// Give the broadcaster a moment to observe the stop.
	time.Sleep(20 * time.Millisecond)

	var got []string
	for v := range l.Subscribe(context.Background(), 0) {
		got = append(got, v)
	}
	if fmt.Sprint(got) != "[1 2]" {
		t.Fatalf("unexpected replay after stop: %v", got)
	}
}
