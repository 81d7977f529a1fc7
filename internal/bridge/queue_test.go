package bridge

import (
	"context"
	"testing"
	"time"
)

// spawnGated returns a task that completes with value once release closes.
func spawnGated(release <-chan struct{}, value int) *Task[int] {
	return Spawn(context.Background(), func(context.Context) (int, error) {
		<-release
		return value, nil
	})
}

func drainUntil(t *testing.T, q *requestQueue[int], want int) []int {
	t.Helper()

	var got []int
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(got) < want {
		q.drain(func(value int, err error) {
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got = append(got, value)
		})
		time.Sleep(time.Millisecond)
	}
	if len(got) != want {
		t.Fatalf("expected %d completions, got %d", want, len(got))
	}
	return got
}

func TestQueueDrainPreservesOrderOfRemaining(t *testing.T) {
	first := make(chan struct{})
	second := make(chan struct{})
	third := make(chan struct{})

	var q requestQueue[int]
	q.push(spawnGated(first, 1))
	q.push(spawnGated(second, 2))
	q.push(spawnGated(third, 3))

	// Complete the outer two; the middle entry stays queued.
	close(first)
	close(third)
	got := drainUntil(t, &q, 2)
	if got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected completions [1 3], got %v", got)
	}
	if q.len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", q.len())
	}

	close(second)
	got = drainUntil(t, &q, 1)
	if got[0] != 2 {
		t.Fatalf("expected remaining completion 2, got %v", got)
	}
	if q.len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.len())
	}
}

func TestQueueClearDropsEverything(t *testing.T) {
	blocked := make(chan struct{})
	defer close(blocked)

	var q requestQueue[int]
	q.push(spawnGated(blocked, 1))
	q.push(spawnGated(blocked, 2))

	if n := q.clear(); n != 2 {
		t.Fatalf("expected 2 dropped entries, got %d", n)
	}
	if q.len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.len())
	}

	// Nothing is ever reported for dropped entries.
	q.drain(func(int, error) {
		t.Fatal("drain must not observe dropped tasks")
	})
}
