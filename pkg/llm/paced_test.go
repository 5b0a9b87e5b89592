package llm_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/espalier/pkg/llm"
)

func TestPaced_MinimumInterval(t *testing.T) {
	var calls []time.Time
	client := llm.Func(func(context.Context, string) (string, error) {
		calls = append(calls, time.Now())
		return "ok", nil
	})

	interval := 40 * time.Millisecond
	paced := llm.NewPaced(client, interval)

	for range 3 {
		if _, err := paced.Invoke(context.Background(), "p"); err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
	}

	if len(calls) != 3 {
		t.Fatalf("Expected 3 calls, got %d", len(calls))
	}
	for i := 1; i < len(calls); i++ {
		// Allow a small scheduling slack below the nominal interval.
		if gap := calls[i].Sub(calls[i-1]); gap < interval-5*time.Millisecond {
			t.Errorf("Calls %d and %d only %v apart, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestPaced_ConcurrentCallersShareOneSlot(t *testing.T) {
	var mu sync.Mutex
	var calls []time.Time
	client := llm.Func(func(context.Context, string) (string, error) {
		mu.Lock()
		calls = append(calls, time.Now())
		mu.Unlock()
		return "ok", nil
	})

	interval := 50 * time.Millisecond
	paced := llm.NewPaced(client, interval)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := paced.Invoke(context.Background(), "p"); err != nil {
				t.Errorf("Invoke failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(calls) != 3 {
		t.Fatalf("Expected 3 calls, got %d", len(calls))
	}
	sort.Slice(calls, func(i, j int) bool { return calls[i].Before(calls[j]) })
	for i := 1; i < len(calls); i++ {
		// Concurrent waiters wake together; only one may claim the slot.
		if gap := calls[i].Sub(calls[i-1]); gap < interval-5*time.Millisecond {
			t.Errorf("Calls %d and %d only %v apart, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestPaced_ZeroIntervalPassesThrough(t *testing.T) {
	count := 0
	paced := llm.NewPaced(llm.Func(func(context.Context, string) (string, error) {
		count++
		return "ok", nil
	}), 0)

	start := time.Now()
	for range 5 {
		if _, err := paced.Invoke(context.Background(), "p"); err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
	}
	if count != 5 {
		t.Fatalf("Expected 5 calls, got %d", count)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Unpaced calls took suspiciously long: %v", elapsed)
	}
}

func TestPaced_CancellationWhileWaiting(t *testing.T) {
	paced := llm.NewPaced(llm.Func(func(context.Context, string) (string, error) {
		return "ok", nil
	}), 5*time.Second)

	// First call claims the slot.
	if _, err := paced.Invoke(context.Background(), "p"); err != nil {
		t.Fatalf("first Invoke failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := paced.Invoke(ctx, "p"); err == nil {
		t.Fatal("Expected context error while waiting for the pacing slot")
	}
}
