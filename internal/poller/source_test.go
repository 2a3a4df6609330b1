package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRefreshPublishes(t *testing.T) {
	src := NewSource("n", 0, func(context.Context) (int, error) { return 42, nil })

	var updates []Snapshot[int]
	src.OnUpdate(func(s Snapshot[int]) { updates = append(updates, s) })

	got := src.Refresh(context.Background())
	if got.Data != 42 || got.Err != nil || got.IsLoading || got.Seq != 1 {
		t.Fatalf("snapshot = %+v", got)
	}
	if len(updates) != 2 || !updates[0].IsLoading || updates[1].IsLoading {
		t.Errorf("updates = %+v, want loading then loaded", updates)
	}
}

func TestRefreshReplacesWholesaleOnError(t *testing.T) {
	calls := 0
	src := NewSource("n", 0, func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 7, nil
		}
		return 0, errors.New("boom")
	})
	src.Refresh(context.Background())
	got := src.Refresh(context.Background())
	if got.Err == nil || got.Data != 0 || got.Seq != 2 {
		t.Errorf("snapshot = %+v, want error result replacing data", got)
	}
}

func TestStaleResultDoesNotOverwrite(t *testing.T) {
	release := make(chan struct{})
	var n atomic.Int32
	src := NewSource("n", 0, func(context.Context) (string, error) {
		if n.Add(1) == 1 {
			<-release // first fetch is slow
			return "old", nil
		}
		return "new", nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		src.Refresh(context.Background())
	}()
	waitFor(t, func() bool { return n.Load() == 1 })

	newer := src.Refresh(context.Background())
	if newer.Data != "new" || newer.Seq != 2 {
		t.Fatalf("newer snapshot = %+v", newer)
	}
	if !newer.IsLoading {
		t.Error("IsLoading = false while the older fetch is still in flight")
	}

	close(release)
	wg.Wait()

	got := src.Snapshot()
	if got.Data != "new" || got.Seq != 2 {
		t.Errorf("snapshot after stale completion = %+v, want new/2", got)
	}
	if got.IsLoading {
		t.Error("IsLoading = true after all fetches finished")
	}
}

func TestRunPollsAndRevalidates(t *testing.T) {
	var n atomic.Int32
	src := NewSource("n", time.Hour, func(context.Context) (int32, error) { return n.Add(1), nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	waitFor(t, func() bool { return src.Snapshot().Seq == 1 })
	src.Revalidate()
	waitFor(t, func() bool { return src.Snapshot().Seq == 2 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunTicks(t *testing.T) {
	var n atomic.Int32
	src := NewSource("n", 10*time.Millisecond, func(context.Context) (int32, error) { return n.Add(1), nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Run(ctx)

	waitFor(t, func() bool { return n.Load() >= 3 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
