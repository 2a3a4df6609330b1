// Package poller re-runs fetch functions on independent timers and
// publishes immutable snapshots of their latest results.
package poller

import (
	"context"
	"log"
	"sync"
	"time"
)

// Fetcher produces one value. It is called from multiple goroutines when
// fetches overlap.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Snapshot is the published state of a Source. Seq identifies the fetch
// that produced Data and Err; it only ever increases.
type Snapshot[T any] struct {
	Data      T
	IsLoading bool
	Err       error
	Seq       uint64
	UpdatedAt time.Time
}

// Source polls one Fetcher. Each fetch takes a sequence number when it
// starts; a result is published only if no newer fetch has published
// already, so a slow older fetch never overwrites a newer result.
type Source[T any] struct {
	name     string
	interval time.Duration
	fetch    Fetcher[T]
	now      func() time.Time

	mu        sync.RWMutex
	snap      Snapshot[T]
	lastSeq   uint64
	published uint64
	inFlight  int
	listeners []func(Snapshot[T])

	trigger chan struct{}
	wg      sync.WaitGroup
}

func NewSource[T any](name string, interval time.Duration, fetch func(ctx context.Context) (T, error)) *Source[T] {
	return &Source[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		now:      time.Now,
		trigger:  make(chan struct{}, 1),
	}
}

func (s *Source[T]) Name() string { return s.name }

func (s *Source[T]) Interval() time.Duration { return s.interval }

func (s *Source[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// OnUpdate registers fn to receive every published snapshot, including
// loading transitions. fn runs on the fetching goroutine.
func (s *Source[T]) OnUpdate(fn func(Snapshot[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Revalidate asks a running source to fetch now. Requests made while one
// is already queued are coalesced.
func (s *Source[T]) Revalidate() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Refresh runs one fetch synchronously and returns the resulting snapshot
// (which may be a newer fetch's result if this one turned out stale).
func (s *Source[T]) Refresh(ctx context.Context) Snapshot[T] {
	seq := s.begin()
	data, err := s.fetch(ctx)
	s.complete(seq, data, err)
	return s.Snapshot()
}

func (s *Source[T]) begin() uint64 {
	s.mu.Lock()
	s.lastSeq++
	seq := s.lastSeq
	s.inFlight++
	s.snap.IsLoading = true
	snap, listeners := s.snap, s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return seq
}

func (s *Source[T]) complete(seq uint64, data T, err error) {
	s.mu.Lock()
	s.inFlight--
	stale := seq <= s.published
	if stale {
		log.Printf("[poller] %s: dropping stale result #%d (published #%d)", s.name, seq, s.published)
	} else {
		s.published = seq
		s.snap = Snapshot[T]{Data: data, Err: err, Seq: seq, UpdatedAt: s.now()}
		if err != nil {
			log.Printf("[poller] %s: fetch #%d failed: %v", s.name, seq, err)
		}
	}
	s.snap.IsLoading = s.inFlight > 0
	snap, listeners := s.snap, s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snap)
}

func (s *Source[T]) listenersLocked() []func(Snapshot[T]) {
	return append([]func(Snapshot[T]){}, s.listeners...)
}

func notify[T any](listeners []func(Snapshot[T]), snap Snapshot[T]) {
	for _, fn := range listeners {
		fn(snap)
	}
}

// Run fetches immediately, then on every tick and revalidate request until
// ctx is done. Fetches run in their own goroutines and may overlap. A
// non-positive interval disables the ticker. Run waits for in-flight
// fetches before returning.
func (s *Source[T]) Run(ctx context.Context) error {
	defer s.wg.Wait()

	s.spawn(ctx)

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("[poller] %s: stopping", s.name)
			return nil
		case <-tick:
			s.spawn(ctx)
		case <-s.trigger:
			s.spawn(ctx)
		}
	}
}

func (s *Source[T]) spawn(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Refresh(ctx)
	}()
}
