package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestQuery_LoadsOnce(t *testing.T) {
	var calls atomic.Int32
	q := NewQuery(func(context.Context) (string, error) {
		calls.Add(1)
		return "settings", nil
	})

	if q.Loaded() {
		t.Error("Expected a fresh query to be cold")
	}

	for i := 0; i < 3; i++ {
		got, err := q.Get(context.Background())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != "settings" {
			t.Errorf("Expected 'settings', got %q", got)
		}
	}

	if n := calls.Load(); n != 1 {
		t.Errorf("Expected a single load, got %d", n)
	}
	if !q.Loaded() {
		t.Error("Expected query to be loaded")
	}
}

func TestQuery_SharesConcurrentLoads(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	entered := make(chan struct{})

	q := NewQuery(func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		return 42, nil
	})

	const callers = 10
	var wg sync.WaitGroup
	results := make(chan int, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, _ := q.Get(context.Background())
		results <- v
	}()
	<-entered

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _ := q.Get(context.Background())
			results <- v
		}()
	}

	close(release)
	wg.Wait()
	close(results)

	for v := range results {
		if v != 42 {
			t.Errorf("Expected 42, got %d", v)
		}
	}
	// Late callers either joined the flight or hit the cache.
	if n := calls.Load(); n != 1 {
		t.Errorf("Expected a single load, got %d", n)
	}
}

func TestQuery_ErrorsAreNotCached(t *testing.T) {
	boom := errors.New("backend down")
	var fail atomic.Bool
	fail.Store(true)

	q := NewQuery(func(context.Context) (string, error) {
		if fail.Load() {
			return "", boom
		}
		return "ok", nil
	})

	if _, err := q.Get(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Expected %v, got %v", boom, err)
	}
	if q.Loaded() {
		t.Error("Expected failed load to leave the query cold")
	}

	fail.Store(false)
	got, err := q.Get(context.Background())
	if err != nil || got != "ok" {
		t.Errorf("Expected retry to succeed, got %q, %v", got, err)
	}
}

func TestQuery_Invalidate(t *testing.T) {
	var calls atomic.Int32
	q := NewQuery(func(context.Context) (int32, error) {
		return calls.Add(1), nil
	})

	first, _ := q.Get(context.Background())
	q.Invalidate()
	if q.Loaded() {
		t.Error("Expected Invalidate to drop the value")
	}

	second, _ := q.Get(context.Background())
	if first != 1 || second != 2 {
		t.Errorf("Expected a reload after Invalidate, got %d then %d", first, second)
	}
}

func TestQuery_InvalidateDuringLoad(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	var calls atomic.Int32

	q := NewQuery(func(context.Context) (int32, error) {
		n := calls.Add(1)
		if n == 1 {
			entered <- struct{}{}
			<-release
		}
		return n, nil
	})

	done := make(chan int32)
	go func() {
		v, _ := q.Get(context.Background())
		done <- v
	}()

	<-entered
	q.Invalidate()
	close(release)

	if v := <-done; v != 1 {
		t.Errorf("Expected in-flight caller to get its load, got %d", v)
	}
	if q.Loaded() {
		t.Error("Expected a load started before Invalidate to be discarded")
	}
}

func TestQuery_IgnoresCallerCancellation(t *testing.T) {
	q := NewQuery(func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "loaded", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := q.Get(ctx)
	if err != nil || got != "loaded" {
		t.Errorf("Expected load to ignore caller cancellation, got %q, %v", got, err)
	}
}
