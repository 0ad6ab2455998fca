package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type testJob struct {
	id      int
	delay   time.Duration
	err     error
	counter *atomic.Int64
}

type testResult struct {
	id  int
	err error
}

func (r *testResult) GetError() error { return r.err }

func (j *testJob) Execute(ctx context.Context) Result {
	if j.counter != nil {
		j.counter.Add(1)
	}
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return &testResult{id: j.id, err: ctx.Err()}
		}
	}
	return &testResult{id: j.id, err: j.err}
}

func TestPoolExecutesAllJobs(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(3)
	pool.Start()

	for i := 0; i < 10; i++ {
		pool.Submit(&testJob{id: i, counter: &counter})
	}

	results := pool.Wait()
	if len(results) != 10 {
		t.Errorf("got %d results, want 10", len(results))
	}
	if counter.Load() != 10 {
		t.Errorf("executed %d jobs, want 10", counter.Load())
	}
}

func TestPoolPropagatesErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&testJob{id: 1})
	pool.Submit(&testJob{id: 2, err: errors.New("boom")})

	results := pool.Wait()
	errCount := 0
	for _, r := range results {
		if r.GetError() != nil {
			errCount++
		}
	}
	if errCount != 1 {
		t.Errorf("got %d errors, want 1", errCount)
	}
}

func TestPoolZeroWorkersDefaultsToOne(t *testing.T) {
	pool := NewPool(0)
	pool.Start()

	pool.Submit(&testJob{id: 1})
	results := pool.Wait()
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestPoolShutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	for i := 0; i < 4; i++ {
		pool.Submit(&testJob{id: i, delay: 5 * time.Second})
	}

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return promptly")
	}
}
