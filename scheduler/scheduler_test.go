package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunnerRunsOnInterval(t *testing.T) {
	var mu sync.Mutex
	runs := 0

	r := New(Task{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			mu.Lock()
			runs++
			mu.Unlock()
			return nil
		},
	})
	r.Start(context.Background())
	time.Sleep(55 * time.Millisecond)
	r.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, runs, 3)
}

func TestRunnerRunsAtStart(t *testing.T) {
	done := make(chan struct{})
	r := New(Task{
		Name:       "immediate",
		Interval:   time.Hour,
		RunAtStart: true,
		Run: func(context.Context) error {
			close(done)
			return nil
		},
	})
	r.Start(context.Background())
	defer r.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run at start")
	}
}

func TestRunnerNeverOverlapsARun(t *testing.T) {
	var mu sync.Mutex
	active := 0
	maxActive := 0

	r := New(Task{
		Name:     "slow",
		Interval: 5 * time.Millisecond,
		Run: func(context.Context) error {
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			return nil
		},
	})
	r.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	r.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxActive, "a slow task must delay itself, not overlap itself")
}

func TestRunnerKeepsGoingAfterFailure(t *testing.T) {
	var mu sync.Mutex
	runs := 0

	r := New(Task{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			mu.Lock()
			runs++
			mu.Unlock()
			return errors.New("boom")
		},
	})
	r.Start(context.Background())
	time.Sleep(45 * time.Millisecond)
	r.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, runs, 2)
}

func TestStopWaitsForInFlightRun(t *testing.T) {
	finished := false
	started := make(chan struct{})

	r := New(Task{
		Name:       "inflight",
		Interval:   time.Hour,
		RunAtStart: true,
		Run: func(context.Context) error {
			close(started)
			time.Sleep(30 * time.Millisecond)
			finished = true
			return nil
		},
	})
	r.Start(context.Background())
	<-started
	r.Stop()

	assert.True(t, finished, "Stop must wait for the running task")
}
