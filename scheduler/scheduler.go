// Package scheduler runs named tasks on fixed intervals. A task's next
// run is scheduled only after the previous one returns, so a slow
// sweep delays itself instead of overlapping itself.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Task is one periodic job.
type Task struct {
	Name     string
	Interval time.Duration
	// RunAtStart runs the task once immediately instead of waiting for
	// the first interval.
	RunAtStart bool
	Run        func(ctx context.Context) error
}

// Runner drives a set of tasks until stopped.
type Runner struct {
	tasks  []Task
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New builds a runner over the given tasks.
func New(tasks ...Task) *Runner {
	return &Runner{tasks: tasks}
}

// Start launches every task in its own goroutine and returns.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	for _, task := range r.tasks {
		r.wg.Add(1)
		go func(task Task) {
			defer r.wg.Done()
			r.loop(ctx, task)
		}(task)
	}
}

// Stop cancels every task and waits for in-flight runs to return.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, task Task) {
	if task.RunAtStart {
		r.run(ctx, task)
	}
	timer := time.NewTimer(task.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		r.run(ctx, task)
		timer.Reset(task.Interval)
	}
}

func (r *Runner) run(ctx context.Context, task Task) {
	started := time.Now()
	if err := task.Run(ctx); err != nil {
		log.Error().Err(err).Str("task", task.Name).Msg("task failed")
		return
	}
	log.Debug().Str("task", task.Name).Dur("took", time.Since(started)).Msg("task finished")
}
