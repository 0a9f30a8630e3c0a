// Package shutdownqueue collects cleanup tasks during startup and drains
// them in LIFO order at the end of main. Tasks run once; panics are
// recovered and reported; errors are aggregated with errors.Join.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown step. It should honor ctx and return an error if it
// cannot finish before ctx is done.
type Task func(ctx context.Context) error

var global = &queue{}

type queue struct {
	mu     sync.Mutex
	tasks  []Task
	closed bool
}

// Add registers a task to run on Shutdown. Nil tasks and registrations
// after shutdown has started are ignored.
func Add(t Task) {
	if t == nil {
		return
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.closed {
		return
	}

	global.tasks = append(global.tasks, t)
}

// Shutdown drains all registered tasks in reverse registration order.
// Calling it again after the first drain is a no-op. If ctx expires
// mid-drain the remaining tasks are skipped and the context error is
// included in the result.
func Shutdown(ctx context.Context) error {
	global.mu.Lock()

	if global.closed && len(global.tasks) == 0 {
		global.mu.Unlock()
		return nil
	}

	global.closed = true
	tasks := global.tasks
	global.tasks = nil

	global.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))
			return errors.Join(errs...)
		default:
		}

		err := runTask(ctx, tasks[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task: %v", r)
		}
	}()

	return t(ctx)
}
