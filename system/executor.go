package system

import (
	"context"
	"sync"
	"sync/atomic"

	"go.ambercrest.dev/cellsupervise/actor"
)

// goroutineExecutor is the concrete actor.Executor backend: each Run call
// launches one goroutine, tracked so Shutdown can wait for outstanding
// futures. Grounded on the teacher's Supervisor.runLoop, with the
// restart-on-panic policy dropped (a Context.Run future is a one-shot
// task, not a supervised worker).
type goroutineExecutor struct {
	wg       sync.WaitGroup
	stopping atomic.Bool
}

func newGoroutineExecutor() *goroutineExecutor {
	return &goroutineExecutor{}
}

// Run implements actor.Executor.
func (e *goroutineExecutor) Run(fn func(ctx context.Context)) (actor.Handle, error) {
	if e.stopping.Load() {
		return nil, actor.ErrSpawnShutdown
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(done)
		defer cancel()
		fn(ctx)
	}()

	return &runHandle{done: done, cancel: cancel}, nil
}

// Stop implements actor.Executor: further Run calls fail with
// ErrSpawnShutdown.
func (e *goroutineExecutor) Stop() {
	e.stopping.Store(true)
}

// Wait implements actor.Executor: blocks until every future started
// before Stop has returned.
func (e *goroutineExecutor) Wait() {
	e.wg.Wait()
}

type runHandle struct {
	done   chan struct{}
	cancel context.CancelFunc
}

func (h *runHandle) Done() <-chan struct{} { return h.done }
