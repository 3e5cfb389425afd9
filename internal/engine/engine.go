// Released under an MIT license. See LICENSE.

// Package engine runs REPL input on a single worker so that at most one
// pipeline is in flight, whatever goroutine the input was read on.
package engine

import (
	"context"
	"sync"
)

// Executor runs one line of input, or reports input that was rejected
// before it could be run.
type Executor interface {
	Execute(ctx context.Context, line string)
	Reject(ctx context.Context, err error)
	Stopped() bool
}

type request struct {
	ctx  context.Context
	err  error
	line string
}

// T (engine) is a facade in front of the worker evaluating input.
type T struct {
	cmd  chan request
	done chan struct{}
	x    Executor

	mu   sync.Mutex
	once sync.Once
	wg   sync.WaitGroup
}

// New creates a new T and starts its worker.
func New(x Executor) *T {
	e := &T{
		cmd:  make(chan request, 1),
		done: make(chan struct{}, 1),
		x:    x,
	}

	e.wg.Add(1)

	go e.foreground()

	return e
}

// Evaluate sends line to the worker and waits for it to finish.
func (e *T) Evaluate(ctx context.Context, line string) {
	e.submit(request{ctx: ctx, line: line})
}

// Reject has the worker report err in place of a line.
func (e *T) Reject(ctx context.Context, err error) {
	e.submit(request{ctx: ctx, err: err})
}

// Stopped reports whether the input asked to leave the REPL. It is safe to
// call from the goroutine that calls Evaluate.
func (e *T) Stopped() bool {
	return e.x.Stopped()
}

// Close stops the worker. Evaluate must not be called afterward.
func (e *T) Close() {
	e.once.Do(func() {
		close(e.cmd)
		e.wg.Wait()
	})
}

func (e *T) foreground() {
	defer e.wg.Done()

	for r := range e.cmd {
		if r.err != nil {
			e.x.Reject(r.ctx, r.err)
		} else {
			e.x.Execute(r.ctx, r.line)
		}

		e.done <- struct{}{}
	}
}

func (e *T) submit(r request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cmd <- r
	<-e.done
}
