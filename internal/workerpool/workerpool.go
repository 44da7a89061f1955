// Package workerpool provides a bounded-concurrency task executor with a
// do-work/has-running-work/shutdown contract.
package workerpool

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrShutdown is returned by DoWork once Shutdown has been called.
var ErrShutdown = errors.New("workerpool: shut down, no longer accepting work")

// Task is a unit of work submitted to the pool. It takes no arguments and
// returns nothing; errors are the task's own responsibility to report
// (e.g. via a closure capturing a result channel or logger).
type Task func()

// Pool is a bounded-parallelism executor. N concurrent tasks run at once;
// DoWork blocks the caller until a slot is free.
type Pool struct {
	logger *zap.Logger
	sem    chan struct{}
	wg     sync.WaitGroup

	mu       sync.Mutex
	running  int
	shutdown bool
}

// New constructs a Pool with at most n concurrent tasks. n must be >= 1.
func New(n int, logger *zap.Logger) *Pool {
	if n < 1 {
		n = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		logger: logger,
		sem:    make(chan struct{}, n),
	}
}

// DoWork submits task for execution, blocking the caller until a worker
// slot is available. A panic inside task is recovered and logged; it does
// not crash the pool or leak the slot.
func (p *Pool) DoWork(task func()) error {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return ErrShutdown
	}
	p.running++
	p.mu.Unlock()

	p.sem <- struct{}{}
	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.mu.Lock()
			p.running--
			p.mu.Unlock()
			p.wg.Done()
			if r := recover(); r != nil {
				p.logger.Error("worker task panicked", zap.Any("panic", r))
			}
		}()
		task()
	}()
	return nil
}

// HasRunningWork reports whether at least one submitted task has not yet
// completed.
func (p *Pool) HasRunningWork() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running > 0
}

// Shutdown waits for all in-flight tasks to finish and rejects further
// DoWork calls.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.shutdown = true
	p.mu.Unlock()
	p.wg.Wait()
}
