// Package workerpool provides a fixed-size goroutine pool draining a FIFO
// task queue: a single buffered channel of operations, each carrying its
// own result/error channels so Submit can block for a result while
// Enqueue returns a Future to wait on later.
package workerpool

import (
	"sync"

	"github.com/axontrace/spikenet/pkg/errs"
)

// task packages an arbitrary callable with channels for its outcome.
type task struct {
	fn     func() (any, error)
	result chan any
	err    chan error
}

// Future is the handle Enqueue returns: call Wait to block for the task's
// outcome.
type Future struct {
	result chan any
	err    chan error
}

// Wait blocks until the task completes and returns its result and error.
func (f *Future) Wait() (any, error) {
	return <-f.result, <-f.err
}

// Pool is a fixed count of worker goroutines draining one shared FIFO
// queue. Tasks must not depend on one another's completion order.
type Pool struct {
	tasks chan *task

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New starts a pool of n worker goroutines reading from a queue buffered to
// queueCapacity.
func New(n, queueCapacity int) *Pool {
	if n < 1 {
		n = 1
	}
	if queueCapacity < 1 {
		queueCapacity = 1
	}
	p := &Pool{
		tasks:  make(chan *task, queueCapacity),
		stopCh: make(chan struct{}),
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			p.drain()
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			p.exec(t)
		}
	}
}

func (p *Pool) exec(t *task) {
	result, err := t.fn()
	t.result <- result
	t.err <- err
}

// drain runs any tasks still buffered in the queue after a stop signal
// rather than abandoning them mid-flight.
func (p *Pool) drain() {
	for {
		select {
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			p.exec(t)
		default:
			return
		}
	}
}

// Enqueue submits fn and returns a Future for its eventual result.
func (p *Pool) Enqueue(fn func() (any, error)) *Future {
	t := &task{
		fn:     fn,
		result: make(chan any, 1),
		err:    make(chan error, 1),
	}

	select {
	case <-p.stopCh:
		t.result <- nil
		t.err <- errs.ErrPoolStopped
		return &Future{result: t.result, err: t.err}
	default:
	}

	select {
	case p.tasks <- t:
	case <-p.stopCh:
		t.result <- nil
		t.err <- errs.ErrPoolStopped
	}
	return &Future{result: t.result, err: t.err}
}

// Submit enqueues fn and blocks for its result.
func (p *Pool) Submit(fn func() (any, error)) (any, error) {
	return p.Enqueue(fn).Wait()
}

// Stop signals all workers to stop accepting new tasks, drain whatever is
// already buffered, and joins them. Safe to call more than once.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	p.wg.Wait()
}

// QueueLength reports the number of tasks currently buffered, for
// observability surfaces.
func (p *Pool) QueueLength() int {
	return len(p.tasks)
}
