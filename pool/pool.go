// Package pool is a fixed size, long lived worker pool. Each Run call submits a batch of tasks
// and blocks until every one of them has completed, so a batch is a barrier for the caller while
// the goroutines themselves are reused across batches.
package pool

import (
	"errors"
	"fmt"
	"sync"

	"fortio.org/log"
)

var (
	ErrNoWorkers = errors.New("worker pool needs at least 1 worker")
	ErrClosed    = errors.New("worker pool is closed")
)

type Pool struct {
	tasks  chan func()
	mu     sync.RWMutex // guards closed vs. sends on tasks.
	closed bool
	wg     sync.WaitGroup
	size   int
}

// New starts size workers. They run until Close is called.
func New(size int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoWorkers, size)
	}
	p := &Pool{
		tasks: make(chan func(), size),
		size:  size,
	}
	p.wg.Add(size)
	for i := range size {
		go p.worker(i)
	}
	log.LogVf("Started worker pool of %d", size)
	return p, nil
}

func (p *Pool) worker(n int) {
	defer p.wg.Done()
	for task := range p.tasks {
		p.safeRun(n, task)
	}
	log.Debugf("worker %d exiting", n)
}

func (p *Pool) safeRun(n int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Critf("worker %d: task panic: %v", n, r)
		}
	}()
	task()
}

func (p *Pool) Size() int {
	return p.size
}

// Run submits all the tasks of batch and waits for all of them to finish.
// Returns ErrClosed (and runs nothing) if the pool has been closed.
func (p *Pool) Run(batch []func()) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrClosed
	}
	var done sync.WaitGroup
	done.Add(len(batch))
	for _, task := range batch {
		p.tasks <- func() {
			defer done.Done()
			task()
		}
	}
	p.mu.RUnlock()
	done.Wait()
	return nil
}

// Close stops the workers once queued tasks are drained. Safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
	log.LogVf("Worker pool of %d stopped", p.size)
}
