package engine

import (
	"errors"
	"sync"

	"fortio.org/log"
	"grol.io/fzt/pool"
	"grol.io/fzt/trie"
)

// Pooled submits the per frontier node work to a worker pool created with the engine
// and reused by every call. Must be closed to stop the workers.
type Pooled struct {
	*session
	pool *pool.Pool
}

type pooledRunner struct {
	pool     *pool.Pool
	warnOnce sync.Once
}

func (p *pooledRunner) run(tasks []func()) {
	err := p.pool.Run(tasks)
	if err == nil {
		return
	}
	if errors.Is(err, pool.ErrClosed) {
		p.warnOnce.Do(func() {
			log.Warnf("pooled engine used after Close, running on the caller goroutine")
		})
	} else {
		log.Errf("pooled engine: %v", err)
	}
	inline{}.run(tasks)
}

// NewPooled starts cfg.Workers workers. Fails with [pool.ErrNoWorkers] if that's less than 1.
func NewPooled(t *trie.Trie, cfg Config) (*Pooled, error) {
	p, err := pool.New(cfg.Workers)
	if err != nil {
		return nil, err
	}
	return &Pooled{
		session: newSession(t, cfg, ModePooled, &pooledRunner{pool: p}),
		pool:    p,
	}, nil
}

func (p *Pooled) Workers() int {
	return p.pool.Size()
}

func (p *Pooled) Close() error {
	p.pool.Close()
	return p.session.Close()
}
