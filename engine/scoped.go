package engine

import (
	"fmt"

	"fortio.org/log"
	"golang.org/x/sync/errgroup"
	"grol.io/fzt/trie"
)

// Scoped spawns one goroutine per frontier node for every call and joins them all before
// returning. Nothing outlives a call.
type Scoped struct {
	*session
}

type spawner struct{}

func (spawner) run(tasks []func()) {
	var g errgroup.Group
	for _, task := range tasks {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("task panic: %v", r)
				}
			}()
			task()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Critf("scoped engine: %v", err)
	}
}

func NewScoped(t *trie.Trie, cfg Config) *Scoped {
	return &Scoped{newSession(t, cfg, ModeScoped, spawner{})}
}
