package engine

import "grol.io/fzt/trie"

// Sequential runs all the work on the calling goroutine.
type Sequential struct {
	*session
}

type inline struct{}

func (inline) run(tasks []func()) {
	for _, task := range tasks {
		task()
	}
}

func NewSequential(t *trie.Trie, cfg Config) *Sequential {
	return &Sequential{newSession(t, cfg, ModeSequential, inline{})}
}
