// Package engine implements incremental fuzzy subsequence search sessions over a trie.
//
// A session keeps a history of frontiers, one per character typed so far, the first one being
// just the root. Each character narrows the top frontier to the nodes reachable by treating the
// typed characters as an ordered (not necessarily contiguous) subsequence of some stored string,
// and Options renders every completion consistent with the frontier.
//
// Three variants share that logic and only differ in how the per frontier node work is run:
// [Sequential] on the calling goroutine, [Scoped] with goroutines spawned and joined for every
// call, [Pooled] on a worker pool created once with the engine.
package engine

import (
	"fmt"
	"runtime"
	"time"

	"fortio.org/log"
	"grol.io/fzt/trie"
)

// UndoRune is the default character that Query treats as "undo the last character".
const UndoRune = '*'

type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeScoped     Mode = "scoped"
	ModePooled     Mode = "pooled"
)

// Modes lists the valid modes, in the order they are documented.
var Modes = []Mode{ModeSequential, ModeScoped, ModePooled}

// Engine is a search session. Query, Search, Undo and Reset mutate the history and must not be
// called concurrently with each other or with Options.
type Engine interface {
	// Query narrows the frontier by r, or undoes the last character if r is the undo rune.
	Query(r rune)
	// Search always narrows by r, even if r is the undo rune.
	Search(r rune)
	// Undo goes back one character, no-op at the start.
	Undo()
	// Reset goes back to the initial, root only, frontier.
	Reset()
	// Options returns every completion reachable from the current frontier.
	Options() []string
	// Depth is the number of characters currently applied.
	Depth() int
	// Matches is the size of the current frontier.
	Matches() int
	// Close releases the trie (and workers for the pooled variant).
	Close() error
}

type Config struct {
	Mode     Mode
	Workers  int  // Pooled only.
	UndoRune rune // 0 disables undo through Query.
	// Markers around matched characters in Options.
	MatchOpen  string
	MatchClose string
	// Log a warning when a Query or Options call takes longer than this, 0 to disable.
	Slow time.Duration
}

func DefaultConfig() Config {
	return Config{
		Mode:       ModeSequential,
		Workers:    runtime.NumCPU(),
		UndoRune:   UndoRune,
		MatchOpen:  "-",
		MatchClose: "-",
	}
}

// New creates the engine variant selected by cfg.Mode.
func New(t *trie.Trie, cfg Config) (Engine, error) {
	switch cfg.Mode {
	case ModeSequential, "":
		return NewSequential(t, cfg), nil
	case ModeScoped:
		return NewScoped(t, cfg), nil
	case ModePooled:
		p, err := NewPooled(t, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown engine mode %q, should be one of %v", cfg.Mode, Modes)
	}
}

// HistoryNode is one position of a frontier: a trie node and the annotated path to it.
type HistoryNode struct {
	Node trie.NodeID
	Path []trie.Step
}

// Frontier is the set of positions reached after a given number of characters.
type Frontier []HistoryNode

// runner executes a batch of independent tasks and returns once they all completed.
type runner interface {
	run(tasks []func())
}

// gather runs one task per index through r. Each task hands its result back exactly once on its
// own channel; results are concatenated in index order.
func gather[T any](r runner, n int, task func(i int) []T) []T {
	results := make([]chan []T, n)
	tasks := make([]func(), n)
	for i := range n {
		ch := make(chan []T, 1)
		results[i] = ch
		tasks[i] = func() {
			var res []T
			defer func() { ch <- res }() // still delivered if task panics.
			res = task(i)
		}
	}
	r.run(tasks)
	var out []T
	for _, ch := range results {
		out = append(out, <-ch...)
	}
	return out
}

// session is the state and logic common to all variants.
type session struct {
	trie    *trie.Trie
	cfg     Config
	history []Frontier
	release func()
	runner  runner
	name    Mode
}

func newSession(t *trie.Trie, cfg Config, name Mode, r runner) *session {
	return &session{
		trie:    t,
		cfg:     cfg,
		history: []Frontier{{{Node: trie.Root}}},
		release: t.Session(),
		runner:  r,
		name:    name,
	}
}

func (s *session) top() Frontier {
	return s.history[len(s.history)-1]
}

func (s *session) Query(r rune) {
	if s.cfg.UndoRune != 0 && r == s.cfg.UndoRune {
		s.Undo()
		return
	}
	s.Search(r)
}

func (s *session) Search(r rune) {
	start := time.Now()
	cur := s.top()
	next := gather(s.runner, len(cur), func(i int) []HistoryNode {
		hn := cur[i]
		hits := s.trie.Traverse(hn.Node, r)
		res := make([]HistoryNode, len(hits))
		for j, h := range hits {
			// Fresh slice: frontiers are immutable once pushed.
			path := make([]trie.Step, 0, len(hn.Path)+len(h.Segment))
			path = append(path, hn.Path...)
			path = append(path, h.Segment...)
			res[j] = HistoryNode{Node: h.Node, Path: path}
		}
		return res
	})
	s.history = append(s.history, next)
	s.timing("query", start, len(next))
}

func (s *session) Undo() {
	if len(s.history) > 1 {
		s.history = s.history[:len(s.history)-1]
	}
}

func (s *session) Reset() {
	s.history = s.history[:1]
}

func (s *session) Options() []string {
	start := time.Now()
	cur := s.top()
	res := gather(s.runner, len(cur), func(i int) []string {
		return s.trie.Complete(cur[i].Node, cur[i].Path, s.cfg.MatchOpen, s.cfg.MatchClose)
	})
	s.timing("options", start, len(res))
	return res
}

func (s *session) Depth() int {
	return len(s.history) - 1
}

func (s *session) Matches() int {
	return len(s.top())
}

func (s *session) timing(what string, start time.Time, n int) {
	elapsed := time.Since(start)
	log.LogVf("%s %s: %d results in %v (depth %d)", s.name, what, n, elapsed, s.Depth())
	if s.cfg.Slow > 0 && elapsed > s.cfg.Slow {
		log.Warnf("%s %s took %v (> %v) for %d results", s.name, what, elapsed, s.cfg.Slow, n)
	}
}

func (s *session) Close() error {
	s.release()
	return nil
}
