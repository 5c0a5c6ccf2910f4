// Trie implements a reference counted rune trie used as the vocabulary for fuzzy subsequence search.
// Nodes live in an arena and are addressed by index so that search sessions (possibly spread over
// many goroutines) only ever copy plain integers around.
package trie // import "grol.io/fzt/trie"

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"unicode/utf8"

	"fortio.org/log"
	"fortio.org/safecast"
	"fortio.org/sets"
)

// NodeID is the index of a node in the trie arena.
type NodeID uint32

// Root is the id of the root node, which has no character.
const Root NodeID = 0

// ErrReadOnly is returned by Insert and Remove while a search session borrows the trie.
var ErrReadOnly = errors.New("trie is read-only while a search session is open")

// ErrInvalidUTF8 is returned by Insert and Remove for strings that aren't valid UTF-8,
// which would otherwise collapse into U+FFFD and alias each other.
var ErrInvalidUTF8 = errors.New("not valid utf-8")

type edge struct {
	char rune
	id   NodeID
}

type node struct {
	children []edge // sorted by char
	refCount uint32 // number of stored strings going through this node
	terminal bool   // a stored string ends here (independent of having children)
}

type Trie struct {
	nodes    []node
	free     []NodeID // ids of pruned nodes, reused by insertions.
	size     int
	sessions atomic.Int32
}

func NewTrie() *Trie {
	return &Trie{nodes: make([]node, 1)}
}

// Session marks the trie as borrowed for searching until the returned release function is called.
// Release is idempotent.
func (t *Trie) Session() (release func()) {
	n := t.sessions.Add(1)
	log.Debugf("trie session opened, %d active", n)
	var done atomic.Bool
	return func() {
		if done.Swap(true) {
			return
		}
		n := t.sessions.Add(-1)
		log.Debugf("trie session released, %d active", n)
	}
}

// ReadOnly returns true while at least one session is open.
func (t *Trie) ReadOnly() bool {
	return t.sessions.Load() > 0
}

// Len returns the number of strings stored.
func (t *Trie) Len() int {
	return t.size
}

func (t *Trie) child(id NodeID, c rune) (int, bool) {
	kids := t.nodes[id].children
	i := sort.Search(len(kids), func(i int) bool { return kids[i].char >= c })
	return i, i < len(kids) && kids[i].char == c
}

func (t *Trie) alloc() (NodeID, error) {
	if l := len(t.free); l > 0 {
		id := t.free[l-1]
		t.free = t.free[:l-1]
		t.nodes[id] = node{}
		return id, nil
	}
	idx, err := safecast.Convert[uint32](len(t.nodes))
	if err != nil {
		return 0, fmt.Errorf("trie arena full at %d nodes: %w", len(t.nodes), err)
	}
	t.nodes = append(t.nodes, node{})
	return NodeID(idx), nil
}

// Insert adds line to the vocabulary. Inserting a string already present is a no-op.
// The empty string marks the root terminal, which is allowed but rarely useful.
func (t *Trie) Insert(line string) error {
	if t.ReadOnly() {
		return ErrReadOnly
	}
	if !utf8.ValidString(line) {
		return fmt.Errorf("insert %q: %w", line, ErrInvalidUTF8)
	}
	if t.Contains(line) {
		log.Debugf("Insert(%q): already present", line)
		return nil
	}
	cur := Root
	for _, c := range line {
		i, found := t.child(cur, c)
		var next NodeID
		if found {
			next = t.nodes[cur].children[i].id
		} else {
			id, err := t.alloc()
			if err != nil {
				// Partial path: the new nodes have a zero count, prune them again.
				t.pruneEmpty(line)
				return err
			}
			kids := t.nodes[cur].children
			kids = append(kids, edge{})
			copy(kids[i+1:], kids[i:])
			kids[i] = edge{char: c, id: id}
			t.nodes[cur].children = kids
			next = id
		}
		t.nodes[next].refCount++
		cur = next
	}
	t.nodes[cur].terminal = true
	t.size++
	return nil
}

// pruneEmpty removes nodes along line that ended up without any string going through them.
func (t *Trie) pruneEmpty(line string) {
	cur := Root
	for _, c := range line {
		i, found := t.child(cur, c)
		if !found {
			return
		}
		next := t.nodes[cur].children[i].id
		if t.nodes[next].refCount <= 1 {
			t.detach(cur, i)
			return
		}
		t.nodes[next].refCount--
		cur = next
	}
}

// detach removes the i-th child of parent and recycles its whole subtree.
func (t *Trie) detach(parent NodeID, i int) {
	kids := t.nodes[parent].children
	id := kids[i].id
	t.nodes[parent].children = append(kids[:i], kids[i+1:]...)
	stack := []NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range t.nodes[n].children {
			stack = append(stack, e.id)
		}
		t.nodes[n] = node{}
		t.free = append(t.free, n)
	}
}

// Remove deletes line from the vocabulary. Removing a string that isn't stored is a no-op
// and returns false; counts of retained strings are never touched in that case.
func (t *Trie) Remove(line string) (bool, error) {
	if t.ReadOnly() {
		return false, ErrReadOnly
	}
	if !utf8.ValidString(line) {
		return false, fmt.Errorf("remove %q: %w", line, ErrInvalidUTF8)
	}
	if !t.Contains(line) {
		log.LogVf("Remove(%q): not present", line)
		return false, nil
	}
	t.size--
	cur := Root
	for _, c := range line {
		i, _ := t.child(cur, c) // present, checked above.
		next := t.nodes[cur].children[i].id
		if t.nodes[next].refCount == 1 {
			// Only this string goes through next: the whole subtree is its own.
			t.detach(cur, i)
			return true, nil
		}
		t.nodes[next].refCount--
		cur = next
	}
	// Other strings extend this one, keep the node but it no longer ends a word.
	t.nodes[cur].terminal = false
	return true, nil
}

// Prefix returns the node reached by following line from the root.
// Invalid UTF-8 is never found.
func (t *Trie) Prefix(line string) (NodeID, bool) {
	if !utf8.ValidString(line) {
		return 0, false
	}
	cur := Root
	for _, c := range line {
		i, found := t.child(cur, c)
		if !found {
			return 0, false
		}
		cur = t.nodes[cur].children[i].id
	}
	return cur, true
}

func (t *Trie) Contains(line string) bool {
	id, ok := t.Prefix(line)
	return ok && t.nodes[id].terminal
}

func (t *Trie) IsTerminal(id NodeID) bool {
	return t.nodes[id].terminal
}

// RefCount returns the number of stored strings whose path goes through id (0 for the root).
func (t *Trie) RefCount(id NodeID) int {
	return int(t.nodes[id].refCount)
}

// Words returns every stored string in depth first (rune sorted) order.
// Used for diagnostics, not on the search path.
func (t *Trie) Words() []string {
	res := make([]string, 0, t.size)
	if t.nodes[Root].terminal {
		res = append(res, "")
	}
	var path []rune
	var walk func(id NodeID)
	walk = func(id NodeID) {
		for _, e := range t.nodes[id].children {
			path = append(path, e.char)
			if t.nodes[e.id].terminal {
				res = append(res, string(path))
			}
			walk(e.id)
			path = path[:len(path)-1]
		}
	}
	walk(Root)
	return res
}

// List returns the vocabulary as a set.
func (t *Trie) List() sets.Set[string] {
	return sets.New(t.Words()...)
}
