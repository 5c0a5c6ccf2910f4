package trie

import (
	"math/rand/v2"
	"strings"
	"testing"
)

// checkRefCounts verifies every reachable non root node counts exactly the stored words going through it.
func checkRefCounts(t *testing.T, tr *Trie) {
	t.Helper()
	words := tr.Words()
	var walk func(id NodeID, prefix string)
	walk = func(id NodeID, prefix string) {
		for _, e := range tr.nodes[id].children {
			p := prefix + string(e.char)
			expected := 0
			for _, w := range words {
				if strings.HasPrefix(w, p) {
					expected++
				}
			}
			if got := tr.RefCount(e.id); got != expected || got == 0 {
				t.Errorf("node %q ref count %d, expected %d (words %q)", p, got, expected, words)
			}
			walk(e.id, p)
		}
	}
	walk(Root, "")
}

func TestRefCountInvariant(t *testing.T) {
	alphabet := []rune("ab ")
	rng := rand.New(rand.NewPCG(42, 7))
	tr := NewTrie()
	var pool []string
	for range 300 {
		n := 1 + rng.IntN(4)
		var sb strings.Builder
		for range n {
			sb.WriteRune(alphabet[rng.IntN(len(alphabet))])
		}
		w := sb.String()
		if rng.IntN(3) == 0 && len(pool) > 0 {
			w = pool[rng.IntN(len(pool))]
			if _, err := tr.Remove(w); err != nil {
				t.Fatalf("Remove(%q): %v", w, err)
			}
		} else {
			if err := tr.Insert(w); err != nil {
				t.Fatalf("Insert(%q): %v", w, err)
			}
			pool = append(pool, w)
		}
		checkRefCounts(t, tr)
		if t.Failed() {
			t.FailNow()
		}
	}
}
