package trie_test

import (
	"slices"
	"testing"

	"grol.io/fzt/trie"
)

func demo() *trie.Trie {
	tr := trie.NewTrie()
	for _, l := range []string{"line 1", "line 2", "not a line"} {
		tr.Insert(l)
	}
	return tr
}

func TestTraverseSubsequence(t *testing.T) {
	tr := demo()
	hits := tr.Traverse(trie.Root, 'l')
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits for 'l', got %d: %+v", len(hits), hits)
	}
	got := []string{
		trie.Render(hits[0].Segment, "-", "-"),
		trie.Render(hits[1].Segment, "-", "-"),
	}
	expected := []string{"-l-", "not a -l-"}
	if !slices.Equal(got, expected) {
		t.Errorf("segments got %q want %q", got, expected)
	}
	// From the first 'l', 'n' is reached by skipping 'i'.
	next := tr.Traverse(hits[0].Node, 'n')
	if len(next) != 1 {
		t.Fatalf("expected 1 hit, got %+v", next)
	}
	expectedSeg := []trie.Step{{Char: 'i'}, {Char: 'n', Matched: true}}
	if !slices.Equal(next[0].Segment, expectedSeg) {
		t.Errorf("segment got %+v want %+v", next[0].Segment, expectedSeg)
	}
	if id, _ := tr.Prefix("lin"); next[0].Node != id {
		t.Errorf("expected to land on 'lin' node %d, got %d", id, next[0].Node)
	}
}

func TestTraverseStopsAtFirstMatch(t *testing.T) {
	tr := trie.NewTrie()
	tr.Insert("aab")
	hits := tr.Traverse(trie.Root, 'a')
	if len(hits) != 1 {
		t.Fatalf("expected only the first 'a' to match, got %+v", hits)
	}
	hits = tr.Traverse(hits[0].Node, 'a')
	if len(hits) != 1 || len(hits[0].Segment) != 1 {
		t.Errorf("expected the second 'a' directly, got %+v", hits)
	}
}

func TestTraverseNoMatch(t *testing.T) {
	tr := demo()
	if hits := tr.Traverse(trie.Root, 'z'); len(hits) != 0 {
		t.Errorf("expected no hits, got %+v", hits)
	}
	leaf, _ := tr.Prefix("line 1")
	if hits := tr.Traverse(leaf, 'l'); len(hits) != 0 {
		t.Errorf("expected no hits from a leaf, got %+v", hits)
	}
}

func TestTraverseDeep(t *testing.T) {
	tr := trie.NewTrie()
	deep := make([]rune, 100_000)
	for i := range deep {
		deep[i] = 'x'
	}
	deep[len(deep)-1] = 'y'
	tr.Insert(string(deep))
	hits := tr.Traverse(trie.Root, 'y')
	if len(hits) != 1 || len(hits[0].Segment) != len(deep) {
		t.Fatalf("expected one deep hit, got %d", len(hits))
	}
}

func TestExpand(t *testing.T) {
	tr := trie.NewTrie()
	for _, w := range []string{"a", "ab", "abc", "abd", "b"} {
		tr.Insert(w)
	}
	id, _ := tr.Prefix("a")
	expected := []string{"b", "bc", "bd"}
	if got := tr.Expand(id); !slices.Equal(got, expected) {
		t.Errorf("Expand(a) got %q want %q", got, expected)
	}
	leaf, _ := tr.Prefix("abc")
	if got := tr.Expand(leaf); len(got) != 0 {
		t.Errorf("Expand(leaf) got %q", got)
	}
}

func TestCompleteTerminalAndInternal(t *testing.T) {
	tr := trie.NewTrie()
	tr.Insert("a")
	tr.Insert("ab")
	hits := tr.Traverse(trie.Root, 'a')
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %+v", hits)
	}
	got := tr.Complete(hits[0].Node, hits[0].Segment, "-", "-")
	expected := []string{"-a-", "-a-b"}
	if !slices.Equal(got, expected) {
		t.Errorf("Complete got %q want %q", got, expected)
	}
}

func TestRender(t *testing.T) {
	path := []trie.Step{{Char: 'n'}, {Char: 'o', Matched: true}, {Char: 't'}}
	if got := trie.Render(path, "-", "-"); got != "n-o-t" {
		t.Errorf("Render got %q", got)
	}
	if got := trie.Render(path, "[", "]"); got != "n[o]t" {
		t.Errorf("Render brackets got %q", got)
	}
	if got := trie.Render(nil, "-", "-"); got != "" {
		t.Errorf("Render(nil) got %q", got)
	}
}
