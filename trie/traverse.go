package trie

import "strings"

// Step is one character of a rendered match path: either matched against the query or skipped.
type Step struct {
	Char    rune
	Matched bool
}

// Hit is a node reached by Traverse along with the path segment that led to it
// (skipped characters followed by exactly one matched character).
type Hit struct {
	Node    NodeID
	Segment []Step
}

type frame struct {
	id   NodeID
	next int // index of the next child to visit
}

// Traverse finds every node reachable from `from` by skipping zero or more characters and then
// consuming exactly one target. A matching child ends the descent on that branch; non matching
// children are descended into and recorded as skipped. Hits are returned in the same order a
// recursive depth first search over rune sorted children would produce them. Iterative so the
// depth of the vocabulary doesn't matter.
func (t *Trie) Traverse(from NodeID, target rune) []Hit {
	var hits []Hit
	var skipped []rune // skipped[i] is the char leading into stack[i+1]
	stack := []frame{{id: from}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := t.nodes[top.id].children
		if top.next >= len(kids) {
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				skipped = skipped[:len(stack)-1]
			}
			continue
		}
		e := kids[top.next]
		top.next++
		if e.char == target {
			seg := make([]Step, len(skipped)+1)
			for i, c := range skipped {
				seg[i] = Step{Char: c}
			}
			seg[len(skipped)] = Step{Char: e.char, Matched: true}
			hits = append(hits, Hit{Node: e.id, Segment: seg})
			continue
		}
		skipped = append(skipped, e.char)
		stack = append(stack, frame{id: e.id})
	}
	return hits
}

// Expand returns every suffix below `from` that ends a stored string. The terminal status of
// `from` itself is the caller's business.
func (t *Trie) Expand(from NodeID) []string {
	var res []string
	var buf []rune
	var walk func(id NodeID)
	walk = func(id NodeID) {
		for _, e := range t.nodes[id].children {
			buf = append(buf, e.char)
			if t.nodes[e.id].terminal {
				res = append(res, string(buf))
			}
			walk(e.id)
			buf = buf[:len(buf)-1]
		}
	}
	walk(from)
	return res
}

// Render writes the path with matched characters wrapped in open/close markers
// and skipped ones as is.
func Render(path []Step, open, closing string) string {
	var sb strings.Builder
	for _, s := range path {
		if s.Matched {
			sb.WriteString(open)
			sb.WriteRune(s.Char)
			sb.WriteString(closing)
		} else {
			sb.WriteRune(s.Char)
		}
	}
	return sb.String()
}

// Complete renders all the vocabulary entries reachable from node: the path alone
// when the node ends a word, then the path followed by each expansion.
func (t *Trie) Complete(id NodeID, path []Step, open, closing string) []string {
	prefix := Render(path, open, closing)
	suffixes := t.Expand(id)
	res := make([]string, 0, len(suffixes)+1)
	if t.nodes[id].terminal {
		res = append(res, prefix)
	}
	for _, s := range suffixes {
		res = append(res, prefix+s)
	}
	return res
}
