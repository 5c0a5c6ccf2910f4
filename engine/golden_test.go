package engine_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"grol.io/fzt/engine"
)

func transcript(e engine.Engine, keys string) []byte {
	var buf bytes.Buffer
	show := func(typed []rune) {
		fmt.Fprintf(&buf, "== %q depth=%d matches=%d\n", string(typed), e.Depth(), e.Matches())
		for _, o := range e.Options() {
			buf.WriteString(o)
			buf.WriteByte('\n')
		}
	}
	var typed []rune
	show(typed)
	for _, r := range keys {
		typed = append(typed, r)
		e.Query(r)
		show(typed)
	}
	return buf.Bytes()
}

func TestGoldenTranscripts(t *testing.T) {
	tests := []struct {
		name string
		keys string
	}{
		{"demo_ln_undo_e", "ln*e"},
		{"demo_t_space_e", "t ez"},
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		for _, m := range engine.Modes {
			t.Run(tt.name+"/"+string(m), func(t *testing.T) {
				tr := newTrie(t, "line 1", "line 2", "not a line")
				cfg := engine.DefaultConfig()
				cfg.Mode = m
				cfg.Workers = 3
				e, err := engine.New(tr, cfg)
				if err != nil {
					t.Fatalf("New: %v", err)
				}
				defer e.Close()
				g.Assert(t, tt.name, transcript(e, tt.keys))
			})
		}
	}
}
