package repl

import (
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"fortio.org/log"
	"fortio.org/terminal"
	"grol.io/fzt/engine"
)

// Session keeps an engine in step with an input line that can be edited anywhere:
// the longest common prefix with what was already searched is kept, the rest undone
// and the new characters searched.
type Session struct {
	engine.Engine
	fed []rune
}

func NewSession(e engine.Engine) *Session {
	return &Session{Engine: e}
}

// Sync makes the engine state correspond to having typed input.
func (s *Session) Sync(input string) {
	want := []rune(input)
	common := 0
	for common < len(s.fed) && common < len(want) && s.fed[common] == want[common] {
		common++
	}
	undone := len(s.fed) - common
	for len(s.fed) > common {
		s.Undo()
		s.fed = s.fed[:len(s.fed)-1]
	}
	for _, r := range want[common:] {
		s.Search(r)
		s.fed = append(s.fed, r)
	}
	log.Debugf("Sync(%q): kept %d, undid %d, searched %d", input, common, undone, len(want)-common)
}

// Typed is what the engine currently searched for.
func (s *Session) Typed() string {
	return string(s.fed)
}

type AutoComplete struct {
	Session *Session
	Options Options
}

func NewCompletion(e engine.Engine, options Options) *AutoComplete {
	return &AutoComplete{Session: NewSession(e), Options: options}
}

func (a *AutoComplete) AutoComplete() terminal.AutoCompleteCallback {
	return func(t *terminal.Terminal, line string, pos int, key rune) (newLine string, newPos int, ok bool) {
		return a.autoCompleteCallback(t.Out, line, pos, key)
	}
}

// autoCompleteCallback searches as keys are typed. Printable keys are inserted by us
// (so the terminal redraws the line after the options), tab just lists. The terminal only
// calls back for keys it doesn't handle itself, so line may already differ from what was
// last searched by edits we never saw: Sync works from the whole line to catch up.
func (a *AutoComplete) autoCompleteCallback(out io.Writer, line string, pos int, key rune) (newLine string, newPos int, ok bool) {
	if pos < 0 || pos > len(line) {
		pos = len(line)
	}
	switch {
	case key == '\t':
		newLine, newPos = line, pos
	case unicode.IsPrint(key):
		newLine = line[:pos] + string(key) + line[pos:]
		newPos = pos + utf8.RuneLen(key)
	default:
		return
	}
	a.Session.Sync(newLine)
	fmt.Fprintln(out)
	Show(out, a.Session.Options(), a.Options)
	return newLine, newPos, true
}
