package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fortio.org/log"
	"fortio.org/terminal"
	"fortio.org/version"
	"github.com/rivo/uniseg"
	"grol.io/fzt/engine"
)

const PROMPT = "fzt> "

type Options struct {
	Max   int  // max options shown, <= 0 for all.
	Width int  // truncate options to that many display columns, <= 0 for no limit.
	Every bool // in scripts, show options after every key instead of only at the end.
	// Interactive mode only.
	HistoryFile string // load/save past queries from/to that file, empty for none.
	MaxHistory  int    // 0 disables history.
}

// Truncate shortens s to at most width display columns (grapheme aware), ending with "…" when cut.
// ANSI color sequences are kept and don't count toward the width.
func Truncate(s string, width int) string {
	if width <= 0 || uniseg.StringWidth(stripANSI(s)) <= width {
		return s
	}
	var sb strings.Builder
	w := 0
	state := -1
	colored := false
	rest := s
	for len(rest) > 0 {
		if strings.HasPrefix(rest, "\x1b[") {
			end := strings.IndexByte(rest, 'm')
			if end < 0 {
				break
			}
			sb.WriteString(rest[:end+1])
			rest = rest[end+1:]
			colored = true
			state = -1 // the sequence breaks the grapheme run.
			continue
		}
		var cluster string
		var cw int
		cluster, rest, cw, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if w+cw > width-1 {
			break
		}
		sb.WriteString(cluster)
		w += cw
	}
	if colored {
		sb.WriteString(log.ANSIColors.Reset)
	}
	sb.WriteString("…")
	return sb.String()
}

func stripANSI(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	var sb strings.Builder
	for {
		i := strings.Index(s, "\x1b[")
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i])
		end := strings.IndexByte(s[i:], 'm')
		if end < 0 {
			return sb.String()
		}
		s = s[i+end+1:]
	}
}

// Show prints the options, one per line, honoring Max and Width.
func Show(out io.Writer, opts []string, options Options) {
	shown := opts
	if options.Max > 0 && len(opts) > options.Max {
		shown = opts[:options.Max]
	}
	for _, o := range shown {
		fmt.Fprintln(out, Truncate(o, options.Width))
	}
	if len(shown) < len(opts) {
		fmt.Fprintf(out, "... %d more\n", len(opts)-len(shown))
	}
}

func header(out io.Writer, e engine.Engine, typed []rune) {
	fmt.Fprintf(out, "== %q depth=%d matches=%d\n", string(typed), e.Depth(), e.Matches())
}

// Script types keys one character at a time through Query, so the undo rune of the
// engine is honored, then shows the options (or after every key with Options.Every).
func Script(e engine.Engine, keys string, out io.Writer, options Options) {
	var typed []rune
	if options.Every {
		header(out, e, typed)
		Show(out, e.Options(), options)
	}
	for _, r := range keys {
		typed = append(typed, r)
		e.Query(r)
		if options.Every {
			header(out, e, typed)
			Show(out, e.Options(), options)
		}
	}
	if !options.Every {
		Show(out, e.Options(), options)
	}
}

// ScriptLines runs each line of in as an independent Script, starting from the root each time.
func ScriptLines(e engine.Engine, in io.Reader, out io.Writer, options Options) error {
	scanner := bufio.NewScanner(in)
	n := 0
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		n++
		e.Reset()
		if !options.Every {
			fmt.Fprintf(out, "# %s\n", line)
		}
		Script(e, line, out, options)
	}
	log.LogVf("Ran %d key scripts", n)
	return scanner.Err()
}

// Interactive runs a search on the terminal: options are shown as printable keys are typed and
// for the whole line on enter. Editing keys (backspace, delete, ctrl-U, history up/down) are
// handled by the terminal without calling back, so the options shown after them are refreshed
// on the next printable key or on enter, both of which resync the engine with the whole line
// through a [Session]. Entered queries are kept in the terminal history.
func Interactive(e engine.Engine, options Options) int {
	term, err := terminal.Open(context.Background())
	if err != nil {
		return log.FErrf("Error opening terminal: %v", err)
	}
	defer term.Close()
	term.NewHistory(options.MaxHistory)
	if err = term.SetHistoryFile(options.HistoryFile); err != nil {
		log.Warnf("Couldn't use history file %s: %v", options.HistoryFile, err)
	}
	_, v, _ := version.FromBuildInfoPath("grol.io/fzt")
	fmt.Fprintf(term.Out, "fzt %s - type to search, enter to list, ctrl-D to exit\n", v)
	ac := NewCompletion(e, options)
	term.SetAutoCompleteCallback(ac.AutoComplete())
	term.SetPrompt(PROMPT)
	for {
		line, err := term.ReadLine()
		if errors.Is(err, io.EOF) {
			log.Infof("Bye!")
			return 0
		}
		if err != nil {
			return log.FErrf("Error reading line: %v", err)
		}
		ac.Session.Sync(line)
		header(term.Out, e, []rune(line))
		Show(term.Out, ac.Session.Options(), options)
		ac.Session.Sync("")
	}
}
