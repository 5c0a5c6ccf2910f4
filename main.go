// Fzt is an incremental fuzzy subsequence search over a vocabulary of lines.
// Each typed character narrows the matches to the entries containing the typed
// characters in order (not necessarily contiguous).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"fortio.org/cli"
	"fortio.org/duration"
	"fortio.org/log"
	"fortio.org/struct2env"
	"fortio.org/terminal"
	"grol.io/fzt/engine"
	"grol.io/fzt/repl"
	"grol.io/fzt/trie"
	"grol.io/fzt/vocab"
)

func main() {
	os.Exit(Main())
}

type Config struct {
	Mode        string
	Workers     int
	Undo        string
	HistoryFile string
}

var config = Config{
	Mode:    string(engine.ModeSequential),
	Workers: runtime.NumCPU(),
	Undo:    string(engine.UndoRune),
}

func EnvHelp(w io.Writer) {
	res, _ := struct2env.StructToEnvVars(config)
	str := struct2env.ToShellWithPrefix("FZT_", res, true)
	fmt.Fprintln(w, "# Fzt environment variables:")
	fmt.Fprint(w, str)
}

var hookBefore, hookAfter func() int

// historyDefault is replaced by the file in the user's home directory when not changed.
const historyDefault = "~/.fzt_history"

// historyPath resolves the -history flag value, empty when the home directory is unknown.
func historyPath(flagValue string) string {
	if flagValue != historyDefault {
		return flagValue
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Couldn't get user home dir: %v", err)
		return ""
	}
	return filepath.Join(homeDir, ".fzt_history")
}

// undoRune parses the undo flag: empty disables, otherwise exactly one character.
func undoRune(s string) (rune, error) {
	r := []rune(s)
	switch len(r) {
	case 0:
		return 0, nil
	case 1:
		return r[0], nil
	default:
		return 0, fmt.Errorf("undo should be a single character, got %q", s)
	}
}

func Main() int {
	cli.EnvHelpFuncs = append(cli.EnvHelpFuncs, EnvHelp)
	errs := struct2env.SetFromEnv("FZT_", &config)
	if len(errs) > 0 {
		log.Errf("Error setting config from env: %v", errs)
	}
	defaultHistoryFile := historyDefault
	if config.HistoryFile != "" {
		defaultHistoryFile = config.HistoryFile
	}
	historyFile := flag.String("history", defaultHistoryFile, "interactive query history `file` to use")
	maxHistory := flag.Int("max-history", terminal.DefaultHistoryCapacity, "max history `size`, use 0 to disable.")
	modeFlag := flag.String("mode", config.Mode, "search engine `mode`: sequential, scoped or pooled")
	workers := flag.Int("workers", config.Workers, "number of workers for the pooled mode")
	undoFlag := flag.String("undo", config.Undo,
		"undo `character` in key scripts (-c and -keys), empty to disable")
	commandFlag := flag.String("c", "", "`keys` to type instead of interactive mode, then print the options")
	keysFile := flag.String("keys", "", "`file` of key scripts to run, one query per line, - for stdin")
	every := flag.Bool("every", false, "print the options after every key of scripts")
	listFlag := flag.Bool("list", false, "print the vocabulary and exit")
	exclude := flag.String("exclude", "", "`file` of entries to remove from the vocabulary once loaded")
	maxOptions := flag.Int("max", 0, "maximum number of options shown, 0 for all")
	width := flag.Int("width", 0, "truncate shown options to that many columns, 0 for no limit")
	color := flag.Bool("color", false, "highlight matched characters with colors instead of -x- markers")
	progress := flag.Bool("progress", false, "show a progress bar while reading vocabulary files")
	slow := duration.Flag("slow", 0, "warn about searches taking longer than this `duration`, 0 to disable")

	cli.ArgsHelp = "vocabulary files (one entry per line, or .yaml/.yml list) or - for stdin;" +
		" the built-in demo set is used when none are given"
	cli.MaxArgs = -1
	cli.Main()
	if hookBefore != nil {
		ret := hookBefore()
		if ret != 0 {
			return ret
		}
	}
	undo, err := undoRune(*undoFlag)
	if err != nil {
		return log.FErrf("Invalid -undo: %v", err)
	}
	for _, file := range flag.Args() {
		if file == "-" && *keysFile == "-" {
			return log.FErrf("stdin can't be both the vocabulary and the keys")
		}
	}
	t := trie.NewTrie()
	if flag.NArg() == 0 {
		log.Infof("No vocabulary given, using the %d built-in demo entries", len(vocab.Demo))
		for _, l := range vocab.Demo {
			if err = t.Insert(l); err != nil {
				return log.FErrf("Error inserting %q: %v", l, err)
			}
		}
	}
	for _, file := range flag.Args() {
		if _, err = vocab.LoadFile(t, file, *progress); err != nil {
			return log.FErrf("Error loading vocabulary: %v", err)
		}
	}
	if *exclude != "" {
		if _, err = vocab.Remove(t, *exclude); err != nil {
			return log.FErrf("Error removing entries: %v", err)
		}
	}
	log.Infof("fzt %s - %d entries in the vocabulary", cli.LongVersion, t.Len())
	if *listFlag {
		for _, w := range t.Words() {
			fmt.Println(w)
		}
		return runHookAfter()
	}
	interactive := *commandFlag == "" && *keysFile == ""
	cfg := engine.DefaultConfig()
	cfg.Mode = engine.Mode(*modeFlag)
	cfg.Workers = *workers
	cfg.UndoRune = undo
	cfg.Slow = *slow
	if interactive {
		cfg.UndoRune = 0 // backspace is the undo, every character can be searched.
	}
	if *color {
		cfg.MatchOpen, cfg.MatchClose = log.ANSIColors.Green, log.ANSIColors.Reset
	}
	e, err := engine.New(t, cfg)
	if err != nil {
		return log.FErrf("Error creating search engine: %v", err)
	}
	defer e.Close()
	log.LogVf("Using %s engine", cfg.Mode)
	options := repl.Options{
		Max:   *maxOptions,
		Width: *width,
		Every: *every,
	}
	if interactive {
		options.HistoryFile = historyPath(*historyFile)
		options.MaxHistory = *maxHistory
	}
	switch {
	case *commandFlag != "":
		repl.Script(e, *commandFlag, os.Stdout, options)
	case *keysFile != "":
		if ret := runKeysFile(e, *keysFile, options); ret != 0 {
			return ret
		}
	default:
		if ret := repl.Interactive(e, options); ret != 0 {
			return ret
		}
	}
	return runHookAfter()
}

func runHookAfter() int {
	if hookAfter != nil {
		return hookAfter()
	}
	return 0
}

func runKeysFile(e engine.Engine, file string, options repl.Options) int {
	in := os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return log.FErrf("%v", err)
		}
		defer f.Close()
		in = f
	}
	if err := repl.ScriptLines(e, in, os.Stdout, options); err != nil {
		return log.FErrf("Error reading keys from %s: %v", file, err)
	}
	return 0
}
