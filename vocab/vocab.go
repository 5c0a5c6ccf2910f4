// Package vocab loads vocabulary entries into a trie from line oriented text or YAML files.
package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	"fortio.org/progressbar"
	"gopkg.in/yaml.v3"
	"grol.io/fzt/trie"
)

// MaxLineLength is the longest entry accepted from text input.
const MaxLineLength = 1024 * 1024

// Demo is the vocabulary used when none is provided.
var Demo = []string{"line 1", "line 2", "not a line"}

// Inserter is where entries end up, typically a *trie.Trie.
type Inserter interface {
	Insert(line string) error
}

var _ Inserter = (*trie.Trie)(nil)

// insert hands one entry to t. Entries that aren't valid UTF-8 are logged and skipped.
func insert(t Inserter, entry string) (bool, error) {
	err := t.Insert(entry)
	if errors.Is(err, trie.ErrInvalidUTF8) {
		log.Warnf("Skipping entry: %v", err)
		return false, nil
	}
	return err == nil, err
}

// Load inserts one entry per line of r. Trailing \r are stripped, empty lines and invalid
// UTF-8 skipped. Returns the number of entries read, duplicates included (the trie keeps
// only one of each).
func Load(t Inserter, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	n := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		ok, err := insert(t, line)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if ok {
			n++
		}
	}
	return n, scanner.Err()
}

// LoadYAML inserts the entries of a YAML document that is a sequence of strings.
// Returns the number of entries read, like [Load].
func LoadYAML(t Inserter, r io.Reader) (int, error) {
	var entries []string
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("yaml vocabulary should be a list of strings: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e == "" {
			continue
		}
		ok, err := insert(t, e)
		if err != nil {
			return n, fmt.Errorf("inserting %q: %w", e, err)
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// IsYAML returns true for .yaml and .yml file names.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadFile loads path ("-" for stdin) as YAML or text depending on its extension.
// With progress, a progress bar is shown on stderr while reading regular files.
func LoadFile(t Inserter, path string, progress bool) (int, error) {
	var r io.Reader
	if path == "-" {
		log.Infof("Reading vocabulary from stdin")
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		r = f
		if progress {
			if st, err := f.Stat(); err == nil && st.Mode().IsRegular() {
				bar := progressbar.NewBar()
				defer bar.End()
				r = progressbar.NewAutoReader(bar, f, st.Size())
			}
		}
	}
	var n int
	var err error
	if IsYAML(path) {
		n, err = LoadYAML(t, r)
	} else {
		n, err = Load(t, r)
	}
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("Read %d entries (duplicates included) from %s", n, path)
	return n, nil
}

// Remove removes every entry listed in path (same formats as LoadFile) from t.
// Returns how many were actually present.
func Remove(t *trie.Trie, path string) (int, error) {
	rm := &remover{t: t}
	_, err := LoadFile(rm, path, false)
	if err != nil {
		return rm.removed, err
	}
	log.Infof("Removed %d of %d entries listed in %s", rm.removed, rm.seen, path)
	return rm.removed, nil
}

// remover turns the loaders into a removal pass.
type remover struct {
	t       *trie.Trie
	seen    int
	removed int
}

func (r *remover) Insert(line string) error {
	r.seen++
	ok, err := r.t.Remove(line)
	if ok {
		r.removed++
	}
	return err
}
