package repl

import "io"

func CallbackForTest(a *AutoComplete, out io.Writer, line string, pos int, key rune) (string, int, bool) {
	return a.autoCompleteCallback(out, line, pos, key)
}
