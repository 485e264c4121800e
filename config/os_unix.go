//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

var badNameRunes = string(os.PathSeparator) + string(os.PathListSeparator)

// CleanFileName removes not allowed characters from file name.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if strings.ContainsRune(badNameRunes, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(out, ".")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
