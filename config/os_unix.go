//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// SafeFileName removes characters which are not allowed in a single path
// element (expanded asset names could contain anything). Leading dots and
// surrounding spaces are dropped, fallback is used when nothing is left.
func SafeFileName(in, fallback string) string {
	out := strings.TrimLeft(strings.TrimSpace(strings.Map(func(sym rune) rune {
		if sym == 0 || strings.ContainsRune(string(os.PathSeparator)+string(os.PathListSeparator), sym) {
			return -1
		}
		return sym
	}, in)), ".")
	if len(out) == 0 {
		return fallback
	}
	return out
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
