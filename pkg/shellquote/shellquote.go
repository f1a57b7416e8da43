// Package shellquote escapes strings for POSIX shell command lines.
//
// The output bytes are a compatibility contract: synthesized deploy
// commands are recorded by orchestration hosts and compared across
// runs, so quoting must stay byte-for-byte stable. Strings made of
// safe characters pass through untouched; everything else is wrapped
// in single quotes, with embedded single quotes emitted as '"'"'.
package shellquote

import (
	"regexp"
	"strings"
)

// safePattern matches strings that need no quoting at all. The
// character class deliberately includes ':' '.' '/' so image
// references, chart paths and version strings stay readable.
var safePattern = regexp.MustCompile(`^[A-Za-z0-9@%_+=:,./-]+$`)

// Quote returns s escaped so a POSIX shell parses it as a single word.
// The empty string becomes ''.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if safePattern.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// QuoteAll quotes every element of args, returning a new slice.
func QuoteAll(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return quoted
}

// Join quotes every element of args and joins them with single spaces,
// producing a command line a shell splits back into the same words.
func Join(args []string) string {
	return strings.Join(QuoteAll(args), " ")
}
