package shellquote

import (
	"strings"
	"testing"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "''"},
		{"plain word", "redis", "redis"},
		{"image reference", "ghcr.io/acme/app:v1.2.3", "ghcr.io/acme/app:v1.2.3"},
		{"chart path", "./charts/my-app", "./charts/my-app"},
		{"values path", "image.repository=app", "image.repository=app"},
		{"percent and at", "100%@node", "100%@node"},
		{"space", "my release", "'my release'"},
		{"dollar not expanded", "$HOME", "'$HOME'"},
		{"glob", "*.yaml", "'*.yaml'"},
		{"semicolon", "a;b", "'a;b'"},
		{"double quote", `say "hi"`, `'say "hi"'`},
		{"single quote", "it's", `'it'"'"'s'`},
		{"only single quote", "'", `''"'"''`},
		{"two single quotes", "''", `''"'"''"'"''`},
		{"backslash", `a\b`, `'a\b'`},
		{"newline", "a\nb", "'a\nb'"},
		{"unicode", "héllo", "'héllo'"},
		{"parens", "(x)", "'(x)'"},
		{"backtick", "`id`", "'`id`'"},
		{"redirect", "1>&2", "'1>&2'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quote(tt.input); got != tt.want {
				t.Errorf("Quote(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// A quoted string, when parsed by a shell, must come back as exactly
// one word. naiveShellSplit mimics POSIX word splitting closely enough
// to verify that for the quoting forms Quote emits.
func TestQuoteProducesSingleWord(t *testing.T) {
	inputs := []string{
		"plain",
		"two words",
		"it's complicated",
		`mixed "quotes" and 'apostrophes'`,
		"trailing space ",
		" leading",
		"tab\tseparated",
	}

	for _, in := range inputs {
		words := naiveShellSplit(Quote(in))
		if len(words) != 1 {
			t.Errorf("Quote(%q) split into %d words: %v", in, len(words), words)
			continue
		}
		if words[0] != in {
			t.Errorf("Quote(%q) round-tripped to %q", in, words[0])
		}
	}
}

func TestQuoteAll(t *testing.T) {
	got := QuoteAll([]string{"--set", "a b", ""})
	want := []string{"--set", "'a b'", "''"}
	if len(got) != len(want) {
		t.Fatalf("QuoteAll returned %d elements, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("QuoteAll[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if QuoteAll(nil) != nil {
		t.Error("QuoteAll(nil) should return nil")
	}
}

func TestJoin(t *testing.T) {
	got := Join([]string{"helm", "upgrade", "--set", "name=hello world"})
	want := "helm upgrade --set 'name=hello world'"
	if got != want {
		t.Errorf("Join = %q, want %q", got, want)
	}
}

// naiveShellSplit splits a command line the way a POSIX shell tokenizes
// unquoted, single-quoted and double-quoted segments. It does not handle
// backslash escapes outside quotes, which Quote never emits.
func naiveShellSplit(s string) []string {
	var words []string
	var cur strings.Builder
	inWord := false
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\'':
			inWord = true
			j := strings.IndexByte(s[i+1:], '\'')
			if j < 0 {
				cur.WriteString(s[i+1:])
				i = len(s)
				continue
			}
			cur.WriteString(s[i+1 : i+1+j])
			i += j + 2
		case c == '"':
			inWord = true
			j := strings.IndexByte(s[i+1:], '"')
			if j < 0 {
				cur.WriteString(s[i+1:])
				i = len(s)
				continue
			}
			cur.WriteString(s[i+1 : i+1+j])
			i += j + 2
		case c == ' ' || c == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
			i++
		default:
			inWord = true
			cur.WriteByte(c)
			i++
		}
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words
}
