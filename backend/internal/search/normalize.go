package search

import (
	"regexp"
	"sort"
	"strings"
)

// Words are runs of letters, digits and combining marks. Everything else
// separates words and is dropped.
var wordRegex = regexp.MustCompile(`[\p{L}\p{M}\p{N}]+`)

// Normalize turns display text into its canonical comparison form: lowercase
// words with one naive trailing "s" removed, sorted and joined by single
// spaces. It is idempotent and insensitive to word order. No locale rules
// are applied.
func Normalize(text string) string {
	return strings.Join(words(text), " ")
}

// words returns the sorted normalized words of text, duplicates included
func words(text string) []string {
	raw := wordRegex.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		w = depluralize(w)
		if w != "" {
			out = append(out, w)
		}
	}
	sort.Strings(out)
	return out
}

// depluralize strips one trailing "s". Words ending in "ss" are kept whole so
// a second pass cannot strip again.
func depluralize(w string) string {
	if strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return strings.TrimSuffix(w, "s")
	}
	return w
}

// distinctWords returns the unique normalized words of text
func distinctWords(text string) []string {
	all := words(text)
	out := all[:0]
	for i, w := range all {
		if i == 0 || w != all[i-1] {
			out = append(out, w)
		}
	}
	return out
}
