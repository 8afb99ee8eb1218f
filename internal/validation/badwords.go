package validation

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// WordFilter rejects names containing listed words
type WordFilter struct {
	words map[string]struct{}
}

// ParseWordFilter reads one word per line; blank lines are skipped
func ParseWordFilter(r io.Reader) (*WordFilter, error) {
	f := &WordFilter{words: make(map[string]struct{})}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if word == "" {
			continue
		}
		f.words[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return f, nil
}

// Len returns the number of listed words
func (f *WordFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.words)
}

// Contains reports whether any word of name, or name as a whole, is listed.
// A nil filter contains nothing.
func (f *WordFilter) Contains(name string) bool {
	if f == nil || len(f.words) == 0 {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(name))
	if _, ok := f.words[lower]; ok {
		return true
	}
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		if _, ok := f.words[tok]; ok {
			return true
		}
	}
	return false
}
