package wordlist

import (
	"errors"
	"math/rand"
	"strings"

	"spellbee/internal/models"
)

// ErrExhausted means every word of the list has been attempted
var ErrExhausted = errors.New("all words attempted")

// CheckSpelling reports whether answer matches any accepted spelling,
// ignoring case and surrounding whitespace
func CheckSpelling(entry models.WordEntry, answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return false
	}
	for _, s := range entry.Spellings {
		if strings.ToLower(s) == answer {
			return true
		}
	}
	return false
}

// Find returns the entry whose primary spelling matches word, ignoring case
func Find(entries []models.WordEntry, word string) (models.WordEntry, bool) {
	for _, e := range entries {
		if strings.EqualFold(e.Primary, word) {
			return e, true
		}
	}
	return models.WordEntry{}, false
}

// Pick returns a random entry whose primary spelling is not in attempted
func Pick(entries []models.WordEntry, attempted []string) (models.WordEntry, error) {
	done := make(map[string]struct{}, len(attempted))
	for _, w := range attempted {
		done[strings.ToLower(w)] = struct{}{}
	}

	remaining := make([]models.WordEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := done[strings.ToLower(e.Primary)]; !ok {
			remaining = append(remaining, e)
		}
	}
	if len(remaining) == 0 {
		return models.WordEntry{}, ErrExhausted
	}
	return remaining[rand.Intn(len(remaining))], nil
}
