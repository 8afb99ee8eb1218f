package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Word pools for generated usernames
var adjectives = []string{
	"happy", "sunny", "brave", "bright", "swift", "clever", "jolly", "mighty",
	"lucky", "magic", "bouncy", "cheerful", "daring", "eager", "gentle", "jazzy",
	"lively", "merry", "noble", "perky", "quick", "snappy", "zippy", "bold",
	"cosmic", "epic", "groovy", "busy", "buzzy", "golden",
}

var nouns = []string{
	"bee", "hornet", "honeycomb", "dragon", "tiger", "eagle", "dolphin", "panda",
	"fox", "hawk", "owl", "rocket", "wizard", "robot", "explorer", "ranger",
	"comet", "thunder", "storm", "speller", "scribe", "poet", "reader", "writer",
}

// GenerateUsername returns a random name in the form "adjective-noun"
func GenerateUsername() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}
	return adjective + "-" + noun, nil
}

// GenerateAvailableUsername draws names until one is not taken.
// After maxTries collisions a numeric suffix is appended.
func GenerateAvailableUsername(taken func(string) bool, maxTries int) (string, error) {
	var name string
	for i := 0; i < maxTries; i++ {
		candidate, err := GenerateUsername()
		if err != nil {
			return "", err
		}
		if !taken(candidate) {
			return candidate, nil
		}
		name = candidate
	}
	if name == "" {
		var err error
		if name, err = GenerateUsername(); err != nil {
			return "", err
		}
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", name, n)
		if !taken(candidate) {
			return candidate, nil
		}
	}
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
