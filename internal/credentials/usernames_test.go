package credentials

import (
	"strings"
	"testing"
)

func TestGenerateUsername(t *testing.T) {
	for i := 0; i < 50; i++ {
		name, err := GenerateUsername()
		if err != nil {
			t.Fatalf("GenerateUsername() error = %v", err)
		}
		parts := strings.Split(name, "-")
		if len(parts) != 2 {
			t.Fatalf("GenerateUsername() = %q, want adjective-noun", name)
		}
		if !contains(adjectives, parts[0]) || !contains(nouns, parts[1]) {
			t.Errorf("GenerateUsername() = %q uses unknown words", name)
		}
	}
}

func TestGenerateAvailableUsername(t *testing.T) {
	tests := []struct {
		name     string
		taken    func(string) bool
		wantSufx bool
	}{
		{
			name:  "nothing taken",
			taken: func(string) bool { return false },
		},
		{
			name:     "every plain name taken",
			taken:    func(s string) bool { return strings.Count(s, "-") == 1 },
			wantSufx: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateAvailableUsername(tt.taken, 5)
			if err != nil {
				t.Fatalf("GenerateAvailableUsername() error = %v", err)
			}
			if tt.taken(got) {
				t.Errorf("GenerateAvailableUsername() = %q is taken", got)
			}
			if tt.wantSufx && !strings.HasSuffix(got, "-2") {
				t.Errorf("GenerateAvailableUsername() = %q, want numeric suffix", got)
			}
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
