package validation

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "simple name",
			input:   "alice",
			wantErr: false,
		},
		{
			name:    "name with spaces and accents",
			input:   "Zoë Smith",
			wantErr: false,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "too long",
			input:   strings.Repeat("a", MaxUsernameLength+1),
			wantErr: true,
		},
		{
			name:    "max length multibyte",
			input:   strings.Repeat("é", MaxUsernameLength),
			wantErr: false,
		},
		{
			name:    "control character",
			input:   "bob\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGrade(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"3-4", false},
		{"5-6", false},
		{"k_1", false},
		{"", true},
		{"../etc", true},
		{"-5", true},
		{"a very long grade name", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateGrade(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGrade(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2024-03-01", false},
		{"2024-02-30", true},
		{"03/01/2024", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateDate(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestWordFilter(t *testing.T) {
	filter, err := ParseWordFilter(strings.NewReader("darn\n\n  Heck \n"))
	if err != nil {
		t.Fatalf("ParseWordFilter() error = %v", err)
	}
	if filter.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", filter.Len())
	}

	tests := []struct {
		input string
		want  bool
	}{
		{"darn", true},
		{"HECK", true},
		{"happy-heck", true},
		{"darnell", false},
		{"alice", false},
	}
	for _, tt := range tests {
		if got := filter.Contains(tt.input); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	var none *WordFilter
	if none.Contains("darn") {
		t.Error("nil filter should contain nothing")
	}
}
