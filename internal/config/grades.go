package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Grade describes one vocabulary set. Source is an http(s) URL, an
// s3://bucket/key location or a local file path; empty means
// <WordListDir>/<level>.txt.
type Grade struct {
	Level      string `yaml:"level" json:"level"`
	TotalWords int    `yaml:"total_words" json:"totalWords"`
	Source     string `yaml:"source" json:"source,omitempty"`
}

type gradesFile struct {
	Grades []Grade `yaml:"grades"`
}

// DefaultGrades returns the built-in grade catalog.
func DefaultGrades() []Grade {
	return []Grade{
		{Level: "3-4", TotalWords: 450},
		{Level: "5-6", TotalWords: 500},
		{Level: "7-8", TotalWords: 550},
	}
}

// LoadGrades reads a YAML grade catalog.
func LoadGrades(path string) ([]Grade, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grades file: %w", err)
	}
	return ParseGrades(data)
}

// ParseGrades decodes and validates a YAML grade catalog.
func ParseGrades(data []byte) ([]Grade, error) {
	var f gradesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse grades file: %w", err)
	}
	if len(f.Grades) == 0 {
		return nil, errors.New("grades file defines no grades")
	}

	seen := make(map[string]bool, len(f.Grades))
	for i := range f.Grades {
		g := &f.Grades[i]
		g.Level = strings.TrimSpace(g.Level)
		if g.Level == "" {
			return nil, fmt.Errorf("grade %d has no level", i)
		}
		if seen[g.Level] {
			return nil, fmt.Errorf("duplicate grade level %q", g.Level)
		}
		if g.TotalWords < 0 {
			return nil, fmt.Errorf("grade %q has negative total_words", g.Level)
		}
		seen[g.Level] = true
	}
	return f.Grades, nil
}

// GradeTotals maps grade level to the expected number of words.
func (c *Config) GradeTotals() map[string]int {
	totals := make(map[string]int, len(c.Grades))
	for _, g := range c.Grades {
		totals[g.Level] = g.TotalWords
	}
	return totals
}

// FindGrade looks a grade up by level.
func (c *Config) FindGrade(level string) (Grade, bool) {
	for _, g := range c.Grades {
		if g.Level == level {
			return g, true
		}
	}
	return Grade{}, false
}
