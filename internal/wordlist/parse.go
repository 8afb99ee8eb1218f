package wordlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"spellbee/internal/models"
)

var (
	// ErrUnavailable means the word list could not be fetched
	ErrUnavailable = errors.New("word list unavailable")
	// ErrEmptyList means the word list was fetched but has no words
	ErrEmptyList = errors.New("word list is empty")
	// ErrUnknownGrade means no word list is configured for the grade
	ErrUnknownGrade = errors.New("unknown grade")
)

// Parse reads newline-delimited records, each a comma-separated list of
// accepted spellings. Entries are trimmed and empty ones dropped; the first
// spelling of a record is its primary word.
func Parse(r io.Reader) ([]models.WordEntry, error) {
	var entries []models.WordEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if entry, ok := newEntry(strings.Split(scanner.Text(), ",")); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading word list: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrEmptyList
	}
	return entries, nil
}

// ParseXLSX reads the first sheet of a workbook. Column A holds the primary
// spelling and any further columns hold alternatives.
func ParseXLSX(r io.Reader) ([]models.WordEntry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyList
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	var entries []models.WordEntry
	for _, row := range rows {
		if entry, ok := newEntry(row); ok {
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		return nil, ErrEmptyList
	}
	return entries, nil
}

// decode picks the parser from the location's file extension
func decode(location string, r io.Reader) ([]models.WordEntry, error) {
	if strings.EqualFold(path.Ext(location), ".xlsx") {
		return ParseXLSX(r)
	}
	return Parse(r)
}

func newEntry(fields []string) (models.WordEntry, bool) {
	spellings := make([]string, 0, len(fields))
	for _, f := range fields {
		if s := strings.TrimSpace(f); s != "" {
			spellings = append(spellings, s)
		}
	}
	if len(spellings) == 0 {
		return models.WordEntry{}, false
	}
	return models.WordEntry{Primary: spellings[0], Spellings: spellings}, true
}
