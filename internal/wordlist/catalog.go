package wordlist

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"spellbee/internal/config"
	"spellbee/internal/logger"
	"spellbee/internal/models"
)

// Catalog resolves a grade to its word list and keeps the last good copy
type Catalog struct {
	grades []config.Grade
	dir    string
	log    *logger.Logger

	httpSource Source
	s3Source   Source
	fileSource Source

	mu    sync.Mutex
	cache map[string][]models.WordEntry
}

// NewCatalog creates a catalog over the configured grades. Grades without a
// source read <dir>/<level>.txt. s3Source may be nil when no grade uses S3.
func NewCatalog(grades []config.Grade, dir string, httpSource, s3Source Source, log *logger.Logger) *Catalog {
	return &Catalog{
		grades:     grades,
		dir:        dir,
		log:        log.With("component", "WordCatalog"),
		httpSource: httpSource,
		s3Source:   s3Source,
		fileSource: FileSource{},
		cache:      make(map[string][]models.WordEntry),
	}
}

// NeedsS3 reports whether any grade is stored in S3
func NeedsS3(grades []config.Grade) bool {
	for _, g := range grades {
		if strings.HasPrefix(g.Source, "s3://") {
			return true
		}
	}
	return false
}

// Grades returns the configured grades
func (c *Catalog) Grades() []config.Grade {
	return c.grades
}

// Location returns where the grade's list is read from
func (c *Catalog) Location(grade string) (string, error) {
	for _, g := range c.grades {
		if g.Level == grade {
			if g.Source != "" {
				return g.Source, nil
			}
			return filepath.Join(c.dir, g.Level+".txt"), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownGrade, grade)
}

// Words returns the grade's word list. A cached list is served unless
// refresh is set; failed fetches are never cached.
func (c *Catalog) Words(ctx context.Context, grade string, refresh bool) ([]models.WordEntry, error) {
	location, err := c.Location(grade)
	if err != nil {
		return nil, err
	}

	if !refresh {
		c.mu.Lock()
		cached, ok := c.cache[grade]
		c.mu.Unlock()
		if ok {
			return cached, nil
		}
	}

	source, err := c.sourceFor(location)
	if err != nil {
		return nil, err
	}
	entries, err := source.Fetch(ctx, location)
	if err != nil {
		if !errors.Is(err, ErrEmptyList) && !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		c.log.Warn("Failed to load word list", "grade", grade, "location", location, "error", err)
		return nil, err
	}

	c.mu.Lock()
	c.cache[grade] = entries
	c.mu.Unlock()
	c.log.Info("Loaded word list", "grade", grade, "words", len(entries))
	return entries, nil
}

func (c *Catalog) sourceFor(location string) (Source, error) {
	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		if c.httpSource == nil {
			return nil, fmt.Errorf("%w: no HTTP source configured", ErrUnavailable)
		}
		return c.httpSource, nil
	case strings.HasPrefix(lower, "s3://"):
		if c.s3Source == nil {
			return nil, fmt.Errorf("%w: no S3 source configured", ErrUnavailable)
		}
		return c.s3Source, nil
	default:
		return c.fileSource, nil
	}
}
