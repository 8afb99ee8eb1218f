package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"spellbee/internal/logger"
	"spellbee/internal/models"
)

const (
	// DefaultWindowDays is the trailing window used by GetRecentProgress
	DefaultWindowDays = 7
	// DefaultGradeTotal applies to grades missing from the totals map
	DefaultGradeTotal = 500
	// maxWindowDays caps windowDays before the date arithmetic
	maxWindowDays = 100 * 366
)

// ProgressService records word attempts and answers history queries
type ProgressService struct {
	store *UserStore
	log   *logger.Logger
	loc   *time.Location
	now   func() time.Time
}

// NewProgressService creates a progress service. Calendar days are computed in loc.
func NewProgressService(store *UserStore, loc *time.Location, log *logger.Logger) *ProgressService {
	if loc == nil {
		loc = time.Local
	}
	return &ProgressService{
		store: store,
		log:   log.With("service", "ProgressService"),
		loc:   loc,
		now:   time.Now,
	}
}

// Today returns the current calendar date in the configured location
func (s *ProgressService) Today() string {
	return s.now().In(s.loc).Format(models.DateLayout)
}

// RecordAttempt stores the outcome of one answer for today's session.
// The user and the day entry are created when missing.
func (s *ProgressService) RecordAttempt(ctx context.Context, username, gradeLevel, word string, correct bool, userAnswer string) error {
	_, err := s.RecordAttemptDay(ctx, username, gradeLevel, word, correct, userAnswer)
	return err
}

// RecordAttemptDay is RecordAttempt returning a copy of the day entry as saved
func (s *ProgressService) RecordAttemptDay(ctx context.Context, username, gradeLevel, word string, correct bool, userAnswer string) (*models.DayProgress, error) {
	now := s.now()
	today := now.In(s.loc).Format(models.DateLayout)

	var saved models.DayProgress
	err := s.store.Update(ctx, func(users map[string]*models.UserData) error {
		user, ok := users[username]
		if !ok {
			user = models.NewUserData(username)
			users[username] = user
		}

		day := user.EnsureDay(today, gradeLevel)
		if !day.Consistent() {
			s.log.Warn("Repairing inconsistent day counters",
				"username", username,
				"date", day.Date,
				"grade", gradeLevel,
				"score", day.Score,
				"totalAttempts", day.TotalAttempts,
				"attempts", len(day.Attempts),
			)
			day.Recount()
		}

		day.Record(word, correct, userAnswer, now.UnixMilli())
		saved = *day
		saved.Attempts = append([]models.WordAttempt(nil), day.Attempts...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetTodayProgress returns today's entry for the grade or ErrNoProgress
func (s *ProgressService) GetTodayProgress(ctx context.Context, username, gradeLevel string) (*models.DayProgress, error) {
	return s.GetDayProgress(ctx, username, s.Today(), gradeLevel)
}

// GetDayProgress returns the entry for date and grade or ErrNoProgress
func (s *ProgressService) GetDayProgress(ctx context.Context, username, date, gradeLevel string) (*models.DayProgress, error) {
	users, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := users[username]
	if !ok {
		return nil, ErrNoProgress
	}
	day := user.Day(date, gradeLevel)
	if day == nil {
		return nil, ErrNoProgress
	}
	return day, nil
}

// GetRecentProgress returns the user's entries dated within the last windowDays
// calendar days, today included, most recent first.
func (s *ProgressService) GetRecentProgress(ctx context.Context, username string, windowDays int) ([]models.DayProgress, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if windowDays > maxWindowDays {
		windowDays = maxWindowDays
	}

	users, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	result := []models.DayProgress{}
	user, ok := users[username]
	if !ok {
		return result, nil
	}

	from, to := s.window(windowDays)
	for _, day := range user.History {
		if _, err := time.Parse(models.DateLayout, day.Date); err != nil {
			continue
		}
		if day.Date >= from && day.Date <= to {
			result = append(result, day)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date > result[j].Date
	})
	return result, nil
}

// window returns the first and last calendar dates of the n days ending today.
// Dates in DateLayout order lexically.
func (s *ProgressService) window(n int) (string, string) {
	now := s.now().In(s.loc)
	// noon keeps AddDate clear of DST transitions at midnight
	anchor := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, s.loc)
	return anchor.AddDate(0, 0, -(n - 1)).Format(models.DateLayout), anchor.Format(models.DateLayout)
}

// GetMisspelledWords returns the day's incorrect attempts in attempt order
func (s *ProgressService) GetMisspelledWords(day models.DayProgress) []models.WordAttempt {
	return day.Misspelled()
}

// GetMisspelledWordsForDay looks up a stored day and returns its incorrect attempts.
// Unknown users and days yield an empty list.
func (s *ProgressService) GetMisspelledWordsForDay(ctx context.Context, username, date, gradeLevel string) ([]models.WordAttempt, error) {
	day, err := s.GetDayProgress(ctx, username, date, gradeLevel)
	if errors.Is(err, ErrNoProgress) {
		return []models.WordAttempt{}, nil
	}
	if err != nil {
		return nil, err
	}
	return day.Misspelled(), nil
}

// IsSessionComplete reports whether every word of the grade has been attempted
func (s *ProgressService) IsSessionComplete(day models.DayProgress, totalWordsForGrade map[string]int) bool {
	total, ok := totalWordsForGrade[day.GradeLevel]
	if !ok {
		total = DefaultGradeTotal
	}
	return day.TotalAttempts >= total
}

// GetUserData returns the full record for username, or ErrNoProgress
func (s *ProgressService) GetUserData(ctx context.Context, username string) (*models.UserData, error) {
	users, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := users[username]
	if !ok {
		return nil, ErrNoProgress
	}
	return user, nil
}

// ClearUserHistory drops all history for username but keeps the user.
// It returns false when the user does not exist.
func (s *ProgressService) ClearUserHistory(ctx context.Context, username string) (bool, error) {
	found := false
	err := s.store.Update(ctx, func(users map[string]*models.UserData) error {
		user, ok := users[username]
		if !ok {
			return nil
		}
		found = true
		user.History = []models.DayProgress{}
		return nil
	})
	if err != nil {
		return false, err
	}
	if found {
		s.log.Info("Cleared user history", "username", username)
	}
	return found, nil
}

// RetryWords returns the misspelled words of a day, in attempt order
func (s *ProgressService) RetryWords(day models.DayProgress) []string {
	words := []string{}
	for _, a := range day.Misspelled() {
		words = append(words, a.Word)
	}
	return words
}

// ResumePoint returns the last attempted word and every attempted word in order
func (s *ProgressService) ResumePoint(day models.DayProgress) (string, []string) {
	attempted := make([]string, 0, len(day.Attempts))
	for _, a := range day.Attempts {
		attempted = append(attempted, a.Word)
	}
	if len(attempted) == 0 {
		return "", attempted
	}
	return attempted[len(attempted)-1], attempted
}

// DaySummary is the aggregate shown in the history view
type DaySummary struct {
	Date            string `json:"date"`
	GradeLevel      string `json:"gradeLevel"`
	Score           int    `json:"score"`
	TotalAttempts   int    `json:"totalAttempts"`
	Percentage      int    `json:"percentage"`
	MisspelledCount int    `json:"misspelledCount"`
	SkippedCount    int    `json:"skippedCount"`
}

// Summary computes the rounded score percentage and the misspelled and
// skipped counts for a day
func (s *ProgressService) Summary(day models.DayProgress) DaySummary {
	skipped := 0
	for _, a := range day.Attempts {
		if a.Skipped() {
			skipped++
		}
	}
	return DaySummary{
		Date:            day.Date,
		GradeLevel:      day.GradeLevel,
		Score:           day.Score,
		TotalAttempts:   day.TotalAttempts,
		Percentage:      day.Percentage(),
		MisspelledCount: len(day.Misspelled()),
		SkippedCount:    skipped,
	}
}
