package models

import "strings"

// DateLayout is the calendar date format used for DayProgress.Date
const DateLayout = "2006-01-02"

// GradeLevel is a coarse difficulty bucket selecting a vocabulary set.
// The store accepts any value; these are the ones shipped by default.
type GradeLevel string

const (
	Grade34 GradeLevel = "3-4"
	Grade56 GradeLevel = "5-6"
	Grade78 GradeLevel = "7-8"
)

// WordAttempt represents a single scored answer
type WordAttempt struct {
	Word       string `json:"word"`
	Correct    bool   `json:"correct"`
	UserAnswer string `json:"userAnswer"` // empty when skipped
	Timestamp  int64  `json:"timestamp"`  // milliseconds since epoch
}

// Skipped reports whether the word was skipped rather than answered
func (a WordAttempt) Skipped() bool {
	return a.UserAnswer == ""
}

// DayProgress aggregates one user's attempts for one grade on one date
type DayProgress struct {
	Date          string        `json:"date"`
	GradeLevel    string        `json:"gradeLevel"`
	Attempts      []WordAttempt `json:"attempts"`
	Score         int           `json:"score"`
	TotalAttempts int           `json:"totalAttempts"`
}

// NewDayProgress returns an empty day for date and grade
func NewDayProgress(date, gradeLevel string) *DayProgress {
	return &DayProgress{
		Date:       date,
		GradeLevel: gradeLevel,
		Attempts:   []WordAttempt{},
	}
}

// Find returns the index of the attempt for word, matched case-insensitively, or -1
func (d *DayProgress) Find(word string) int {
	for i := range d.Attempts {
		if strings.EqualFold(d.Attempts[i].Word, word) {
			return i
		}
	}
	return -1
}

// Record applies an attempt to the day. A word already attempted is updated
// in place and only moves the score; a new word is appended.
// It returns true when the word was attempted for the first time.
func (d *DayProgress) Record(word string, correct bool, userAnswer string, timestamp int64) bool {
	if i := d.Find(word); i >= 0 {
		prev := d.Attempts[i]
		switch {
		case prev.Correct && !correct:
			d.Score--
		case !prev.Correct && correct:
			d.Score++
		}
		d.Attempts[i].Correct = correct
		d.Attempts[i].UserAnswer = userAnswer
		d.Attempts[i].Timestamp = timestamp
		return false
	}

	d.Attempts = append(d.Attempts, WordAttempt{
		Word:       word,
		Correct:    correct,
		UserAnswer: userAnswer,
		Timestamp:  timestamp,
	})
	d.TotalAttempts++
	if correct {
		d.Score++
	}
	return true
}

// Consistent reports whether the stored counters agree with the attempts
func (d *DayProgress) Consistent() bool {
	if d.Score < 0 || d.TotalAttempts < 0 || d.Score > d.TotalAttempts {
		return false
	}
	if d.TotalAttempts != len(d.Attempts) {
		return false
	}
	return d.Score == d.countCorrect()
}

// Recount rebuilds Score and TotalAttempts from the attempts
func (d *DayProgress) Recount() {
	d.TotalAttempts = len(d.Attempts)
	d.Score = d.countCorrect()
}

func (d *DayProgress) countCorrect() int {
	n := 0
	for _, a := range d.Attempts {
		if a.Correct {
			n++
		}
	}
	return n
}

// Misspelled returns the incorrect attempts in attempt order
func (d DayProgress) Misspelled() []WordAttempt {
	out := []WordAttempt{}
	for _, a := range d.Attempts {
		if !a.Correct {
			out = append(out, a)
		}
	}
	return out
}

// Percentage returns the rounded share of correct attempts, 0 when there are none
func (d DayProgress) Percentage() int {
	if d.TotalAttempts == 0 {
		return 0
	}
	return (d.Score*200 + d.TotalAttempts) / (d.TotalAttempts * 2)
}

// UserData is one user's full practice record
type UserData struct {
	Username string        `json:"username"`
	History  []DayProgress `json:"history"`
}

// NewUserData returns a user with an empty history
func NewUserData(username string) *UserData {
	return &UserData{Username: username, History: []DayProgress{}}
}

// Day returns the progress entry for date and grade, or nil
func (u *UserData) Day(date, gradeLevel string) *DayProgress {
	for i := range u.History {
		if u.History[i].Date == date && u.History[i].GradeLevel == gradeLevel {
			return &u.History[i]
		}
	}
	return nil
}

// EnsureDay returns the entry for date and grade, creating it if needed
func (u *UserData) EnsureDay(date, gradeLevel string) *DayProgress {
	if d := u.Day(date, gradeLevel); d != nil {
		return d
	}
	u.History = append(u.History, *NewDayProgress(date, gradeLevel))
	return &u.History[len(u.History)-1]
}

// Session identifies who is practicing in the current request
type Session struct {
	Username string
}
