package models

import (
	"encoding/json"
	"testing"
)

func TestDayProgressRecord(t *testing.T) {
	type step struct {
		word    string
		correct bool
		answer  string
	}
	tests := []struct {
		name      string
		steps     []step
		wantScore int
		wantTotal int
	}{
		{
			name:      "single correct",
			steps:     []step{{"cat", true, "cat"}},
			wantScore: 1,
			wantTotal: 1,
		},
		{
			name:      "correct then incorrect",
			steps:     []step{{"cat", true, "cat"}, {"cat", false, "kat"}},
			wantScore: 0,
			wantTotal: 1,
		},
		{
			name:      "incorrect then correct",
			steps:     []step{{"cat", false, "kat"}, {"cat", true, "cat"}},
			wantScore: 1,
			wantTotal: 1,
		},
		{
			name:      "same outcome twice",
			steps:     []step{{"cat", true, "cat"}, {"CAT", true, "Cat"}},
			wantScore: 1,
			wantTotal: 1,
		},
		{
			name:      "distinct words",
			steps:     []step{{"dog", true, "dog"}, {"cow", false, "kow"}, {"pig", true, "pig"}},
			wantScore: 2,
			wantTotal: 3,
		},
		{
			name:      "skipped word",
			steps:     []step{{"owl", false, ""}},
			wantScore: 0,
			wantTotal: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := NewDayProgress("2024-03-01", "5-6")
			for i, s := range tt.steps {
				day.Record(s.word, s.correct, s.answer, int64(i))
				if !day.Consistent() {
					t.Fatalf("day inconsistent after step %d: %+v", i, day)
				}
			}
			if day.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", day.Score, tt.wantScore)
			}
			if day.TotalAttempts != tt.wantTotal {
				t.Errorf("TotalAttempts = %d, want %d", day.TotalAttempts, tt.wantTotal)
			}
		})
	}
}

func TestDayProgressRecordKeepsWord(t *testing.T) {
	day := NewDayProgress("2024-03-01", "5-6")
	if !day.Record("Paris", true, "Paris", 1) {
		t.Fatal("first Record() = false, want true")
	}
	if day.Record("paris", false, "pariss", 2) {
		t.Fatal("second Record() = true, want false")
	}

	got := day.Attempts[0]
	if got.Word != "Paris" || got.Correct || got.UserAnswer != "pariss" || got.Timestamp != 2 {
		t.Errorf("attempt = %+v", got)
	}
}

func TestDayProgressConsistent(t *testing.T) {
	tests := []struct {
		name string
		day  DayProgress
		want bool
	}{
		{
			name: "empty",
			day:  DayProgress{},
			want: true,
		},
		{
			name: "score above total",
			day:  DayProgress{Attempts: []WordAttempt{{Word: "a", Correct: true}}, Score: 2, TotalAttempts: 1},
			want: false,
		},
		{
			name: "negative score",
			day:  DayProgress{Score: -1},
			want: false,
		},
		{
			name: "total does not match attempts",
			day:  DayProgress{Attempts: []WordAttempt{{Word: "a"}}, TotalAttempts: 3},
			want: false,
		},
		{
			name: "score does not match correct count",
			day:  DayProgress{Attempts: []WordAttempt{{Word: "a"}, {Word: "b", Correct: true}}, Score: 0, TotalAttempts: 2},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.day.Consistent(); got != tt.want {
				t.Errorf("Consistent() = %v, want %v", got, tt.want)
			}
			tt.day.Recount()
			if !tt.day.Consistent() {
				t.Errorf("Consistent() after Recount() = false")
			}
		})
	}
}

func TestDayProgressPercentage(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{0, 0, 0},
		{1, 1, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
	}

	for _, tt := range tests {
		day := DayProgress{Score: tt.score, TotalAttempts: tt.total}
		if got := day.Percentage(); got != tt.want {
			t.Errorf("Percentage(%d/%d) = %d, want %d", tt.score, tt.total, got, tt.want)
		}
	}
}

func TestUserDataEnsureDay(t *testing.T) {
	u := NewUserData("alice")
	d := u.EnsureDay("2024-03-01", "5-6")
	d.Record("cat", true, "cat", 1)

	if again := u.EnsureDay("2024-03-01", "5-6"); again.TotalAttempts != 1 {
		t.Errorf("EnsureDay() returned a new entry: %+v", again)
	}
	u.EnsureDay("2024-03-01", "7-8")
	if len(u.History) != 2 {
		t.Errorf("len(History) = %d, want 2", len(u.History))
	}
	if u.Day("2024-03-02", "5-6") != nil {
		t.Error("Day() for missing date should be nil")
	}
}

func TestUserDataJSON(t *testing.T) {
	raw := `{"username":"alice","history":[{"date":"2024-03-01","gradeLevel":"5-6",` +
		`"attempts":[{"word":"cat","correct":false,"userAnswer":"kat","timestamp":1709251200000}],` +
		`"score":0,"totalAttempts":1}]}`

	var u UserData
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if u.History[0].Attempts[0].UserAnswer != "kat" {
		t.Errorf("userAnswer = %q, want kat", u.History[0].Attempts[0].UserAnswer)
	}
	if u.History[0].Attempts[0].Skipped() {
		t.Error("answered attempt reported as skipped")
	}
	if !(WordAttempt{Word: "owl"}).Skipped() {
		t.Error("attempt without an answer not reported as skipped")
	}
}
