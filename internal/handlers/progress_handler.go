package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"spellbee/internal/logger"
	"spellbee/internal/models"
	"spellbee/internal/service"
	"spellbee/internal/validation"
)

// ProgressHandler exposes the practicing user's history
type ProgressHandler struct {
	progress *service.ProgressService
	totals   map[string]int
	log      *logger.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress *service.ProgressService, totals map[string]int, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{
		progress: progress,
		totals:   totals,
		log:      log.With("handler", "ProgressHandler"),
	}
}

type recentDay struct {
	service.DaySummary
	Complete   bool                 `json:"complete"`
	Misspelled []models.WordAttempt `json:"misspelled"`
}

type resumeResponse struct {
	Date       string   `json:"date"`
	GradeLevel string   `json:"gradeLevel"`
	LastWord   string   `json:"lastWord"`
	Attempted  []string `json:"attempted"`
	RetryWords []string `json:"retryWords"`
	Complete   bool     `json:"complete"`
}

// Today returns today's progress for a grade, 404 when nothing is recorded
func (h *ProgressHandler) Today(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	grade := r.PathValue("grade")
	if err := validation.ValidateGrade(grade); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	day, err := h.progress.GetTodayProgress(r.Context(), session.Username, grade)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, day)
}

// Recent returns summaries for the trailing ?days=N calendar days
func (h *ProgressHandler) Recent(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	days := service.DefaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 366 {
			respondWithServiceError(w, h.log, validation.ValidationError{Field: "days", Message: "days must be between 1 and 366"})
			return
		}
		days = n
	}

	history, err := h.progress.GetRecentProgress(r.Context(), session.Username, days)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	out := make([]recentDay, 0, len(history))
	for _, day := range history {
		out = append(out, recentDay{
			DaySummary: h.progress.Summary(day),
			Complete:   h.progress.IsSessionComplete(day, h.totals),
			Misspelled: h.progress.GetMisspelledWords(day),
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"days": out})
}

// Misspelled returns the misspelled words of a day and grade
func (h *ProgressHandler) Misspelled(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	date, grade, ok := h.dayParams(w, r)
	if !ok {
		return
	}

	words, err := h.progress.GetMisspelledWordsForDay(r.Context(), session.Username, date, grade)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"date": date, "gradeLevel": grade, "words": words})
}

// Resume returns where a day's session left off and which words to retry
func (h *ProgressHandler) Resume(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	date, grade, ok := h.dayParams(w, r)
	if !ok {
		return
	}

	day, err := h.progress.GetDayProgress(r.Context(), session.Username, date, grade)
	if errors.Is(err, service.ErrNoProgress) {
		day = models.NewDayProgress(date, grade)
	} else if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	last, attempted := h.progress.ResumePoint(*day)
	respondJSON(w, http.StatusOK, resumeResponse{
		Date:       date,
		GradeLevel: grade,
		LastWord:   last,
		Attempted:  attempted,
		RetryWords: h.progress.RetryWords(*day),
		Complete:   h.progress.IsSessionComplete(*day, h.totals),
	})
}

// Clear drops the user's whole history
func (h *ProgressHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	found, err := h.progress.ClearUserHistory(r.Context(), session.Username)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	if !found {
		respondWithError(w, h.log, http.StatusNotFound, CodeNotFound, "User not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProgressHandler) dayParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	date, grade := r.PathValue("date"), r.PathValue("grade")
	if err := validation.ValidateDate(date); err != nil {
		respondWithServiceError(w, h.log, err)
		return "", "", false
	}
	if err := validation.ValidateGrade(grade); err != nil {
		respondWithServiceError(w, h.log, err)
		return "", "", false
	}
	return date, grade, true
}
