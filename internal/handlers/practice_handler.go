package handlers

import (
	"errors"
	"net/http"
	"strings"

	"spellbee/internal/config"
	"spellbee/internal/logger"
	"spellbee/internal/service"
	"spellbee/internal/validation"
	"spellbee/internal/wordlist"
)

// PracticeHandler serves word lists and records answers
type PracticeHandler struct {
	catalog  *wordlist.Catalog
	progress *service.ProgressService
	totals   map[string]int
	log      *logger.Logger
}

// NewPracticeHandler creates a new practice handler. totals maps each grade
// to its word count for session completion.
func NewPracticeHandler(catalog *wordlist.Catalog, progress *service.ProgressService, totals map[string]int, log *logger.Logger) *PracticeHandler {
	return &PracticeHandler{
		catalog:  catalog,
		progress: progress,
		totals:   totals,
		log:      log.With("handler", "PracticeHandler"),
	}
}

type checkRequest struct {
	Word   string `json:"word"`
	Answer string `json:"answer"`
}

type checkResponse struct {
	Correct   bool               `json:"correct"`
	Word      string             `json:"word"`
	Spellings []string           `json:"spellings"`
	Progress  service.DaySummary `json:"progress"`
	Complete  bool               `json:"complete"`
}

// Grades lists the configured grades
func (h *PracticeHandler) Grades(w http.ResponseWriter, r *http.Request) {
	grades := h.catalog.Grades()
	if grades == nil {
		grades = []config.Grade{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"grades": grades})
}

// Words returns the grade's word list. ?refresh=true refetches it.
func (h *PracticeHandler) Words(w http.ResponseWriter, r *http.Request) {
	grade := r.PathValue("grade")
	if err := validation.ValidateGrade(grade); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	entries, err := h.catalog.Words(r.Context(), grade, r.URL.Query().Get("refresh") == "true")
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"grade": grade, "words": entries})
}

// NextWord picks a random word not yet attempted today
func (h *PracticeHandler) NextWord(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	grade := r.PathValue("grade")
	if err := validation.ValidateGrade(grade); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	entries, err := h.catalog.Words(r.Context(), grade, false)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	var attempted []string
	day, err := h.progress.GetTodayProgress(r.Context(), session.Username, grade)
	switch {
	case err == nil:
		_, attempted = h.progress.ResumePoint(*day)
	case !errors.Is(err, service.ErrNoProgress):
		respondWithServiceError(w, h.log, err)
		return
	}

	entry, err := wordlist.Pick(entries, attempted)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"word":      entry.Primary,
		"attempted": len(attempted),
		"total":     len(entries),
	})
}

// Check grades an answer and records the attempt
func (h *PracticeHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	h.record(w, r, req.Word, req.Answer)
}

// Skip records the word as misspelled with an empty answer
func (h *PracticeHandler) Skip(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	h.record(w, r, req.Word, "")
}

func (h *PracticeHandler) record(w http.ResponseWriter, r *http.Request, word, answer string) {
	session := GetSessionFromContext(r.Context())
	grade := r.PathValue("grade")
	if err := validation.ValidateGrade(grade); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	if strings.TrimSpace(word) == "" {
		respondWithServiceError(w, h.log, validation.ValidationError{Field: "word", Message: "word is required"})
		return
	}

	entries, err := h.catalog.Words(r.Context(), grade, false)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	entry, ok := wordlist.Find(entries, word)
	if !ok {
		respondWithServiceError(w, h.log, validation.ValidationError{Field: "word", Message: "word is not in this grade's list"})
		return
	}

	answer = strings.TrimSpace(answer)
	correct := wordlist.CheckSpelling(entry, answer)
	day, err := h.progress.RecordAttemptDay(r.Context(), session.Username, grade, entry.Primary, correct, answer)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, checkResponse{
		Correct:   correct,
		Word:      entry.Primary,
		Spellings: entry.Spellings,
		Progress:  h.progress.Summary(*day),
		Complete:  h.progress.IsSessionComplete(*day, h.totals),
	})
}
