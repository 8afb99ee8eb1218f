package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"spellbee/internal/audio"
	"spellbee/internal/logger"
	"spellbee/internal/service"
	"spellbee/internal/validation"
	"spellbee/internal/wordlist"
)

// Error codes returned in the JSON error body
const (
	CodeStoreUnavailable    = "store_unavailable"
	CodeStoreCorrupt        = "store_corrupt"
	CodeInvalidInput        = "invalid_input"
	CodeInvalidUsername     = "invalid_username"
	CodeNotFound            = "not_found"
	CodeNoProgress          = "no_progress"
	CodeWordListUnavailable = "wordlist_unavailable"
	CodeListExhausted       = "list_exhausted"
	CodeInterrupted         = "interrupted"
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeRateLimited         = "rate_limited"
	CodeInternal            = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Retry bool   `json:"retry,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondWithError(w http.ResponseWriter, log *logger.Logger, status int, code, userMsg string, err error) {
	if err != nil {
		if status >= http.StatusInternalServerError {
			log.Error(userMsg, "code", code, "error", err)
		} else {
			log.Debug(userMsg, "code", code, "error", err)
		}
	}
	respondJSON(w, status, errorResponse{
		Error: userMsg,
		Code:  code,
		Retry: status == http.StatusServiceUnavailable || status == http.StatusBadGateway,
	})
}

// respondWithServiceError maps service and word list errors to a status
func respondWithServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	var verr validation.ValidationError
	switch {
	case errors.Is(err, service.ErrStoreUnavailable):
		respondWithError(w, log, http.StatusServiceUnavailable, CodeStoreUnavailable, "Progress could not be saved or loaded, please try again", err)
	case errors.Is(err, service.ErrStoreCorrupt):
		respondWithError(w, log, http.StatusInternalServerError, CodeStoreCorrupt, "Stored progress is damaged", err)
	case errors.Is(err, service.ErrInvalidUsername):
		respondWithError(w, log, http.StatusBadRequest, CodeInvalidUsername, "Please choose a different name", err)
	case errors.As(err, &verr):
		respondWithError(w, log, http.StatusBadRequest, CodeInvalidInput, verr.Error(), err)
	case errors.Is(err, service.ErrNoProgress):
		respondWithError(w, log, http.StatusNotFound, CodeNoProgress, "No progress recorded", err)
	case errors.Is(err, wordlist.ErrUnknownGrade):
		respondWithError(w, log, http.StatusNotFound, CodeNotFound, "Unknown grade", err)
	case errors.Is(err, wordlist.ErrExhausted):
		respondWithError(w, log, http.StatusConflict, CodeListExhausted, "Every word has been attempted today", err)
	case errors.Is(err, wordlist.ErrUnavailable), errors.Is(err, wordlist.ErrEmptyList):
		respondWithError(w, log, http.StatusBadGateway, CodeWordListUnavailable, "Word list could not be loaded, please try again", err)
	case errors.Is(err, audio.ErrInvalidText):
		respondWithError(w, log, http.StatusBadRequest, CodeInvalidInput, "Nothing to say", err)
	case errors.Is(err, audio.ErrInterrupted):
		respondWithError(w, log, http.StatusConflict, CodeInterrupted, "Playback was interrupted", err)
	default:
		respondWithError(w, log, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return validation.ValidationError{Field: "body", Message: "invalid JSON body"}
	}
	return nil
}
