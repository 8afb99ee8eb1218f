package handlers

import (
	"errors"
	"net/http"
	"time"

	"spellbee/internal/audio"
	"spellbee/internal/logger"
	"spellbee/internal/security"
	"spellbee/internal/service"
)

// UserHandler handles user selection and the session cookie
type UserHandler struct {
	users    *service.UserService
	progress *service.ProgressService
	sessions *security.SessionManager
	players  *audio.Players
	log      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *service.UserService, progress *service.ProgressService, sessions *security.SessionManager, players *audio.Players, log *logger.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		progress: progress,
		sessions: sessions,
		players:  players,
		log:      log.With("handler", "UserHandler"),
	}
}

type createUserRequest struct {
	Username string `json:"username"`
}

type sessionResponse struct {
	Username  string `json:"username"`
	CSRFToken string `json:"csrfToken"`
	ExpiresAt int64  `json:"expiresAt"`
}

// ListUsers returns every known username
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	names, err := h.users.ListUsers(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": names})
}

// SuggestUsername proposes an unused generated username
func (h *UserHandler) SuggestUsername(w http.ResponseWriter, r *http.Request) {
	name, err := h.users.SuggestUsername(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"username": name})
}

// CreateUser creates the user if needed and selects it
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	h.startSession(w, r, user.Username, http.StatusCreated)
}

// SelectUser selects an existing user
func (h *UserHandler) SelectUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	user, err := h.progress.GetUserData(r.Context(), username)
	if errors.Is(err, service.ErrNoProgress) {
		respondWithError(w, h.log, http.StatusNotFound, CodeNotFound, "User not found", nil)
		return
	}
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	h.startSession(w, r, user.Username, http.StatusOK)
}

func (h *UserHandler) startSession(w http.ResponseWriter, r *http.Request, username string, status int) {
	if err := h.users.SetCurrentUser(r.Context(), username); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	token, claims, err := h.sessions.Issue(username)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, CodeInternal, "Failed to start session", err)
		return
	}
	http.SetCookie(w, security.CreateSessionCookie(r, token, claims.ExpiresAt.Time))

	h.log.Info("User selected", "username", username)
	respondJSON(w, status, sessionResponse{
		Username:  username,
		CSRFToken: h.sessions.CSRFToken(claims.ID),
		ExpiresAt: claims.ExpiresAt.Time.UnixMilli(),
	})
}

// Session returns the active session and its CSRF token
func (h *UserHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaimsFromContext(r.Context())
	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	respondJSON(w, http.StatusOK, sessionResponse{
		Username:  claims.Username,
		CSRFToken: h.sessions.CSRFToken(claims.ID),
		ExpiresAt: expires.UnixMilli(),
	})
}

// DeleteUser removes a user. Deleting the active user ends the session.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	deleted, err := h.users.DeleteUser(r.Context(), username)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	if !deleted {
		respondWithError(w, h.log, http.StatusNotFound, CodeNotFound, "User not found", nil)
		return
	}

	h.players.Remove(username)
	if claims := sessionClaimsFromContext(r.Context()); claims != nil && claims.Username == username {
		http.SetCookie(w, security.CreateDeleteCookie(r))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout clears the current user and the session cookie
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := sessionClaimsFromContext(r.Context())
	if err := h.users.ClearCurrentUser(r.Context()); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	h.players.Remove(claims.Username)
	http.SetCookie(w, security.CreateDeleteCookie(r))
	w.WriteHeader(http.StatusNoContent)
}
