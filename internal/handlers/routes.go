package handlers

import (
	"net/http"

	"spellbee/internal/logger"
)

// Handlers groups everything the router needs
type Handlers struct {
	Middleware *Middleware
	Users      *UserHandler
	Practice   *PracticeHandler
	Progress   *ProgressHandler
	Audio      *AudioHandler
	Log        *logger.Logger
}

// Routes builds the API mux wrapped in request logging
func (h *Handlers) Routes() http.Handler {
	m := h.Middleware
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", Health)

	// Users
	mux.HandleFunc("GET /api/users", h.Users.ListUsers)
	mux.HandleFunc("GET /api/users/suggest", h.Users.SuggestUsername)
	mux.HandleFunc("POST /api/users", m.RateLimit(h.Users.CreateUser))
	mux.HandleFunc("POST /api/users/{username}/select", m.RateLimit(h.Users.SelectUser))
	mux.HandleFunc("DELETE /api/users/{username}", m.RateLimit(m.OptionalUser(h.Users.DeleteUser)))
	mux.HandleFunc("GET /api/session", m.RequireUser(h.Users.Session))
	mux.HandleFunc("POST /api/logout", m.RequireUser(m.CSRFProtect(h.Users.Logout)))

	// Word lists
	mux.HandleFunc("GET /api/grades", h.Practice.Grades)
	mux.HandleFunc("GET /api/words/{grade}", h.Practice.Words)
	mux.HandleFunc("GET /api/words/{grade}/next", m.RequireUser(h.Practice.NextWord))

	// Practice
	mux.HandleFunc("POST /api/practice/{grade}/check", m.RequireUser(m.CSRFProtect(h.Practice.Check)))
	mux.HandleFunc("POST /api/practice/{grade}/skip", m.RequireUser(m.CSRFProtect(h.Practice.Skip)))

	// Progress
	mux.HandleFunc("GET /api/progress/today/{grade}", m.RequireUser(h.Progress.Today))
	mux.HandleFunc("GET /api/progress/recent", m.RequireUser(h.Progress.Recent))
	mux.HandleFunc("GET /api/progress/{date}/{grade}/misspelled", m.RequireUser(h.Progress.Misspelled))
	mux.HandleFunc("GET /api/progress/{date}/{grade}/resume", m.RequireUser(h.Progress.Resume))
	mux.HandleFunc("DELETE /api/progress", m.RequireUser(m.CSRFProtect(h.Progress.Clear)))

	// Speech
	mux.HandleFunc("GET /api/speak", m.RequireUser(m.RateLimit(h.Audio.Speak)))

	return Logging(h.Log, mux)
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
