package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"spellbee/internal/logger"
	"spellbee/internal/models"
	"spellbee/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	SessionContextKey   ContextKey = "session"
	RequestIDContextKey ContextKey = "request_id"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	sessions *security.SessionManager
	limiter  *security.RateLimiter
	log      *logger.Logger
}

// NewMiddleware creates a new middleware instance. limiter may be nil.
func NewMiddleware(sessions *security.SessionManager, limiter *security.RateLimiter, log *logger.Logger) *Middleware {
	return &Middleware{
		sessions: sessions,
		limiter:  limiter,
		log:      log,
	}
}

// RequireUser resolves the session cookie into a models.Session
func (m *Middleware) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.sessionClaims(r)
		if !ok {
			http.SetCookie(w, security.CreateDeleteCookie(r))
			respondWithError(w, m.log, http.StatusUnauthorized, CodeUnauthorized, "Choose a user first", nil)
			return
		}
		ctx := context.WithValue(r.Context(), SessionContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// OptionalUser attaches the session when a valid cookie is present
func (m *Middleware) OptionalUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := m.sessionClaims(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), SessionContextKey, claims))
		}
		next(w, r)
	}
}

// CSRFProtect requires the session's CSRF token in the X-CSRF-Token header.
// It must run inside RequireUser.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := sessionClaimsFromContext(r.Context())
		if claims == nil || !m.sessions.ValidCSRF(claims.ID, r.Header.Get(security.CSRFHeader)) {
			respondWithError(w, m.log, http.StatusForbidden, CodeForbidden, "Invalid CSRF token", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit rejects clients that exceed the limiter's budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(security.GetClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondWithError(w, m.log, http.StatusTooManyRequests, CodeRateLimited, "Too many requests", nil)
			return
		}
		next(w, r)
	}
}

func (m *Middleware) sessionClaims(r *http.Request) (*security.SessionClaims, bool) {
	cookie, err := r.Cookie(security.SessionCookieName)
	if err != nil {
		return nil, false
	}
	claims, err := m.sessions.Parse(cookie.Value)
	if err != nil {
		m.log.Debug("Rejected session cookie", "error", err)
		return nil, false
	}
	return claims, true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Logging middleware logs HTTP requests with a request id
func Logging(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w}
		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		next.ServeHTTP(rec, r.WithContext(ctx))

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		log.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
			"request_id", requestID,
		)
	})
}

func sessionClaimsFromContext(ctx context.Context) *security.SessionClaims {
	claims, ok := ctx.Value(SessionContextKey).(*security.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetSessionFromContext retrieves the practicing user from the request context
func GetSessionFromContext(ctx context.Context) *models.Session {
	claims := sessionClaimsFromContext(ctx)
	if claims == nil {
		return nil
	}
	return &models.Session{Username: claims.Username}
}
