package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the signed session token
const SessionCookieName = "spellbee_session"

// CSRFHeader carries the CSRF token on state-changing requests
const CSRFHeader = "X-CSRF-Token"

// ErrInvalidSession is returned for missing, malformed, forged or expired tokens
var ErrInvalidSession = errors.New("invalid session")

// SessionClaims identifies the practicing user
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256-signed session tokens.
// CSRF tokens are derived from the session ID, so no server state is kept.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a manager. The secret must be at least 32 bytes.
func NewSessionManager(secret string, ttl time.Duration) (*SessionManager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session duration must be positive")
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// GenerateSecret returns a random hex secret for deployments without one configured
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// TTL returns how long issued sessions stay valid
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new session token for username
func (m *SessionManager) Issue(username string) (string, *SessionClaims, error) {
	now := m.now()
	claims := &SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, claims, nil
}

// Parse verifies a session token and returns its claims
func (m *SessionManager) Parse(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	claims := &SessionClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if !parsed.Valid || claims.Username == "" || claims.ID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// CSRFToken returns the CSRF token bound to a session ID
func (m *SessionManager) CSRFToken(sessionID string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte("csrf:" + sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidCSRF reports whether token is the CSRF token for sessionID
func (m *SessionManager) ValidCSRF(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	return hmac.Equal([]byte(m.CSRFToken(sessionID)), []byte(token))
}
