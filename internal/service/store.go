package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"spellbee/internal/logger"
	"spellbee/internal/models"
	"spellbee/internal/repository"
)

// Storage keys
const (
	KeyPrefix      = "spellbee_"
	UsersKey       = KeyPrefix + "users"
	CurrentUserKey = KeyPrefix + "current_user"
)

var (
	// ErrStoreUnavailable means the key-value backend could not be read or written
	ErrStoreUnavailable = errors.New("progress store unavailable")
	// ErrStoreCorrupt means the stored user data could not be decoded
	ErrStoreCorrupt = errors.New("progress store corrupt")
	// ErrNoProgress means there is no entry for the requested day and grade
	ErrNoProgress = errors.New("no progress recorded")
	// ErrInvalidUsername is returned for empty or rejected usernames
	ErrInvalidUsername = errors.New("invalid username")
)

// UserStore loads and saves the username -> UserData mapping as a single
// JSON document. Every modification is a locked load-modify-save.
type UserStore struct {
	kv  repository.KVStore
	log *logger.Logger
	mu  sync.Mutex
}

func NewUserStore(kv repository.KVStore, log *logger.Logger) *UserStore {
	return &UserStore{kv: kv, log: log.With("component", "UserStore")}
}

// KV returns the backing key-value store
func (s *UserStore) KV() repository.KVStore {
	return s.kv
}

// Load returns a snapshot of all users
func (s *UserStore) Load(ctx context.Context) (map[string]*models.UserData, error) {
	raw, err := s.kv.Get(ctx, UsersKey)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return map[string]*models.UserData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return s.decode(raw)
}

// Update applies fn to the user map and persists the result before returning.
// Errors returned by fn abort the update and are returned unchanged.
func (s *UserStore) Update(ctx context.Context, fn func(users map[string]*models.UserData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fnErr error
	err := s.kv.Update(ctx, UsersKey, func(current string, ok bool) (string, error) {
		users := map[string]*models.UserData{}
		if ok {
			decoded, err := s.decode(current)
			if err != nil {
				fnErr = err
				return "", err
			}
			users = decoded
		}

		if err := fn(users); err != nil {
			fnErr = err
			return "", err
		}

		encoded, err := json.Marshal(users)
		if err != nil {
			fnErr = fmt.Errorf("%w: encode users: %w", ErrStoreCorrupt, err)
			return "", fnErr
		}
		return string(encoded), nil
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Replace overwrites the whole user map
func (s *UserStore) Replace(ctx context.Context, users map[string]*models.UserData) error {
	return s.Update(ctx, func(current map[string]*models.UserData) error {
		for name := range current {
			delete(current, name)
		}
		for name, u := range users {
			current[name] = u
		}
		return nil
	})
}

func (s *UserStore) decode(raw string) (map[string]*models.UserData, error) {
	users := map[string]*models.UserData{}
	if raw == "" {
		return users, nil
	}
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		s.log.Error("Failed to decode stored users", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreCorrupt, err)
	}
	if users == nil {
		s.log.Error("Stored users document is null")
		return nil, fmt.Errorf("%w: stored users is null", ErrStoreCorrupt)
	}
	for name, u := range users {
		if err := normalizeUser(name, u); err != nil {
			s.log.Error("Stored user is malformed", "username", name, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrStoreCorrupt, err)
		}
	}
	return users, nil
}

// normalizeUser checks the shape of a decoded user and fills in missing
// slices. A missing username is taken from the map key.
func normalizeUser(name string, u *models.UserData) error {
	if u == nil {
		return fmt.Errorf("user %q is null", name)
	}
	if u.Username == "" {
		u.Username = name
	}
	if u.History == nil {
		u.History = []models.DayProgress{}
	}
	for i := range u.History {
		day := &u.History[i]
		if day.Date == "" || day.GradeLevel == "" {
			return fmt.Errorf("user %q has a history entry without date or grade", name)
		}
		if day.Attempts == nil {
			day.Attempts = []models.WordAttempt{}
		}
		for _, a := range day.Attempts {
			if a.Word == "" {
				return fmt.Errorf("user %q has an attempt without a word on %s", name, day.Date)
			}
		}
	}
	return nil
}
