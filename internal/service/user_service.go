package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"spellbee/internal/credentials"
	"spellbee/internal/logger"
	"spellbee/internal/models"
	"spellbee/internal/repository"
	"spellbee/internal/validation"
)

// BadWordsKey caches the downloaded username filter list
const BadWordsKey = "spellbee_bad_words"

// UserService manages the user registry and the current-user pointer
type UserService struct {
	store  *UserStore
	kv     repository.KVStore
	log    *logger.Logger
	filter *validation.WordFilter
}

// NewUserService creates a new user service
func NewUserService(store *UserStore, log *logger.Logger) *UserService {
	return &UserService{
		store: store,
		kv:    store.KV(),
		log:   log.With("service", "UserService"),
	}
}

// ListUsers returns all usernames, sorted
func (s *UserService) ListUsers(ctx context.Context) ([]string, error) {
	users, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateUser returns the existing user or creates an empty one
func (s *UserService) CreateUser(ctx context.Context, username string) (*models.UserData, error) {
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUsername, err)
	}
	if s.filter.Contains(username) {
		return nil, fmt.Errorf("%w: username is not allowed", ErrInvalidUsername)
	}

	var result *models.UserData
	created := false
	err := s.store.Update(ctx, func(users map[string]*models.UserData) error {
		if existing, ok := users[username]; ok {
			result = existing
			return nil
		}
		result = models.NewUserData(username)
		users[username] = result
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("Created user", "username", username)
	}
	return result, nil
}

// DeleteUser removes the user and all history. The current-user pointer is
// cleared when it names the deleted user.
func (s *UserService) DeleteUser(ctx context.Context, username string) (bool, error) {
	found := false
	err := s.store.Update(ctx, func(users map[string]*models.UserData) error {
		if _, ok := users[username]; !ok {
			return nil
		}
		delete(users, username)
		found = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	current, ok, err := s.GetCurrentUser(ctx)
	if err != nil {
		return true, err
	}
	if ok && current == username {
		if err := s.ClearCurrentUser(ctx); err != nil {
			return true, err
		}
	}

	s.log.Info("Deleted user", "username", username)
	return true, nil
}

// GetCurrentUser returns the selected username, if any
func (s *UserService) GetCurrentUser(ctx context.Context) (string, bool, error) {
	name, err := s.kv.Get(ctx, CurrentUserKey)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if name == "" {
		return "", false, nil
	}
	return name, true, nil
}

// SetCurrentUser records username as the selected user. The user does not have to exist.
func (s *UserService) SetCurrentUser(ctx context.Context, username string) error {
	if err := s.kv.Set(ctx, CurrentUserKey, username); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// ClearCurrentUser removes the selected user
func (s *UserService) ClearCurrentUser(ctx context.Context) error {
	if err := s.kv.Delete(ctx, CurrentUserKey); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// SuggestUsername returns a generated name not used by any existing user
func (s *UserService) SuggestUsername(ctx context.Context) (string, error) {
	users, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	return credentials.GenerateAvailableUsername(func(name string) bool {
		_, taken := users[name]
		return taken
	}, 10)
}

// LoadWordFilter installs the username filter. The list is read from the
// key-value store; when absent it is downloaded from url and cached there.
// An empty url with nothing cached leaves filtering disabled.
func (s *UserService) LoadWordFilter(ctx context.Context, client *http.Client, url string) error {
	raw, err := s.kv.Get(ctx, BadWordsKey)
	if err != nil && !errors.Is(err, repository.ErrKeyNotFound) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if errors.Is(err, repository.ErrKeyNotFound) {
		if url == "" {
			return nil
		}
		s.log.Info("Downloading username filter list", "url", url)
		raw, err = downloadWordList(ctx, client, url)
		if err != nil {
			return err
		}
		if err := s.kv.Set(ctx, BadWordsKey, raw); err != nil {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}

	filter, err := validation.ParseWordFilter(strings.NewReader(raw))
	if err != nil {
		return fmt.Errorf("error reading username filter: %w", err)
	}
	s.filter = filter
	s.log.Info("Username filter loaded", "words", filter.Len())
	return nil
}

func downloadWordList(ctx context.Context, client *http.Client, url string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download username filter list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status code from username filter URL: %d", resp.StatusCode)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, resp.Body); err != nil {
		return "", fmt.Errorf("error reading username filter list: %w", err)
	}
	return b.String(), nil
}
