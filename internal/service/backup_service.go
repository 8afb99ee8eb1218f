package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"spellbee/internal/logger"
	"spellbee/internal/models"
	"spellbee/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete store backup structure
type BackupData struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	CurrentUser string             `json:"current_user,omitempty"`
	Users       []*models.UserData `json:"users"`
	Extras      map[string]string  `json:"extras,omitempty"`
}

// ImportResult summarizes an import
type ImportResult struct {
	Users    int
	Replaced bool
}

// BackupService handles export and restore of the user store
type BackupService struct {
	store *UserStore
	users *UserService
	log   *logger.Logger
	now   func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(store *UserStore, users *UserService, log *logger.Logger) *BackupService {
	return &BackupService{
		store: store,
		users: users,
		log:   log.With("service", "BackupService"),
		now:   time.Now,
	}
}

// isExtraKey reports whether key is an auxiliary store key carried in backups
func isExtraKey(key string) bool {
	return strings.HasPrefix(key, KeyPrefix) && key != UsersKey && key != CurrentUserKey
}

// Snapshot collects every user, sorted by username, the current-user pointer
// and the other spellbee_ keys such as the cached username filter.
func (s *BackupService) Snapshot(ctx context.Context) (*BackupData, error) {
	all, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	current, _, err := s.users.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	backup := &BackupData{
		Version:     BackupVersion,
		ExportedAt:  s.now().UTC(),
		CurrentUser: current,
		Users:       make([]*models.UserData, 0, len(all)),
	}
	for _, u := range all {
		backup.Users = append(backup.Users, u)
	}
	sort.Slice(backup.Users, func(i, j int) bool {
		return backup.Users[i].Username < backup.Users[j].Username
	})

	kv := s.store.KV()
	keys, err := kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	for _, key := range keys {
		if !isExtraKey(key) {
			continue
		}
		value, err := kv.Get(ctx, key)
		if errors.Is(err, repository.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		if backup.Extras == nil {
			backup.Extras = make(map[string]string)
		}
		backup.Extras[key] = value
	}
	return backup, nil
}

// WriteTo encodes a snapshot to w
func (s *BackupService) WriteTo(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// Export writes a complete backup to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	s.log.Info("Starting export", "path", outputPath)

	// a failed export leaves any existing file at outputPath untouched
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".spellbee-backup-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	backup, err := s.WriteTo(ctx, tmp)
	if err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return fmt.Errorf("failed to move backup into place: %w", err)
	}

	s.log.Info("Export complete", "path", outputPath, "users", len(backup.Users))
	return nil
}

// ExportToDir writes a timestamped backup into dir and returns its path
func (s *BackupService) ExportToDir(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	name := fmt.Sprintf("spellbee-%s-%s.json", s.now().UTC().Format("20060102-150405"), uuid.New().String()[:8])
	path := filepath.Join(dir, name)
	if err := s.Export(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}

// Import restores users from a backup file. With replace the stored users are
// discarded first; otherwise users in the file overwrite same-named users and
// the rest are kept.
func (s *BackupService) Import(ctx context.Context, inputPath string, replace bool) (*ImportResult, error) {
	s.log.Info("Starting import", "path", inputPath, "replace", replace)

	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ReadFrom(ctx, file, replace)
}

// ReadFrom restores users from an encoded backup
func (s *BackupService) ReadFrom(ctx context.Context, r io.Reader, replace bool) (*ImportResult, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	incoming := make(map[string]*models.UserData, len(backup.Users))
	for _, u := range backup.Users {
		if u == nil || u.Username == "" {
			return nil, fmt.Errorf("backup contains a user without a username")
		}
		if err := normalizeUser(u.Username, u); err != nil {
			return nil, fmt.Errorf("invalid backup: %w", err)
		}
		for i := range u.History {
			day := &u.History[i]
			if !day.Consistent() {
				s.log.Warn("Repairing inconsistent day counters in backup",
					"username", u.Username, "date", day.Date, "grade", day.GradeLevel)
				day.Recount()
			}
		}
		incoming[u.Username] = u
	}
	for key := range backup.Extras {
		if !isExtraKey(key) {
			return nil, fmt.Errorf("invalid backup: unexpected key %q", key)
		}
	}

	var err error
	if replace {
		err = s.store.Replace(ctx, incoming)
	} else {
		err = s.store.Update(ctx, func(users map[string]*models.UserData) error {
			for name, u := range incoming {
				users[name] = u
			}
			return nil
		})
	}
	if err != nil {
		return nil, err
	}

	for key, value := range backup.Extras {
		if err := s.store.KV().Set(ctx, key, value); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}

	if replace {
		if backup.CurrentUser != "" {
			err = s.users.SetCurrentUser(ctx, backup.CurrentUser)
		} else {
			err = s.users.ClearCurrentUser(ctx)
		}
		if err != nil {
			return nil, err
		}
	}

	s.log.Info("Import complete", "users", len(incoming), "replace", replace)
	return &ImportResult{Users: len(incoming), Replaced: replace}, nil
}
