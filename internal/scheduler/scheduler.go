package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-co-op/gocron"

	"spellbee/internal/logger"
)

// backupPattern matches the files written by BackupService.ExportToDir
const backupPattern = "spellbee-*.json"

// Exporter writes a backup into dir and returns its path
type Exporter interface {
	ExportToDir(ctx context.Context, dir string) (string, error)
}

// Scheduler runs periodic backups of the user store
type Scheduler struct {
	scheduler *gocron.Scheduler
	exporter  Exporter
	dir       string
	keep      int
	log       *logger.Logger
}

// New creates a scheduler that keeps the newest keep backups in dir.
// keep <= 0 keeps everything.
func New(exporter Exporter, dir string, keep int, log *logger.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		exporter:  exporter,
		dir:       dir,
		keep:      keep,
		log:       log.With("component", "Scheduler"),
	}
}

// Start schedules the backup every interval, first run after one interval
func (s *Scheduler) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("backup interval must be positive, got %s", interval)
	}
	if _, err := s.scheduler.Every(interval).WaitForSchedule().Do(s.RunBackup); err != nil {
		return fmt.Errorf("failed to schedule backup: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info("Backup scheduler started", "interval", interval, "dir", s.dir, "keep", s.keep)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunBackup exports one backup and prunes old ones
func (s *Scheduler) RunBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	path, err := s.exporter.ExportToDir(ctx, s.dir)
	if err != nil {
		s.log.Error("Scheduled backup failed", "error", err)
		return
	}
	s.log.Info("Scheduled backup written", "path", path)

	removed, err := s.prune()
	if err != nil {
		s.log.Warn("Failed to prune old backups", "error", err)
		return
	}
	if removed > 0 {
		s.log.Info("Pruned old backups", "removed", removed)
	}
}

// prune deletes all but the newest keep backups. File names sort by time.
func (s *Scheduler) prune() (int, error) {
	if s.keep <= 0 {
		return 0, nil
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, backupPattern))
	if err != nil {
		return 0, err
	}
	if len(matches) <= s.keep {
		return 0, nil
	}
	sort.Strings(matches)

	removed := 0
	for _, path := range matches[:len(matches)-s.keep] {
		if err := os.Remove(path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
