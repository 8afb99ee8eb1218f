package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"spellbee/internal/audio"
	"spellbee/internal/config"
	"spellbee/internal/handlers"
	"spellbee/internal/logger"
	"spellbee/internal/repository"
	"spellbee/internal/scheduler"
	"spellbee/internal/security"
	"spellbee/internal/service"
	"spellbee/internal/wordlist"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	log := zapLog
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := repository.OpenKV(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", "backend", cfg.StorageBackend, "error", err)
	}
	defer func() {
		if err := closeKV(); err != nil {
			log.Warn("Failed to close storage", "error", err)
		}
	}()

	// Services
	store := service.NewUserStore(kv, log)
	progressService := service.NewProgressService(store, cfg.Location, log)
	userService := service.NewUserService(store, log)
	backupService := service.NewBackupService(store, userService, log)

	filterURL := cfg.BadWordsURL
	if filterURL == "off" {
		filterURL = ""
	}
	if err := userService.LoadWordFilter(ctx, nil, filterURL); err != nil {
		log.Warn("Username filter disabled", "error", err)
	}

	// Word lists
	var s3Source wordlist.Source
	if wordlist.NeedsS3(cfg.Grades) {
		src, err := wordlist.NewS3Source(ctx, cfg.AWSRegion)
		if err != nil {
			log.Fatal("Failed to configure S3 word source", "error", err)
		}
		s3Source = src
	}
	catalog := wordlist.NewCatalog(cfg.Grades, cfg.WordListDir, wordlist.NewHTTPSource(nil), s3Source, log)

	// Sessions
	secret := cfg.SessionSecret
	if secret == "" {
		if secret, err = security.GenerateSecret(); err != nil {
			log.Fatal("Failed to generate session secret", "error", err)
		}
		log.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}
	sessions, err := security.NewSessionManager(secret, cfg.SessionDuration)
	if err != nil {
		log.Fatal("Invalid session configuration", "error", err)
	}

	var limiter *security.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = security.NewRateLimiter(cfg.RateLimit, time.Minute)
		defer limiter.Stop()
	}

	players := audio.NewPlayers(audio.NewTTSService(cfg.AudioPath))
	totals := cfg.GradeTotals()

	h := &handlers.Handlers{
		Middleware: handlers.NewMiddleware(sessions, limiter, log),
		Users:      handlers.NewUserHandler(userService, progressService, sessions, players, log),
		Practice:   handlers.NewPracticeHandler(catalog, progressService, totals, log),
		Progress:   handlers.NewProgressHandler(progressService, totals, log),
		Audio:      handlers.NewAudioHandler(players, log),
		Log:        log,
	}

	if cfg.BackupInterval > 0 {
		backups := scheduler.New(backupService, cfg.BackupDir, cfg.BackupKeep, log)
		if err := backups.Start(cfg.BackupInterval); err != nil {
			log.Fatal("Failed to start backup scheduler", "error", err)
		}
		defer backups.Stop()
	}

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", addr, "storage", cfg.StorageBackend, "timezone", cfg.Location.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}
