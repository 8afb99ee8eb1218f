package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBadWordsURL is the username filter list used unless BAD_WORDS_URL is set
const DefaultBadWordsURL = "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en"

// Config holds application configuration
type Config struct {
	ServerPort     string
	LogMode        string
	StorageBackend string

	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Location decides which calendar day an attempt belongs to.
	Location *time.Location

	SessionSecret   string
	SessionDuration time.Duration

	AudioPath   string
	WordListDir string
	// BadWordsURL is a newline-delimited word list used to reject usernames.
	// "off" disables the filter.
	BadWordsURL string
	AWSRegion   string
	GradesFile  string
	Grades      []Grade

	// RateLimit is the number of user-changing requests allowed per client
	// per minute. Zero disables limiting.
	RateLimit int

	BackupDir      string
	BackupInterval time.Duration
	BackupKeep     int
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      getEnv("PORT", "8080"),
		LogMode:         getEnv("LOG_MODE", "development"),
		StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", "sql")),
		DatabaseType:    getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./spellbee.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", ""),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisPrefix:     getEnv("REDIS_PREFIX", "spellbee:"),
		SessionSecret:   getEnv("SESSION_SECRET", ""),
		SessionDuration: 30 * 24 * time.Hour,
		AudioPath:       getEnv("AUDIO_PATH", "./static/audio"),
		WordListDir:     getEnv("WORDLIST_DIR", "./wordlists"),
		BadWordsURL:     getEnv("BAD_WORDS_URL", DefaultBadWordsURL),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		GradesFile:      getEnv("GRADES_FILE", ""),
		BackupDir:       getEnv("BACKUP_DIR", "./backups"),
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	if cfg.RateLimit, err = strconv.Atoi(getEnv("RATE_LIMIT", "60")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}
	if cfg.BackupKeep, err = strconv.Atoi(getEnv("BACKUP_KEEP", "14")); err != nil {
		return nil, fmt.Errorf("invalid BACKUP_KEEP: %w", err)
	}

	cfg.Location = time.Local
	if tz := getEnv("TZ_NAME", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ_NAME %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	if v := getEnv("SESSION_DURATION", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_DURATION: %w", err)
		}
		cfg.SessionDuration = d
	}

	if v := getEnv("BACKUP_INTERVAL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BACKUP_INTERVAL: %w", err)
		}
		cfg.BackupInterval = d
	}

	cfg.Grades = DefaultGrades()
	if cfg.GradesFile != "" {
		grades, err := LoadGrades(cfg.GradesFile)
		if err != nil {
			return nil, err
		}
		cfg.Grades = grades
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
