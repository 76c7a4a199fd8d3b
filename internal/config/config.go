package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

type Config struct {
	ProfilesDir      string
	StorageBackend   string // json or sqlite
	SQLitePath       string
	LeaderboardLimit int
	LockTimeout      time.Duration
	LogLevel         string
	NoColor          bool
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults/environment variables")
	}

	profilesDir := getenv("PROFILES_DIR", ".profiles")
	backend := strings.ToLower(getenv("STORAGE_BACKEND", BackendJSON))
	if backend != BackendSQLite {
		backend = BackendJSON
	}
	sqlitePath := getenv("SQLITE_PATH", filepath.Join(profilesDir, "trainer.db"))
	limit := getenvInt("LEADERBOARD_LIMIT", 10)
	if limit < 0 {
		limit = 0
	}
	lockTimeoutMs := getenvInt("LOCK_TIMEOUT_MS", 5000)
	if lockTimeoutMs <= 0 {
		lockTimeoutMs = 5000
	}

	return Config{
		ProfilesDir:      profilesDir,
		StorageBackend:   backend,
		SQLitePath:       sqlitePath,
		LeaderboardLimit: limit,
		LockTimeout:      time.Duration(lockTimeoutMs) * time.Millisecond,
		LogLevel:         getenv("LOG_LEVEL", "info"),
		NoColor:          getenvBool("NO_COLOR", os.Getenv("NO_COLOR") != ""),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
