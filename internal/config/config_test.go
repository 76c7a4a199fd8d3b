package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PROFILES_DIR", "STORAGE_BACKEND", "SQLITE_PATH", "LEADERBOARD_LIMIT", "LOCK_TIMEOUT_MS", "LOG_LEVEL", "NO_COLOR"} {
		t.Setenv(k, "")
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg := Load()

	if cfg.ProfilesDir != ".profiles" {
		t.Errorf("expected ProfilesDir=.profiles, got %q", cfg.ProfilesDir)
	}
	if cfg.StorageBackend != BackendJSON {
		t.Errorf("expected json backend, got %q", cfg.StorageBackend)
	}
	if cfg.SQLitePath != filepath.Join(".profiles", "trainer.db") {
		t.Errorf("unexpected SQLitePath %q", cfg.SQLitePath)
	}
	if cfg.LeaderboardLimit != 10 {
		t.Errorf("expected LeaderboardLimit=10, got %d", cfg.LeaderboardLimit)
	}
	if cfg.LockTimeout != 5*time.Second {
		t.Errorf("expected LockTimeout=5s, got %v", cfg.LockTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel=info, got %q", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("PROFILES_DIR", "/tmp/trainer")
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("LEADERBOARD_LIMIT", "25")
	t.Setenv("LOCK_TIMEOUT_MS", "250")
	t.Setenv("NO_COLOR", "true")

	cfg := Load()

	if cfg.StorageBackend != BackendSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.StorageBackend)
	}
	if cfg.SQLitePath != filepath.Join("/tmp/trainer", "trainer.db") {
		t.Errorf("expected SQLitePath under PROFILES_DIR, got %q", cfg.SQLitePath)
	}
	if cfg.LeaderboardLimit != 25 {
		t.Errorf("expected LeaderboardLimit=25, got %d", cfg.LeaderboardLimit)
	}
	if cfg.LockTimeout != 250*time.Millisecond {
		t.Errorf("expected LockTimeout=250ms, got %v", cfg.LockTimeout)
	}
	if !cfg.NoColor {
		t.Error("expected NoColor=true")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("LEADERBOARD_LIMIT", "lots")
	t.Setenv("LOCK_TIMEOUT_MS", "-5")

	cfg := Load()

	if cfg.StorageBackend != BackendJSON {
		t.Errorf("expected fallback to json, got %q", cfg.StorageBackend)
	}
	if cfg.LeaderboardLimit != 10 {
		t.Errorf("expected fallback LeaderboardLimit=10, got %d", cfg.LeaderboardLimit)
	}
	if cfg.LockTimeout != 5*time.Second {
		t.Errorf("expected fallback LockTimeout=5s, got %v", cfg.LockTimeout)
	}
}
