package jsonfile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/fardannozami/cybertrainer/internal/domain"
)

const profileSuffix = ".profile.json"

// ProfileRepository keeps one JSON file per username under dir.
type ProfileRepository struct {
	dir    string
	logger zerolog.Logger
}

func NewProfileRepository(dir string, logger zerolog.Logger) *ProfileRepository {
	return &ProfileRepository{dir: dir, logger: logger}
}

// FileName maps a username to a safe file name. Names that need changes get
// a short hash suffix so distinct usernames never share a file.
func FileName(username string) string {
	var b strings.Builder
	changed := strings.HasPrefix(username, ".")
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
			changed = true
		}
	}
	name := b.String()
	if changed {
		sum := sha256.Sum256([]byte(username))
		name += "-" + hex.EncodeToString(sum[:])[:8]
	}
	return name + profileSuffix
}

func (r *ProfileRepository) path(username string) string {
	return filepath.Join(r.dir, FileName(username))
}

func (r *ProfileRepository) Exists(ctx context.Context, username string) (bool, error) {
	_, err := os.Stat(r.path(username))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat profile %q: %w", username, err)
}

func (r *ProfileRepository) Get(ctx context.Context, username string) (*domain.Profile, error) {
	data, err := os.ReadFile(r.path(username))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("profile %q: %w", username, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read profile %q: %w", username, err)
	}

	var p domain.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile %q: %w: %v", username, domain.ErrCorruptState, err)
	}
	if p.Username == "" {
		return nil, fmt.Errorf("decode profile %q: %w: missing username", username, domain.ErrCorruptState)
	}
	p.Normalize()
	return &p, nil
}

// Create fails with domain.ErrAlreadyExists when a file for the username is
// already present. The profile is written to a temp file first and then
// hard-linked into place, so the name only ever appears with full content.
func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create profiles dir: %w", err)
	}
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", profile.Username, err)
	}

	path := r.path(profile.Username)
	pf, err := renameio.TempFile(r.dir, path)
	if err != nil {
		return fmt.Errorf("create profile %q: %w", profile.Username, err)
	}
	defer pf.Cleanup()

	if _, err := pf.Write(data); err != nil {
		return fmt.Errorf("create profile %q: %w", profile.Username, err)
	}
	if err := pf.Chmod(0o644); err != nil {
		return fmt.Errorf("create profile %q: %w", profile.Username, err)
	}
	if err := pf.Sync(); err != nil {
		return fmt.Errorf("create profile %q: %w", profile.Username, err)
	}

	err = os.Link(pf.Name(), path)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("profile %q: %w", profile.Username, domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("create profile %q: %w", profile.Username, err)
	}
	return nil
}

// Save atomically replaces the stored profile.
func (r *ProfileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create profiles dir: %w", err)
	}
	return r.write(r.path(profile.Username), profile)
}

func (r *ProfileRepository) write(path string, profile *domain.Profile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", profile.Username, err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write profile %q: %w", profile.Username, err)
	}
	return nil
}

// List returns stored usernames in ascending order. Unreadable files are
// skipped.
func (r *ProfileRepository) List(ctx context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.dir, "*"+profileSuffix))
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			r.logger.Warn().Err(err).Str("file", m).Msg("skipping unreadable profile")
			continue
		}
		var head struct {
			Username string `json:"username"`
		}
		if err := json.Unmarshal(data, &head); err != nil || head.Username == "" {
			r.logger.Warn().Str("file", m).Msg("skipping undecodable profile")
			continue
		}
		names = append(names, head.Username)
	}
	sort.Strings(names)
	return names, nil
}
