package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/fardannozami/cybertrainer/internal/domain"
)

const (
	scoreboardFile = "scoreboard.json"
	lockRetryDelay = 25 * time.Millisecond
)

// ScoreboardRepository stores the shared scoreboard in one JSON file. Every
// read-modify-write holds an exclusive advisory lock on a sibling .lock file.
type ScoreboardRepository struct {
	path        string
	lockTimeout time.Duration
	logger      zerolog.Logger
}

func NewScoreboardRepository(dir string, lockTimeout time.Duration, logger zerolog.Logger) *ScoreboardRepository {
	return &ScoreboardRepository{
		path:        filepath.Join(dir, scoreboardFile),
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// Load returns an empty scoreboard when the file is missing or corrupt.
func (r *ScoreboardRepository) Load(ctx context.Context) (*domain.Scoreboard, error) {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return nil, fmt.Errorf("create scoreboard dir: %w", err)
	}

	fl, err := r.lock(ctx, true)
	if err != nil {
		return nil, err
	}
	defer fl.Unlock()

	sb, _, err := r.read()
	return sb, err
}

func (r *ScoreboardRepository) Update(ctx context.Context, fn func(sb *domain.Scoreboard) error) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create scoreboard dir: %w", err)
	}

	fl, err := r.lock(ctx, false)
	if err != nil {
		return err
	}
	defer fl.Unlock()

	sb, raw, err := r.read()
	if err != nil {
		return err
	}
	if raw != nil {
		backup := r.path + ".corrupt"
		if err := renameio.WriteFile(backup, raw, 0o644); err != nil {
			r.logger.Warn().Err(err).Str("file", backup).Msg("could not back up corrupt scoreboard")
		}
	}

	if err := fn(sb); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sb, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scoreboard: %w", err)
	}
	if err := renameio.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write scoreboard: %w", err)
	}
	return nil
}

func (r *ScoreboardRepository) lock(ctx context.Context, shared bool) (*flock.Flock, error) {
	ctx, cancel := context.WithTimeout(ctx, r.lockTimeout)
	defer cancel()

	fl := flock.New(r.path + ".lock")
	var (
		locked bool
		err    error
	)
	if shared {
		locked, err = fl.TryRLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = fl.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("lock scoreboard: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("lock scoreboard: timed out after %v", r.lockTimeout)
	}
	return fl, nil
}

// read decodes the scoreboard file. When the file is corrupt it returns an
// empty scoreboard plus the raw bytes so the caller can keep a copy.
func (r *ScoreboardRepository) read() (*domain.Scoreboard, []byte, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewScoreboard(), nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read scoreboard: %w", err)
	}

	var sb domain.Scoreboard
	if err := json.Unmarshal(data, &sb); err != nil {
		r.logger.Warn().Err(err).Str("file", r.path).Msg("scoreboard is corrupt, starting empty")
		return domain.NewScoreboard(), data, nil
	}
	if sb.Users == nil {
		sb.Users = map[string]*domain.ScoreboardEntry{}
	}
	for name, e := range sb.Users {
		if e == nil {
			delete(sb.Users, name)
		}
	}
	return &sb, nil, nil
}
