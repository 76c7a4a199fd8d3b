package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fardannozami/cybertrainer/internal/domain"
)

// ScoreboardRepository stores one row per user. Update runs inside a single
// transaction, so open the database with _txlock=immediate to serialise
// writers across processes.
type ScoreboardRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewScoreboardRepository(db *sql.DB, logger zerolog.Logger) *ScoreboardRepository {
	return &ScoreboardRepository{db: db, logger: logger}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *ScoreboardRepository) Load(ctx context.Context) (*domain.Scoreboard, error) {
	return r.load(ctx, r.db)
}

func (r *ScoreboardRepository) Update(ctx context.Context, fn func(sb *domain.Scoreboard) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin scoreboard update: %w", err)
	}
	defer tx.Rollback()

	sb, err := r.load(ctx, tx)
	if err != nil {
		return err
	}
	if err := fn(sb); err != nil {
		return err
	}

	query := `
		INSERT INTO scoreboard (username, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	for name, entry := range sb.Users {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode scoreboard entry %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, query, name, string(data), now); err != nil {
			return fmt.Errorf("save scoreboard entry %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// load skips rows that fail to decode so one bad entry cannot hide the rest.
func (r *ScoreboardRepository) load(ctx context.Context, q queryer) (*domain.Scoreboard, error) {
	rows, err := q.QueryContext(ctx, `SELECT username, data FROM scoreboard`)
	if err != nil {
		return nil, fmt.Errorf("load scoreboard: %w", err)
	}
	defer rows.Close()

	sb := domain.NewScoreboard()
	for rows.Next() {
		var name, data string
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("load scoreboard: %w", err)
		}
		var entry domain.ScoreboardEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			r.logger.Warn().Err(err).Str("username", name).Msg("skipping corrupt scoreboard row")
			continue
		}
		sb.Users[name] = &entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load scoreboard: %w", err)
	}
	return sb, nil
}

func (r *ScoreboardRepository) InitTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS scoreboard (
			username TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TEXT
		);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}
