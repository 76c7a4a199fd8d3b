package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fardannozami/cybertrainer/internal/domain"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Exists(ctx context.Context, username string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM profiles WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check profile %q: %w", username, err)
	}
	return n > 0, nil
}

func (r *ProfileRepository) Get(ctx context.Context, username string) (*domain.Profile, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE username = ?`, username).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile %q: %w", username, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %q: %w", username, err)
	}

	var p domain.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode profile %q: %w: %v", username, domain.ErrCorruptState, err)
	}
	if p.Username == "" {
		p.Username = username
	}
	p.Normalize()
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", profile.Username, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create profile %q: %w", profile.Username, err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM profiles WHERE username = ?`, profile.Username).Scan(&n); err != nil {
		return fmt.Errorf("create profile %q: %w", profile.Username, err)
	}
	if n > 0 {
		return fmt.Errorf("profile %q: %w", profile.Username, domain.ErrAlreadyExists)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (username, data, updated_at) VALUES (?, ?, ?)`,
		profile.Username, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create profile %q: %w", profile.Username, err)
	}
	return tx.Commit()
}

func (r *ProfileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile %q: %w", profile.Username, err)
	}

	query := `
		INSERT INTO profiles (username, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query, profile.Username, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save profile %q: %w", profile.Username, err)
	}
	return nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username FROM profiles ORDER BY username ASC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list profiles: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return names, nil
}

func (r *ProfileRepository) InitTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS profiles (
			username TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TEXT
		);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}
