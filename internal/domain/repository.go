package domain

import "context"

// ProfileRepository stores one profile per username.
// Get returns ErrNotFound for unknown users, Create returns ErrAlreadyExists.
type ProfileRepository interface {
	Exists(ctx context.Context, username string) (bool, error)
	Get(ctx context.Context, username string) (*Profile, error)
	Create(ctx context.Context, profile *Profile) error
	Save(ctx context.Context, profile *Profile) error
	List(ctx context.Context) ([]string, error)
}
