package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fardannozami/cybertrainer/internal/domain"
)

// ProfileUsecase manages profile lifecycle and tracks the active profile.
type ProfileUsecase struct {
	repo   domain.ProfileRepository
	logger zerolog.Logger
	now    func() time.Time
	active *domain.Profile
}

func NewProfileUsecase(repo domain.ProfileRepository, logger zerolog.Logger) *ProfileUsecase {
	return &ProfileUsecase{repo: repo, logger: logger, now: time.Now}
}

// SetClock replaces the time source used for streaks and timestamps.
func (uc *ProfileUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *ProfileUsecase) Now() time.Time {
	return uc.now()
}

func (uc *ProfileUsecase) Active() *domain.Profile {
	return uc.active
}

func (uc *ProfileUsecase) Exists(ctx context.Context, username string) (bool, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return false, err
	}
	return uc.repo.Exists(ctx, name)
}

// Create stores a fresh profile. It does not make it active.
func (uc *ProfileUsecase) Create(ctx context.Context, username string) (*domain.Profile, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	p := domain.NewProfile(name, uc.now())
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	uc.logger.Info().Str("username", name).Msg("profile created")
	return p, nil
}

// Get reads a profile without touching its streak or the active profile.
func (uc *ProfileUsecase) Get(ctx context.Context, username string) (*domain.Profile, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	return uc.repo.Get(ctx, name)
}

// Load reads a profile, applies the daily streak rules, persists the result
// and makes it the active profile.
func (uc *ProfileUsecase) Load(ctx context.Context, username string) (*domain.Profile, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	p, err := uc.repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p.Normalize()

	if p.TouchStreak(uc.now()) {
		uc.logger.Info().Str("username", name).Int("streak", p.CurrentStreak).Msg("streak updated")
	}
	if err := uc.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	uc.active = p
	return p, nil
}

// UpdateProgress merges value into the active profile and persists it.
func (uc *ProfileUsecase) UpdateProgress(ctx context.Context, module string, value domain.ProgressUpdate) error {
	if uc.active == nil {
		return fmt.Errorf("update progress: %w", domain.ErrNoActiveProfile)
	}
	uc.active.ApplyProgress(module, value)
	return uc.Save(ctx, uc.active)
}

func (uc *ProfileUsecase) Save(ctx context.Context, p *domain.Profile) error {
	if err := uc.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("save profile %q: %w", p.Username, err)
	}
	return nil
}

func (uc *ProfileUsecase) List(ctx context.Context) ([]string, error) {
	return uc.repo.List(ctx)
}
