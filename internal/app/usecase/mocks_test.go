package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/fardannozami/cybertrainer/internal/app/badges"
	"github.com/fardannozami/cybertrainer/internal/app/usecase"
	"github.com/fardannozami/cybertrainer/internal/domain"
)

// mockProfileRepo implements domain.ProfileRepository in memory. It stores
// clones so tests see only what was explicitly saved.
type mockProfileRepo struct {
	profiles  map[string]*domain.Profile
	saves     int
	failSaves int
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func (m *mockProfileRepo) Exists(ctx context.Context, username string) (bool, error) {
	_, ok := m.profiles[username]
	return ok, nil
}

func (m *mockProfileRepo) Get(ctx context.Context, username string) (*domain.Profile, error) {
	p, ok := m.profiles[username]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", username, domain.ErrNotFound)
	}
	return p.Clone(), nil
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	if _, ok := m.profiles[profile.Username]; ok {
		return fmt.Errorf("profile %q: %w", profile.Username, domain.ErrAlreadyExists)
	}
	m.profiles[profile.Username] = profile.Clone()
	return nil
}

func (m *mockProfileRepo) Save(ctx context.Context, profile *domain.Profile) error {
	if m.failSaves > 0 {
		m.failSaves--
		return errors.New("disk full")
	}
	m.saves++
	m.profiles[profile.Username] = profile.Clone()
	return nil
}

func (m *mockProfileRepo) List(ctx context.Context) ([]string, error) {
	var names []string
	for name := range m.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// mockScoreboardRepo implements domain.ScoreboardRepository in memory.
type mockScoreboardRepo struct {
	sb      *domain.Scoreboard
	updates int
	err     error
}

func newMockScoreboardRepo() *mockScoreboardRepo {
	return &mockScoreboardRepo{sb: domain.NewScoreboard()}
}

func (m *mockScoreboardRepo) Load(ctx context.Context) (*domain.Scoreboard, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sb, nil
}

func (m *mockScoreboardRepo) Update(ctx context.Context, fn func(sb *domain.Scoreboard) error) error {
	if m.err != nil {
		return m.err
	}
	m.updates++
	return fn(m.sb)
}

// fixedClock is Wednesday 2026-03-11 14:30 UTC: no special achievements.
func fixedClock() time.Time {
	return time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)
}

type testEnv struct {
	profiles   *mockProfileRepo
	scores     *mockScoreboardRepo
	profileUC  *usecase.ProfileUsecase
	scoreUC    *usecase.ScoreboardUsecase
	progressUC *usecase.ProgressUsecase
	now        time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		profiles: newMockProfileRepo(),
		scores:   newMockScoreboardRepo(),
		now:      fixedClock(),
	}
	clock := func() time.Time { return env.now }
	catalog := badges.Default()

	env.profileUC = usecase.NewProfileUsecase(env.profiles, zerolog.Nop())
	env.profileUC.SetClock(clock)
	env.scoreUC = usecase.NewScoreboardUsecase(env.scores, catalog, zerolog.Nop())
	env.scoreUC.SetClock(clock)
	env.progressUC = usecase.NewProgressUsecase(env.profileUC, env.scoreUC, catalog, domain.DefaultModules(), zerolog.Nop())
	return env
}

func hasBadgeID(list []domain.Badge, id string) bool {
	for _, b := range list {
		if b.ID == id {
			return true
		}
	}
	return false
}
