package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/fardannozami/cybertrainer/internal/app/badges"
	"github.com/fardannozami/cybertrainer/internal/domain"
)

// ScoreboardUsecase answers ranking queries and awards badges against the
// shared scoreboard's view of each user.
type ScoreboardUsecase struct {
	repo    domain.ScoreboardRepository
	catalog *badges.Catalog
	logger  zerolog.Logger
	now     func() time.Time
}

func NewScoreboardUsecase(repo domain.ScoreboardRepository, catalog *badges.Catalog, logger zerolog.Logger) *ScoreboardUsecase {
	return &ScoreboardUsecase{repo: repo, catalog: catalog, logger: logger, now: time.Now}
}

func (uc *ScoreboardUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// UpdateScore merges delta into the user's entry, creating it when absent,
// then appends any badges the merged stats now earn. last_activity is set to
// now unless delta carries it.
func (uc *ScoreboardUsecase) UpdateScore(ctx context.Context, username string, delta map[string]any) ([]domain.Badge, error) {
	var awarded []domain.Badge
	err := uc.repo.Update(ctx, func(sb *domain.Scoreboard) error {
		entry := sb.Entry(username)
		merged := make(map[string]any, len(delta)+1)
		for k, v := range delta {
			merged[k] = v
		}
		if _, ok := merged[domain.StatLastActivity]; !ok {
			merged[domain.StatLastActivity] = uc.now().UTC().Format(time.RFC3339)
		}
		entry.Merge(merged)
		awarded = uc.award(username, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return awarded, nil
}

// AwardBadges re-evaluates the catalog for an existing entry.
// Unknown users get nothing and no entry is created.
func (uc *ScoreboardUsecase) AwardBadges(ctx context.Context, username string) ([]domain.Badge, error) {
	var awarded []domain.Badge
	err := uc.repo.Update(ctx, func(sb *domain.Scoreboard) error {
		entry, ok := sb.Users[username]
		if !ok {
			return nil
		}
		awarded = uc.award(username, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return awarded, nil
}

func (uc *ScoreboardUsecase) award(username string, entry *domain.ScoreboardEntry) []domain.Badge {
	newly := uc.catalog.NewlyEarned(entry.Snapshot())
	for _, b := range newly {
		entry.AddBadges(b.ID)
		uc.logger.Debug().Str("username", username).Str("badge", b.ID).Msg("scoreboard badge recorded")
	}
	return newly
}

// GetLeaderboard returns entries by score descending. limit <= 0 means all.
func (uc *ScoreboardUsecase) GetLeaderboard(ctx context.Context, limit int) ([]domain.RankedEntry, error) {
	sb, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	ranked := sb.Ranked()
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// GetUserRank returns the 1-based position in the full leaderboard.
func (uc *ScoreboardUsecase) GetUserRank(ctx context.Context, username string) (int, bool, error) {
	ranked, err := uc.GetLeaderboard(ctx, 0)
	if err != nil {
		return 0, false, err
	}
	for _, r := range ranked {
		if r.Username == username {
			return r.Rank, true, nil
		}
	}
	return 0, false, nil
}

// GetRecentActivity lists users by last activity, newest first. Entries
// without a parsable timestamp are left out.
func (uc *ScoreboardUsecase) GetRecentActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	sb, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.Activity
	for name, e := range sb.Users {
		last, ok := e.LastActivity()
		if !ok {
			continue
		}
		out = append(out, domain.Activity{Username: name, Score: e.Score(), LastActivity: last})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastActivity.Equal(out[j].LastActivity) {
			return out[i].Username < out[j].Username
		}
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (uc *ScoreboardUsecase) GetUserStats(ctx context.Context, username string) (*domain.ScoreboardEntry, bool, error) {
	sb, err := uc.repo.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	e, ok := sb.Users[username]
	return e, ok, nil
}

// GetBadgeProgress reports every catalog badge against the user's entry.
func (uc *ScoreboardUsecase) GetBadgeProgress(ctx context.Context, username string) ([]domain.BadgeProgress, error) {
	e, ok, err := uc.GetUserStats(ctx, username)
	if err != nil {
		return nil, err
	}
	if !ok {
		e = domain.NewScoreboardEntry()
	}
	return uc.catalog.Report(e.Snapshot()), nil
}
