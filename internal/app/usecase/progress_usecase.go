package usecase

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fardannozami/cybertrainer/internal/app/badges"
	"github.com/fardannozami/cybertrainer/internal/domain"
)

// DefaultChallengePoints is awarded when a challenge result carries no points.
const DefaultChallengePoints = 10

type ChallengeResult struct {
	Module      string
	ChallengeID string
	// Points nil awards DefaultChallengePoints. Zero is a valid reward.
	Points  *int
	Perfect bool
}

// ProgressOutcome describes what a progress event changed.
type ProgressOutcome struct {
	// Recorded is false when the event was a repeat and nothing changed.
	Recorded    bool
	PointsAdded int
	NewBadges   []domain.Badge
	Streak      int
}

// ProgressUsecase is the single entry point training modules report into.
// Every mutation updates the active profile, its streak and badges, pushes
// the stat delta to the scoreboard and persists the profile.
type ProgressUsecase struct {
	profiles *ProfileUsecase
	scores   *ScoreboardUsecase
	catalog  *badges.Catalog
	modules  []domain.TrackedModule
	logger   zerolog.Logger
}

func NewProgressUsecase(profiles *ProfileUsecase, scores *ScoreboardUsecase, catalog *badges.Catalog, modules []domain.TrackedModule, logger zerolog.Logger) *ProgressUsecase {
	return &ProgressUsecase{
		profiles: profiles,
		scores:   scores,
		catalog:  catalog,
		modules:  modules,
		logger:   logger,
	}
}

func (uc *ProgressUsecase) Modules() []domain.TrackedModule {
	return uc.modules
}

func (uc *ProgressUsecase) ActiveUsername() string {
	if p := uc.profiles.Active(); p != nil {
		return p.Username
	}
	return ""
}

// CreateProfile creates username and logs in as it.
func (uc *ProgressUsecase) CreateProfile(ctx context.Context, username string) (*domain.Profile, ProgressOutcome, error) {
	if _, err := uc.profiles.Create(ctx, username); err != nil {
		return nil, ProgressOutcome{}, err
	}
	return uc.Login(ctx, username)
}

// Login loads username as the active profile and syncs the streak change and
// any badges it unlocks to the scoreboard. A user missing from the scoreboard
// gets its full stats pushed.
func (uc *ProgressUsecase) Login(ctx context.Context, username string) (*domain.Profile, ProgressOutcome, error) {
	before, err := uc.profiles.Get(ctx, username)
	if err != nil {
		return nil, ProgressOutcome{}, fmt.Errorf("login: %w", err)
	}
	p, err := uc.profiles.Load(ctx, username)
	if err != nil {
		return nil, ProgressOutcome{}, fmt.Errorf("login: %w", err)
	}

	baseline := before.Snapshot(uc.modules)
	if _, ok, err := uc.scores.GetUserStats(ctx, p.Username); err == nil && !ok {
		baseline = domain.Snapshot{}
	}

	out, err := uc.finish(ctx, baseline, before.TotalScore, p)
	if err != nil {
		return nil, ProgressOutcome{}, fmt.Errorf("login: %w", err)
	}
	out.Recorded = true
	return p, out, nil
}

func (uc *ProgressUsecase) ReportModuleProgress(ctx context.Context, module string, value int) (ProgressOutcome, error) {
	module = strings.TrimSpace(module)
	if module == "" || value < 0 {
		return ProgressOutcome{}, fmt.Errorf("report module progress: %w: module %q value %d", domain.ErrInvalidArgument, module, value)
	}
	return uc.mutate(ctx, "report module progress", func(p *domain.Profile, _ time.Time) bool {
		p.ApplyProgress(module, domain.CounterValue(value))
		return true
	})
}

// ReportChallengeComplete records a challenge once per (module, challengeID).
func (uc *ProgressUsecase) ReportChallengeComplete(ctx context.Context, module, challengeID string, points int) (ProgressOutcome, error) {
	return uc.ReportChallengeResult(ctx, ChallengeResult{Module: module, ChallengeID: challengeID, Points: &points})
}

func (uc *ProgressUsecase) ReportChallengeResult(ctx context.Context, r ChallengeResult) (ProgressOutcome, error) {
	module, id := strings.TrimSpace(r.Module), strings.TrimSpace(r.ChallengeID)
	if module == "" || id == "" {
		return ProgressOutcome{}, fmt.Errorf("report challenge: %w: module and challenge id are required", domain.ErrInvalidArgument)
	}
	points := DefaultChallengePoints
	if r.Points != nil {
		points = *r.Points
	}
	if points < 0 {
		return ProgressOutcome{}, fmt.Errorf("report challenge: %w: negative points %d", domain.ErrInvalidArgument, points)
	}

	key := domain.ChallengeKey(module, id)
	return uc.mutate(ctx, "report challenge", func(p *domain.Profile, now time.Time) bool {
		if p.HasChallenge(key) {
			return false
		}
		p.ApplyProgress(module, domain.ChallengeSet{key})
		p.Progress.ChallengeCount++
		if r.Perfect {
			p.Progress.PerfectScores++
		}
		p.TotalScore += points
		p.RecordChallengeModule(module, uc.modules)
		p.Achievements.RecordActivityTime(now)
		return true
	})
}

func (uc *ProgressUsecase) ReportLessonComplete(ctx context.Context, lessonID string, score int) (ProgressOutcome, error) {
	lessonID = strings.TrimSpace(lessonID)
	if lessonID == "" {
		return ProgressOutcome{}, fmt.Errorf("report lesson: %w: lesson id is required", domain.ErrInvalidArgument)
	}
	return uc.mutate(ctx, "report lesson", func(p *domain.Profile, now time.Time) bool {
		p.ApplyProgress("", domain.LessonResults{lessonID: {CompletedAt: now, Score: score}})
		return true
	})
}

func (uc *ProgressUsecase) mutate(ctx context.Context, op string, fn func(p *domain.Profile, now time.Time) bool) (ProgressOutcome, error) {
	p := uc.profiles.Active()
	if p == nil {
		return ProgressOutcome{}, fmt.Errorf("%s: %w", op, domain.ErrNoActiveProfile)
	}

	now := uc.profiles.Now()
	before := p.Clone()
	if !fn(p, now) {
		return ProgressOutcome{Streak: p.CurrentStreak}, nil
	}
	p.TouchStreak(now)

	out, err := uc.finish(ctx, before.Snapshot(uc.modules), before.TotalScore, p)
	if err != nil {
		// The event was not persisted; a retry must see the old profile.
		*p = *before
		return ProgressOutcome{Streak: p.CurrentStreak}, fmt.Errorf("%s: %w", op, err)
	}
	out.Recorded = true
	return out, nil
}

// finish awards badges, persists p and then syncs the scoreboard, so the
// scoreboard never counts an event the profile does not hold. A scoreboard
// failure is logged and does not fail the event.
func (uc *ProgressUsecase) finish(ctx context.Context, baseline domain.Snapshot, scoreBefore int, p *domain.Profile) (ProgressOutcome, error) {
	out := ProgressOutcome{NewBadges: uc.awardBadges(p)}
	out.PointsAdded = p.TotalScore - scoreBefore
	out.Streak = p.CurrentStreak

	if err := uc.profiles.Save(ctx, p); err != nil {
		return out, err
	}

	delta := statDelta(baseline, p.Snapshot(uc.modules))
	delta[domain.StatLastActivity] = uc.profiles.Now().UTC().Format(time.RFC3339)
	if _, err := uc.scores.UpdateScore(ctx, p.Username, delta); err != nil {
		uc.logger.Warn().Err(err).Str("username", p.Username).Msg("scoreboard sync failed")
	}
	return out, nil
}

// awardBadges adds every newly earned badge and its points to p, repeating
// until a pass earns nothing new since points can unlock further badges.
func (uc *ProgressUsecase) awardBadges(p *domain.Profile) []domain.Badge {
	var awarded []domain.Badge
	for {
		newly := uc.catalog.NewlyEarned(p.Snapshot(uc.modules))
		if len(newly) == 0 {
			return awarded
		}
		for _, b := range newly {
			if !p.AddBadge(b.ID) {
				continue
			}
			p.TotalScore += b.Points
			awarded = append(awarded, b)
			uc.logger.Info().Str("username", p.Username).Str("badge", b.ID).Int("points", b.Points).Msg("badge awarded")
		}
	}
}

// statDelta turns two snapshots into a scoreboard delta: numeric stats as
// differences, anything else as the new value when it changed.
func statDelta(before, after domain.Snapshot) map[string]any {
	delta := map[string]any{}
	for k, v := range after {
		if k == domain.StatBadgesEarned {
			continue
		}
		old, had := before[k]
		if n, ok := domain.AsNumber(v); ok {
			o, _ := domain.AsNumber(old)
			if d := n - o; d != 0 || !had {
				delta[k] = d
			}
			continue
		}
		if !had || !reflect.DeepEqual(old, v) {
			delta[k] = v
		}
	}
	return delta
}

// GetEarnedBadges returns nothing when no profile is active.
func (uc *ProgressUsecase) GetEarnedBadges() []domain.Badge {
	p := uc.profiles.Active()
	if p == nil {
		return nil
	}
	return uc.catalog.Earned(p.Snapshot(uc.modules))
}

func (uc *ProgressUsecase) GetPotentialBadges() []domain.PotentialBadge {
	p := uc.profiles.Active()
	if p == nil {
		return nil
	}
	return uc.catalog.Potential(p.Snapshot(uc.modules))
}

func (uc *ProgressUsecase) GetLeaderboard(ctx context.Context, limit int) ([]domain.RankedEntry, error) {
	return uc.scores.GetLeaderboard(ctx, limit)
}

// GetProfileSummary returns the zero summary when no profile is active.
func (uc *ProgressUsecase) GetProfileSummary() domain.ProgressSummary {
	p := uc.profiles.Active()
	if p == nil {
		return domain.ProgressSummary{}
	}
	return p.Summarize(uc.modules)
}

func (uc *ProgressUsecase) ListProfiles(ctx context.Context) ([]string, error) {
	return uc.profiles.List(ctx)
}

func (uc *ProgressUsecase) GetUserRank(ctx context.Context) (int, bool, error) {
	p := uc.profiles.Active()
	if p == nil {
		return 0, false, nil
	}
	return uc.scores.GetUserRank(ctx, p.Username)
}

func (uc *ProgressUsecase) GetRecentActivity(ctx context.Context, limit int) ([]domain.Activity, error) {
	return uc.scores.GetRecentActivity(ctx, limit)
}
