package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fardannozami/cybertrainer/internal/app/usecase"
	"github.com/fardannozami/cybertrainer/internal/domain"
)

type stubLeaderboard struct {
	entries []domain.RankedEntry
	err     error
}

func (s *stubLeaderboard) GetLeaderboard(ctx context.Context, limit int) ([]domain.RankedEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && len(s.entries) > limit {
		return s.entries[:limit], nil
	}
	return s.entries, nil
}

// =============================================================================
// LEADERBOARD RENDERING TESTS
// =============================================================================
//
// Streak Status Logic:
// - Active (🔥): last activity today or yesterday
// - Lapsed (💔): last activity 2+ days ago, or never
//
// =============================================================================

func TestLeaderboard_ActiveAndLapsed(t *testing.T) {
	now := fixedClock()
	src := &stubLeaderboard{entries: []domain.RankedEntry{
		{Rank: 1, Username: "active_today", Score: 1200, CurrentStreak: 5, Challenges: 9, BadgeCount: 4, LastActivity: now.Add(-2 * time.Hour)},
		{Rank: 2, Username: "active_yesterday", Score: 300, CurrentStreak: 2, Challenges: 3, BadgeCount: 1, LastActivity: now.AddDate(0, 0, -1)},
		{Rank: 3, Username: "lapsed", Score: 100, CurrentStreak: 8, Challenges: 1, BadgeCount: 1, LastActivity: now.AddDate(0, 0, -3)},
		{Rank: 4, Username: "never", Score: 0},
	}}
	uc := usecase.NewGetLeaderboardUsecase(src)
	uc.SetClock(fixedClock)

	result, err := uc.Execute(context.Background(), 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !containsSubstring(result, "Cyber Trainer Leaderboard (11-03-2026)") {
		t.Errorf("expected dated header, got:\n%s", result)
	}
	if !containsSubstring(result, "2 learners keep the streak 🔥") {
		t.Errorf("expected 2 active learners, got:\n%s", result)
	}
	if !containsSubstring(result, "2 lose the streak 💔") {
		t.Errorf("expected 2 lapsed learners, got:\n%s", result)
	}
	if !containsSubstring(result, "1. active_today - 1,200 pts - 5 days streak 🔥 - 9 challenges - 4 badges") {
		t.Errorf("expected formatted first row, got:\n%s", result)
	}
	if !containsSubstring(result, "3. lapsed - 100 pts - streak lost 💔") {
		t.Errorf("expected lapsed row, got:\n%s", result)
	}
	if !containsSubstring(result, "4. never - 0 pts - streak lost 💔 - 0 challenges - 0 badges - never") {
		t.Errorf("expected never-active row, got:\n%s", result)
	}
	if result[len(result)-1] == '\n' {
		t.Error("expected trailing newline trimmed")
	}
}

func TestLeaderboard_Ordering(t *testing.T) {
	now := fixedClock()
	src := &stubLeaderboard{entries: []domain.RankedEntry{
		{Rank: 1, Username: "first", Score: 300, LastActivity: now},
		{Rank: 2, Username: "second", Score: 200, LastActivity: now},
		{Rank: 3, Username: "third", Score: 100, LastActivity: now},
	}}
	uc := usecase.NewGetLeaderboardUsecase(src)
	uc.SetClock(fixedClock)

	result, _ := uc.Execute(context.Background(), 10)

	i1 := indexOf(result, "1. first")
	i2 := indexOf(result, "2. second")
	i3 := indexOf(result, "3. third")
	if i1 == -1 || i2 == -1 || i3 == -1 {
		t.Fatalf("expected all rows, got:\n%s", result)
	}
	if !(i1 < i2 && i2 < i3) {
		t.Errorf("expected rows in rank order, got:\n%s", result)
	}
}

func TestLeaderboard_Limit(t *testing.T) {
	now := fixedClock()
	src := &stubLeaderboard{entries: []domain.RankedEntry{
		{Rank: 1, Username: "a", Score: 3, LastActivity: now},
		{Rank: 2, Username: "b", Score: 2, LastActivity: now},
		{Rank: 3, Username: "c", Score: 1, LastActivity: now},
	}}
	uc := usecase.NewGetLeaderboardUsecase(src)
	uc.SetClock(fixedClock)

	result, _ := uc.Execute(context.Background(), 2)
	if containsSubstring(result, "3. c") {
		t.Errorf("expected limit to drop third row, got:\n%s", result)
	}
}

func TestLeaderboard_Empty(t *testing.T) {
	uc := usecase.NewGetLeaderboardUsecase(&stubLeaderboard{})
	uc.SetClock(fixedClock)

	result, err := uc.Execute(context.Background(), 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !containsSubstring(result, "No scores yet. Complete a challenge to get on the board!") {
		t.Errorf("expected empty board message, got:\n%s", result)
	}
	if containsSubstring(result, "keep the streak") {
		t.Error("empty board must not render streak counts")
	}
}

func TestLeaderboard_SourceError(t *testing.T) {
	uc := usecase.NewGetLeaderboardUsecase(&stubLeaderboard{err: errors.New("locked")})

	if _, err := uc.Execute(context.Background(), 10); err == nil {
		t.Error("expected error from source")
	}
}

func TestLeaderboard_WithScoreboardUsecase(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	loggedIn(t, env, "alice")
	env.progressUC.ReportChallengeComplete(ctx, "basics", "ls", 10)

	uc := usecase.NewGetLeaderboardUsecase(env.scoreUC)
	uc.SetClock(fixedClock)
	result, err := uc.Execute(ctx, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !containsSubstring(result, "1. alice - 20 pts - 1 days streak 🔥 - 1 challenges - 1 badges - now") {
		t.Errorf("expected alice row, got:\n%s", result)
	}
}

// Helper functions
func containsSubstring(s, substr string) bool {
	return indexOf(s, substr) != -1
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
