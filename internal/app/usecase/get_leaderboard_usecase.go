package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fardannozami/cybertrainer/internal/domain"
)

type leaderboardSource interface {
	GetLeaderboard(ctx context.Context, limit int) ([]domain.RankedEntry, error)
}

// GetLeaderboardUsecase renders the scoreboard as text.
type GetLeaderboardUsecase struct {
	scores leaderboardSource
	now    func() time.Time
}

func NewGetLeaderboardUsecase(scores leaderboardSource) *GetLeaderboardUsecase {
	return &GetLeaderboardUsecase{scores: scores, now: time.Now}
}

func (uc *GetLeaderboardUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *GetLeaderboardUsecase) Execute(ctx context.Context, limit int) (string, error) {
	entries, err := uc.scores.GetLeaderboard(ctx, limit)
	if err != nil {
		return "", err
	}

	now := uc.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)

	// Active: last activity today or yesterday, so the streak can still continue.
	// Lapsed: anything older, or never active.
	active := func(e domain.RankedEntry) bool {
		if e.LastActivity.IsZero() {
			return false
		}
		last := e.LastActivity.In(now.Location())
		lastDate := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, now.Location())
		return lastDate.Equal(today) || lastDate.Equal(yesterday)
	}

	keep, lost := 0, 0
	for _, e := range entries {
		if active(e) {
			keep++
		} else {
			lost++
		}
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Cyber Trainer Leaderboard (%s)\n\n", now.Format("02-01-2006")))
	if len(entries) == 0 {
		sb.WriteString("No scores yet. Complete a challenge to get on the board!")
		return sb.String(), nil
	}

	sb.WriteString(fmt.Sprintf("%d learners keep the streak 🔥\n", keep))
	sb.WriteString(fmt.Sprintf("%d lose the streak 💔\n\n", lost))

	for _, e := range entries {
		status := fmt.Sprintf("%d days streak 🔥", e.CurrentStreak)
		if !active(e) {
			status = "streak lost 💔"
		}
		seen := "never"
		if !e.LastActivity.IsZero() {
			seen = humanize.RelTime(e.LastActivity, now, "ago", "from now")
		}
		sb.WriteString(fmt.Sprintf("%d. %s - %s pts - %s - %d challenges - %d badges - %s\n",
			e.Rank, e.Username, humanize.Comma(int64(e.Score)), status, e.Challenges, e.BadgeCount, seen))
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
