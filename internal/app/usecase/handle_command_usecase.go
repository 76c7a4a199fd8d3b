package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/fardannozami/cybertrainer/internal/domain"
)

const helpText = `Commands:
  new <name>                                   create a profile and log in
  login <name>                                 log in to an existing profile
  profiles                                     list saved profiles
  progress <module> <n>                        set lessons done in a module
  complete <module> <challenge> [pts] [perfect] record a finished challenge
  lesson <id> <score>                          record a finished lesson
  badges                                       show earned badges
  potential                                    show badges within reach
  summary                                      show your progress
  leaderboard [n]                              show the top n learners
  rank                                         show your leaderboard position
  recent [n]                                   show recently active learners
  share                                        print a shareable progress card
  help                                         show this help
  quit                                         leave the trainer`

// HandleCommandUsecase routes one line of shell input. Unknown input yields
// an empty reply.
type HandleCommandUsecase struct {
	progress     *ProgressUsecase
	leaderboard  *GetLeaderboardUsecase
	defaultLimit int
}

func NewHandleCommandUsecase(progress *ProgressUsecase, leaderboard *GetLeaderboardUsecase, defaultLimit int) *HandleCommandUsecase {
	return &HandleCommandUsecase{progress: progress, leaderboard: leaderboard, defaultLimit: defaultLimit}
}

func (uc *HandleCommandUsecase) Execute(ctx context.Context, input string) (string, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "new":
		if len(args) == 0 {
			return "usage: new <name>", nil
		}
		p, out, err := uc.progress.CreateProfile(ctx, strings.Join(args, " "))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Welcome, %s! Your profile is ready. Streak: %d day(s) 🔥", p.Username, p.CurrentStreak) + badgeLines(out.NewBadges), nil

	case "login":
		if len(args) == 0 {
			return "usage: login <name>", nil
		}
		p, out, err := uc.progress.Login(ctx, strings.Join(args, " "))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Welcome back, %s! Streak: %d day(s) 🔥 (best %d)", p.Username, p.CurrentStreak, p.LongestStreak) + badgeLines(out.NewBadges), nil

	case "profiles":
		names, err := uc.progress.ListProfiles(ctx)
		if err != nil {
			return "", err
		}
		if len(names) == 0 {
			return "No profiles yet. Create one with: new <name>", nil
		}
		return "Profiles:\n  " + strings.Join(names, "\n  "), nil

	case "progress":
		if len(args) != 2 {
			return "usage: progress <module> <n>", nil
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "usage: progress <module> <n>", nil
		}
		out, err := uc.progress.ReportModuleProgress(ctx, args[0], n)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Progress saved: %s = %d", args[0], n) + badgeLines(out.NewBadges), nil

	case "complete":
		return uc.complete(ctx, args)

	case "lesson":
		if len(args) != 2 {
			return "usage: lesson <id> <score>", nil
		}
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return "usage: lesson <id> <score>", nil
		}
		out, err := uc.progress.ReportLessonComplete(ctx, args[0], score)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Lesson %s recorded with score %d", args[0], score) + badgeLines(out.NewBadges), nil

	case "badges":
		earned := uc.progress.GetEarnedBadges()
		if len(earned) == 0 {
			return "No badges yet. Keep training!", nil
		}
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Earned badges (%d):", len(earned)))
		for _, b := range earned {
			sb.WriteString(fmt.Sprintf("\n  %s %s - %s (+%d)", b.Icon, b.Name, b.Description, b.Points))
		}
		return sb.String(), nil

	case "potential":
		potential := uc.progress.GetPotentialBadges()
		if len(potential) == 0 {
			return "No badges in progress right now.", nil
		}
		var sb strings.Builder
		sb.WriteString("Badges within reach:")
		for _, pb := range potential {
			sb.WriteString(fmt.Sprintf("\n  %s %s %.0f%%", pb.Badge.Icon, pb.Badge.Name, pb.Progress*100))
			for _, step := range pb.NextSteps {
				sb.WriteString("\n    - " + step)
			}
		}
		return sb.String(), nil

	case "summary":
		return renderSummary(uc.progress.GetProfileSummary()), nil

	case "leaderboard":
		return uc.leaderboard.Execute(ctx, uc.limitArg(args))

	case "rank":
		rank, ok, err := uc.progress.GetUserRank(ctx)
		if err != nil {
			return "", err
		}
		if !ok {
			return "You are not on the leaderboard yet.", nil
		}
		return fmt.Sprintf("You are ranked #%d.", rank), nil

	case "recent":
		acts, err := uc.progress.GetRecentActivity(ctx, uc.limitArg(args))
		if err != nil {
			return "", err
		}
		if len(acts) == 0 {
			return "No recent activity.", nil
		}
		var sb strings.Builder
		sb.WriteString("Recent activity:")
		for _, a := range acts {
			sb.WriteString(fmt.Sprintf("\n  %s - %s pts - %s", a.Username, humanize.Comma(int64(a.Score)), a.LastActivity.Format("2006-01-02 15:04")))
		}
		return sb.String(), nil

	case "share":
		return uc.ShareCard(ctx)

	case "help":
		return helpText, nil
	}

	return "", nil
}

func (uc *HandleCommandUsecase) complete(ctx context.Context, args []string) (string, error) {
	const usage = "usage: complete <module> <challenge> [points] [perfect]"
	if len(args) < 2 || len(args) > 4 {
		return usage, nil
	}
	r := ChallengeResult{Module: args[0], ChallengeID: args[1]}
	for _, a := range args[2:] {
		if strings.EqualFold(a, "perfect") {
			r.Perfect = true
			continue
		}
		pts, err := strconv.Atoi(a)
		if err != nil {
			return usage, nil
		}
		r.Points = &pts
	}

	out, err := uc.progress.ReportChallengeResult(ctx, r)
	if err != nil {
		return "", err
	}
	if !out.Recorded {
		return fmt.Sprintf("Challenge %s:%s was already completed.", r.Module, r.ChallengeID), nil
	}
	return fmt.Sprintf("Challenge %s:%s complete! +%d points", r.Module, r.ChallengeID, out.PointsAdded) + badgeLines(out.NewBadges), nil
}

// ShareCard is a one-line progress card for the active profile.
func (uc *HandleCommandUsecase) ShareCard(ctx context.Context) (string, error) {
	s := uc.progress.GetProfileSummary()
	if s.Username == "" {
		return "", fmt.Errorf("share: %w", domain.ErrNoActiveProfile)
	}
	card := fmt.Sprintf("Cyber Trainer | %s | %s pts | %d-day streak | %d badges | %d challenges",
		s.Username, humanize.Comma(int64(s.TotalScore)), s.CurrentStreak, s.BadgeCount, s.ChallengesCompleted)
	if rank, ok, err := uc.progress.GetUserRank(ctx); err == nil && ok {
		card += fmt.Sprintf(" | rank #%d", rank)
	}
	return card, nil
}

func (uc *HandleCommandUsecase) limitArg(args []string) int {
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n >= 0 {
			return n
		}
	}
	return uc.defaultLimit
}

func badgeLines(list []domain.Badge) string {
	var sb strings.Builder
	for _, b := range list {
		sb.WriteString(fmt.Sprintf("\n🏅 New badge: %s %s (+%d points)", b.Icon, b.Name, b.Points))
	}
	return sb.String()
}

func renderSummary(s domain.ProgressSummary) string {
	if s.Username == "" {
		return "No active profile. Use: login <name>"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s - %s pts\n", s.Username, humanize.Comma(int64(s.TotalScore))))
	sb.WriteString(fmt.Sprintf("Streak: %d (best %d)\n", s.CurrentStreak, s.LongestStreak))
	sb.WriteString(fmt.Sprintf("Challenges: %d (%d perfect) | Lessons: %d | Badges: %d\n",
		s.ChallengesCompleted, s.PerfectScores, s.LessonsCompleted, s.BadgeCount))
	sb.WriteString(fmt.Sprintf("Modules complete: %d/%d", s.ModulesCompleted, len(s.Modules)))
	for _, m := range s.Modules {
		mark := " "
		if m.Complete {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("\n  [%s] %-18s lessons %d/%d  challenges %d/%d",
			mark, m.Title, m.LessonsDone, m.LessonsTotal, m.ChallengesDone, m.ChallengesTotal))
	}
	return sb.String()
}
