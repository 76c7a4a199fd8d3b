package badges

import (
	"fmt"
	"sort"

	"github.com/fardannozami/cybertrainer/internal/domain"
)

const (
	FirstChallenge  = "first_challenge"
	ChallengeMaster = "challenge_master"
	PerfectScore    = "perfect_score"
	ModuleExplorer  = "module_explorer"
	JackOfAllTrades = "jack_of_all_trades"
	Streak3Days     = "streak_3_days"
	Streak7Days     = "streak_7_days"
	EarlyBird       = "early_bird"
	NightOwl        = "night_owl"
	WeekendWarrior  = "weekend_warrior"
	LessonScholar   = "lesson_scholar"
	ShellGraduate   = "shell_graduate"
	PortScanner     = "port_scanner"
)

// Catalog is an immutable, insertion-ordered set of badges.
type Catalog struct {
	order []string
	byID  map[string]domain.Badge
}

// NewCatalog rejects empty or duplicate badge ids.
func NewCatalog(list ...domain.Badge) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]domain.Badge, len(list))}
	for _, b := range list {
		if b.ID == "" {
			return nil, fmt.Errorf("badge %q: empty id", b.Name)
		}
		if _, dup := c.byID[b.ID]; dup {
			return nil, fmt.Errorf("badge %q: %w", b.ID, domain.ErrAlreadyExists)
		}
		c.byID[b.ID] = b
		c.order = append(c.order, b.ID)
	}
	return c, nil
}

// Get returns false for unknown ids.
func (c *Catalog) Get(id string) (domain.Badge, bool) {
	b, ok := c.byID[id]
	return b, ok
}

func (c *Catalog) All() []domain.Badge {
	out := make([]domain.Badge, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) ByCategory(category domain.BadgeCategory) []domain.Badge {
	var out []domain.Badge
	for _, id := range c.order {
		if b := c.byID[id]; b.Category == category {
			out = append(out, b)
		}
	}
	return out
}

// Earned lists every badge earned against s, including ones already in the
// snapshot's earned set.
func (c *Catalog) Earned(s domain.Snapshot) []domain.Badge {
	var out []domain.Badge
	for _, b := range c.All() {
		if ok, _ := IsEarned(b, s); ok {
			out = append(out, b)
		}
	}
	return out
}

// NewlyEarned lists badges whose criteria hold but that s does not yet carry.
func (c *Catalog) NewlyEarned(s domain.Snapshot) []domain.Badge {
	var out []domain.Badge
	for _, b := range c.All() {
		if s.HasBadge(b.ID) {
			continue
		}
		if ok, _ := IsEarned(b, s); ok {
			out = append(out, b)
		}
	}
	return out
}

// Potential lists unearned badges with some progress, closest first.
func (c *Catalog) Potential(s domain.Snapshot) []domain.PotentialBadge {
	var out []domain.PotentialBadge
	for _, b := range c.All() {
		if ok, _ := IsEarned(b, s); ok {
			continue
		}
		p := Progress(b, s)
		if p <= 0 {
			continue
		}
		out = append(out, domain.PotentialBadge{Badge: b, Progress: p, NextSteps: NextSteps(b, s)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Progress > out[j].Progress })
	return out
}

// Report evaluates every badge for s.
func (c *Catalog) Report(s domain.Snapshot) []domain.BadgeProgress {
	out := make([]domain.BadgeProgress, 0, len(c.order))
	for _, b := range c.All() {
		earned, msgs := IsEarned(b, s)
		bp := domain.BadgeProgress{Badge: b, Earned: earned, Messages: msgs, Progress: 1}
		if !earned {
			bp.Progress = Progress(b, s)
			bp.NextSteps = NextSteps(b, s)
		}
		out = append(out, bp)
	}
	return out
}

// Default returns the built-in trainer badges.
func Default() *Catalog {
	c, err := NewCatalog(DefaultBadges()...)
	if err != nil {
		panic(err)
	}
	return c
}

func DefaultBadges() []domain.Badge {
	return []domain.Badge{
		{
			ID: FirstChallenge, Name: "First Step", Description: "Complete your first challenge",
			Icon: "🎯", Category: domain.CategoryChallenges, Points: 10,
			Criteria: domain.Criteria{domain.Compare(domain.StatChallengesCompleted, domain.GT(0))},
		},
		{
			ID: ChallengeMaster, Name: "Challenge Master", Description: "Complete 10 challenges",
			Icon: "🏆", Category: domain.CategoryChallenges, Points: 50,
			Criteria: domain.Criteria{domain.Compare(domain.StatChallengesCompleted, domain.GE(10))},
		},
		{
			ID: PerfectScore, Name: "Perfect Score", Description: "Get a perfect score on a challenge",
			Icon: "💯", Category: domain.CategoryChallenges, Points: 25,
			Criteria: domain.Criteria{domain.Compare(domain.StatPerfectScores, domain.GT(0))},
		},
		{
			ID: PortScanner, Name: "Port Scanner", Description: "Finish the networking port scan challenge",
			Icon: "📡", Category: domain.CategoryChallenges, Points: 15,
			Criteria: domain.Criteria{domain.Compare(domain.StatChallengeIDs, domain.Contains("networking:port_scan"))},
		},
		{
			ID: ModuleExplorer, Name: "Module Explorer", Description: "Complete all challenges in a module",
			Icon: "🔍", Category: domain.CategoryModules, Points: 30,
			Criteria: domain.Criteria{domain.Compare(domain.StatModulesCompleted, domain.GT(0))},
		},
		{
			ID: JackOfAllTrades, Name: "Jack of All Trades", Description: "Make progress in at least five modules",
			Icon: "🎭", Category: domain.CategoryModules, Points: 75,
			Criteria: domain.Criteria{domain.Compare(domain.StatModulesTouched, domain.GE(5))},
		},
		{
			ID: ShellGraduate, Name: "Shell Graduate", Description: "Finish every Linux basics lesson",
			Icon: "🐚", Category: domain.CategoryModules, Points: 20,
			Criteria: domain.Criteria{domain.Compare(domain.StatModulePrefix+"basics", domain.GE(10))},
		},
		{
			ID: LessonScholar, Name: "Lesson Scholar", Description: "Complete five lessons with a score",
			Icon: "📚", Category: domain.CategoryModules, Points: 20,
			Criteria: domain.Criteria{domain.Compare(domain.StatLessonsCompleted, domain.GE(5))},
		},
		{
			ID: Streak3Days, Name: "Three Day Streak", Description: "Maintain a 3-day learning streak",
			Icon: "🔥", Category: domain.CategoryStreak, Points: 15,
			Criteria: domain.Criteria{domain.Compare(domain.StatStreakCurrent, domain.GE(3))},
		},
		{
			ID: Streak7Days, Name: "One Week Streak", Description: "Maintain a 7-day learning streak",
			Icon: "🚀", Category: domain.CategoryStreak, Points: 35,
			Criteria: domain.Criteria{domain.Compare(domain.StatStreakCurrent, domain.GE(7))},
		},
		{
			ID: EarlyBird, Name: "Early Bird", Description: "Complete a challenge before 9 AM",
			Icon: "🌅", Category: domain.CategorySpecial, Points: 20,
			Criteria: domain.Criteria{domain.Scalar(domain.StatEarlyBird, true)},
		},
		{
			ID: NightOwl, Name: "Night Owl", Description: "Complete a challenge after 10 PM",
			Icon: "🦉", Category: domain.CategorySpecial, Points: 20,
			Criteria: domain.Criteria{domain.Scalar(domain.StatNightOwl, true)},
		},
		{
			ID: WeekendWarrior, Name: "Weekend Warrior", Description: "Complete a challenge on both weekend days",
			Icon: "🏋️", Category: domain.CategorySpecial, Points: 30,
			Criteria: domain.Criteria{domain.Scalar(domain.StatWeekendWarrior, true)},
		},
	}
}
