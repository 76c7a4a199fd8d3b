package domain

type BadgeCategory string

const (
	CategoryChallenges BadgeCategory = "challenges"
	CategoryModules    BadgeCategory = "modules"
	CategoryStreak     BadgeCategory = "streak"
	CategorySpecial    BadgeCategory = "special"
	CategoryGeneral    BadgeCategory = "general"
)

type Badge struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Category    BadgeCategory
	// Points are added to a profile's total score once, when the badge is awarded.
	Points   int
	Criteria Criteria
}

// PotentialBadge is an unearned badge with partial progress toward it.
type PotentialBadge struct {
	Badge     Badge
	Progress  float64
	NextSteps []string
}

// BadgeProgress is the full per-badge report for one user.
type BadgeProgress struct {
	Badge     Badge
	Earned    bool
	Progress  float64
	Messages  []string
	NextSteps []string
}
