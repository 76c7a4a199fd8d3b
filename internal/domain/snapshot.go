package domain

import "strings"

// Stat keys shared by profiles, the scoreboard and badge criteria.
const (
	StatChallengesCompleted = "challenges.completed"
	StatPerfectScores       = "challenges.perfect_scores"
	StatChallengeIDs        = "challenges.ids"
	StatModulesCompleted    = "modules.completed"
	StatModulesTouched      = "modules.touched_count"
	StatLessonsCompleted    = "lessons.completed"
	StatStreakCurrent       = "streak.current"
	StatStreakLongest       = "streak.longest"
	StatTotalScore          = "total_score"
	StatLastActivity        = "last_activity"
	StatEarlyBird           = "has_early_bird_achievement"
	StatNightOwl            = "has_night_owl_achievement"
	StatWeekendWarrior      = "has_weekend_warrior_achievement"
	StatBadgesEarned        = "badges_earned"

	// StatModulePrefix prefixes per-module lesson counters, e.g. "progress.basics".
	StatModulePrefix = "progress."
)

// Snapshot is a read-only view of a user's stats used for criteria evaluation.
// Keys may be flat ("challenges.completed") or nested maps walked by dotted path.
type Snapshot map[string]any

// Lookup returns the value stored under key. A flat key wins over a nested path.
func (s Snapshot) Lookup(key string) (any, bool) {
	if v, ok := s[key]; ok {
		return v, true
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}

	var cur any = map[string]any(s)
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			if sm, isSnap := cur.(Snapshot); isSnap {
				m = sm
			} else {
				return nil, false
			}
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Get reads key with the evaluator's default of 0 for missing stats.
func (s Snapshot) Get(key string) any {
	if v, ok := s.Lookup(key); ok {
		return v
	}
	return 0
}

// HasBadge reports whether badgeID is in the snapshot's earned set.
func (s Snapshot) HasBadge(badgeID string) bool {
	switch earned := s[StatBadgesEarned].(type) {
	case map[string]bool:
		return earned[badgeID]
	case map[string]struct{}:
		_, ok := earned[badgeID]
		return ok
	case []string:
		for _, id := range earned {
			if id == badgeID {
				return true
			}
		}
	case []any:
		for _, id := range earned {
			if s, ok := id.(string); ok && s == badgeID {
				return true
			}
		}
	}
	return false
}

// BadgeSet builds the earned-badges value stored under StatBadgesEarned.
func BadgeSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
