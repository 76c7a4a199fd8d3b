package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-date form used for last_login_date.
	DateLayout = "2006-01-02"

	DefaultTheme = "default"
)

type Profile struct {
	Username      string       `json:"username"`
	CreatedAt     time.Time    `json:"created_at"`
	LastLogin     time.Time    `json:"last_login"`
	LastLoginDate string       `json:"last_login_date"`
	CurrentStreak int          `json:"current_streak"`
	LongestStreak int          `json:"longest_streak"`
	TotalScore    int          `json:"total_score"`
	Badges        []string     `json:"badges_earned"`
	Progress      Progress     `json:"progress"`
	Achievements  Achievements `json:"achievements"`
	Preferences   Preferences  `json:"preferences"`
}

type Progress struct {
	// Modules holds absolute per-module counters (lessons or commands done).
	Modules map[string]int `json:"modules"`
	// ChallengesCompleted is a sorted set of "module:challenge" keys.
	ChallengesCompleted []string                    `json:"challenges_completed"`
	ChallengeCount      int                         `json:"challenge_count"`
	PerfectScores       int                         `json:"perfect_scores"`
	LessonsCompleted    map[string]LessonRecord     `json:"lessons_completed"`
	ModuleProgress      map[string]ModuleCompletion `json:"module_progress"`
	ModulesCompleted    bool                        `json:"modules_completed"`
}

type LessonRecord struct {
	CompletedAt time.Time `json:"completed_at"`
	Score       int       `json:"score"`
}

type ModuleCompletion struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Achievements are time-of-day and weekend marks set by challenge completions.
type Achievements struct {
	EarlyBird      bool `json:"early_bird"`
	NightOwl       bool `json:"night_owl"`
	Saturday       bool `json:"saturday"`
	Sunday         bool `json:"sunday"`
	WeekendWarrior bool `json:"weekend_warrior"`
}

type Preferences struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
}

// NormalizeUsername trims surrounding whitespace and rejects empty names.
func NormalizeUsername(username string) (string, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return "", fmt.Errorf("%w: username must not be empty", ErrInvalidUsername)
	}
	return name, nil
}

func NewProfile(username string, now time.Time) *Profile {
	return &Profile{
		Username:  username,
		CreatedAt: now,
		LastLogin: now,
		Badges:    []string{},
		Progress: Progress{
			Modules:             map[string]int{},
			ChallengesCompleted: []string{},
			LessonsCompleted:    map[string]LessonRecord{},
			ModuleProgress:      map[string]ModuleCompletion{},
		},
		Preferences: Preferences{Theme: DefaultTheme, Notifications: true},
	}
}

// Normalize fills nil collections left by older or hand-edited files.
func (p *Profile) Normalize() {
	if p.Badges == nil {
		p.Badges = []string{}
	}
	if p.Progress.Modules == nil {
		p.Progress.Modules = map[string]int{}
	}
	if p.Progress.ChallengesCompleted == nil {
		p.Progress.ChallengesCompleted = []string{}
	}
	if !sort.StringsAreSorted(p.Progress.ChallengesCompleted) {
		// HasChallenge binary-searches this slice
		ChallengeSet(nil).applyTo(&p.Progress, "")
	}
	if p.Progress.LessonsCompleted == nil {
		p.Progress.LessonsCompleted = map[string]LessonRecord{}
	}
	if p.Progress.ModuleProgress == nil {
		p.Progress.ModuleProgress = map[string]ModuleCompletion{}
	}
	if p.Preferences.Theme == "" {
		p.Preferences.Theme = DefaultTheme
	}
}

func (p *Profile) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// AddBadge appends id unless already earned. Badges are never removed.
func (p *Profile) AddBadge(id string) bool {
	if p.HasBadge(id) {
		return false
	}
	p.Badges = append(p.Badges, id)
	return true
}

func ChallengeKey(module, challengeID string) string {
	return module + ":" + challengeID
}

func (p *Profile) HasChallenge(key string) bool {
	i := sort.SearchStrings(p.Progress.ChallengesCompleted, key)
	return i < len(p.Progress.ChallengesCompleted) && p.Progress.ChallengesCompleted[i] == key
}

// ProgressUpdate is a payload accepted by Profile.ApplyProgress.
// The concrete type selects the merge rule.
type ProgressUpdate interface {
	applyTo(p *Progress, module string)
}

// CounterValue overwrites the module counter with an absolute value.
type CounterValue int

// ChallengeSet is unioned into the completed-challenge set.
type ChallengeSet []string

// LessonResults are merged into lessons_completed keyed by lesson id.
type LessonResults map[string]LessonRecord

func (v CounterValue) applyTo(p *Progress, module string) {
	p.Modules[module] = int(v)
}

func (s ChallengeSet) applyTo(p *Progress, _ string) {
	seen := make(map[string]bool, len(p.ChallengesCompleted)+len(s))
	merged := make([]string, 0, len(p.ChallengesCompleted)+len(s))
	for _, id := range append(append([]string{}, p.ChallengesCompleted...), s...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, id)
	}
	sort.Strings(merged)
	p.ChallengesCompleted = merged
}

func (l LessonResults) applyTo(p *Progress, _ string) {
	for id, rec := range l {
		p.LessonsCompleted[id] = rec
	}
}

// ApplyProgress merges value into the profile's progress for module.
func (p *Profile) ApplyProgress(module string, value ProgressUpdate) {
	p.Normalize()
	value.applyTo(&p.Progress, module)
}

// RecordChallengeModule bumps module_progress for module and refreshes the
// all-modules-complete flag against tracked.
func (p *Profile) RecordChallengeModule(module string, tracked []TrackedModule) {
	p.Normalize()
	mc := p.Progress.ModuleProgress[module]
	mc.Completed++
	for _, tm := range tracked {
		if tm.Name == module {
			mc.Total = tm.Challenges
		}
	}
	p.Progress.ModuleProgress[module] = mc
	p.Progress.ModulesCompleted = p.allModulesComplete(tracked)
}

func (p *Profile) allModulesComplete(tracked []TrackedModule) bool {
	if len(tracked) == 0 {
		return false
	}
	for _, tm := range tracked {
		mc, ok := p.Progress.ModuleProgress[tm.Name]
		if !ok || mc.Completed < tm.Challenges {
			return false
		}
	}
	return true
}

// ModuleComplete reports whether every lesson or every challenge of tm is done.
func (p *Profile) ModuleComplete(tm TrackedModule) bool {
	if tm.Lessons > 0 && p.Progress.Modules[tm.Name] >= tm.Lessons {
		return true
	}
	mc, ok := p.Progress.ModuleProgress[tm.Name]
	return ok && tm.Challenges > 0 && mc.Completed >= tm.Challenges
}

// TouchedModules counts modules with any counter or challenge progress.
func (p *Profile) TouchedModules() int {
	touched := map[string]bool{}
	for name, v := range p.Progress.Modules {
		if v > 0 {
			touched[name] = true
		}
	}
	for name, mc := range p.Progress.ModuleProgress {
		if mc.Completed > 0 {
			touched[name] = true
		}
	}
	return len(touched)
}

// RecordActivityTime sets the special achievements for a completion at t.
func (a *Achievements) RecordActivityTime(t time.Time) {
	switch h := t.Hour(); {
	case h < 9:
		a.EarlyBird = true
	case h >= 22:
		a.NightOwl = true
	}
	switch t.Weekday() {
	case time.Saturday:
		a.Saturday = true
	case time.Sunday:
		a.Sunday = true
	}
	if a.Saturday && a.Sunday {
		a.WeekendWarrior = true
	}
}

// Snapshot flattens the profile into the stat keys badge criteria read.
func (p *Profile) Snapshot(tracked []TrackedModule) Snapshot {
	completed := 0
	for _, tm := range tracked {
		if p.ModuleComplete(tm) {
			completed++
		}
	}

	s := Snapshot{
		StatChallengesCompleted: p.Progress.ChallengeCount,
		StatPerfectScores:       p.Progress.PerfectScores,
		StatChallengeIDs:        append([]string{}, p.Progress.ChallengesCompleted...),
		StatModulesCompleted:    completed,
		StatModulesTouched:      p.TouchedModules(),
		StatLessonsCompleted:    len(p.Progress.LessonsCompleted),
		StatStreakCurrent:       p.CurrentStreak,
		StatStreakLongest:       p.LongestStreak,
		StatTotalScore:          p.TotalScore,
		StatEarlyBird:           p.Achievements.EarlyBird,
		StatNightOwl:            p.Achievements.NightOwl,
		StatWeekendWarrior:      p.Achievements.WeekendWarrior,
		StatBadgesEarned:        BadgeSet(p.Badges),
	}
	for name, v := range p.Progress.Modules {
		s[StatModulePrefix+name] = v
	}
	return s
}

// Clone returns a deep copy so callers can diff before and after a mutation.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Badges = append([]string{}, p.Badges...)
	c.Progress.Modules = make(map[string]int, len(p.Progress.Modules))
	for k, v := range p.Progress.Modules {
		c.Progress.Modules[k] = v
	}
	c.Progress.ChallengesCompleted = append([]string{}, p.Progress.ChallengesCompleted...)
	c.Progress.LessonsCompleted = make(map[string]LessonRecord, len(p.Progress.LessonsCompleted))
	for k, v := range p.Progress.LessonsCompleted {
		c.Progress.LessonsCompleted[k] = v
	}
	c.Progress.ModuleProgress = make(map[string]ModuleCompletion, len(p.Progress.ModuleProgress))
	for k, v := range p.Progress.ModuleProgress {
		c.Progress.ModuleProgress[k] = v
	}
	return &c
}
