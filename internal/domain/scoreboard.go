package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Scoreboard is the shared multi-user ranking store.
type Scoreboard struct {
	Users map[string]*ScoreboardEntry `json:"users"`
}

func NewScoreboard() *Scoreboard {
	return &Scoreboard{Users: map[string]*ScoreboardEntry{}}
}

// Entry returns the entry for username, creating a zeroed one when absent.
func (s *Scoreboard) Entry(username string) *ScoreboardEntry {
	if s.Users == nil {
		s.Users = map[string]*ScoreboardEntry{}
	}
	e, ok := s.Users[username]
	if !ok || e == nil {
		e = NewScoreboardEntry()
		s.Users[username] = e
	}
	return e
}

// ScoreboardEntry is one user's projection. Stats hold numbers as float64 and
// serialise flat next to "badges".
type ScoreboardEntry struct {
	Stats  map[string]any
	Badges []string
}

const badgesField = "badges"

func NewScoreboardEntry() *ScoreboardEntry {
	return &ScoreboardEntry{
		Stats: map[string]any{
			StatChallengesCompleted: 0.0,
			StatPerfectScores:       0.0,
			StatModulesCompleted:    0.0,
			StatModulesTouched:      0.0,
			StatStreakCurrent:       0.0,
			StatTotalScore:          0.0,
			StatLastActivity:        "",
		},
		Badges: []string{},
	}
}

// Merge adds numeric deltas onto numeric fields and overwrites everything
// else. Unknown keys are created.
func (e *ScoreboardEntry) Merge(delta map[string]any) {
	if e.Stats == nil {
		e.Stats = map[string]any{}
	}
	for k, v := range delta {
		if k == badgesField {
			continue
		}
		dv, dNum := AsNumber(v)
		if dNum {
			if cur, ok := AsNumber(e.Stats[k]); ok {
				e.Stats[k] = cur + dv
				continue
			}
			e.Stats[k] = dv
			continue
		}
		e.Stats[k] = v
	}
}

// AddBadges appends ids not yet present and returns the ones added.
func (e *ScoreboardEntry) AddBadges(ids ...string) []string {
	have := BadgeSet(e.Badges)
	var added []string
	for _, id := range ids {
		if have[id] {
			continue
		}
		have[id] = true
		e.Badges = append(e.Badges, id)
		added = append(added, id)
	}
	return added
}

func (e *ScoreboardEntry) Number(key string) float64 {
	n, _ := AsNumber(e.Stats[key])
	return n
}

func (e *ScoreboardEntry) Score() int {
	return int(e.Number(StatTotalScore))
}

// naiveTimestamp is an ISO 8601 timestamp without an offset, as written by
// older scoreboards. It is read in local time.
const naiveTimestamp = "2006-01-02T15:04:05.999999999"

// LastActivity parses last_activity. ok is false when missing or malformed.
func (e *ScoreboardEntry) LastActivity() (time.Time, bool) {
	s, _ := e.Stats[StatLastActivity].(string)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(naiveTimestamp, s, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (e *ScoreboardEntry) Snapshot() Snapshot {
	s := make(Snapshot, len(e.Stats)+1)
	for k, v := range e.Stats {
		s[k] = v
	}
	s[StatBadgesEarned] = BadgeSet(e.Badges)
	return s
}

func (e *ScoreboardEntry) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(e.Stats)+1)
	for k, v := range e.Stats {
		flat[k] = v
	}
	badges := e.Badges
	if badges == nil {
		badges = []string{}
	}
	flat[badgesField] = badges
	return json.Marshal(flat)
}

func (e *ScoreboardEntry) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	if flat == nil {
		return fmt.Errorf("%w: scoreboard entry is null", ErrCorruptState)
	}
	e.Stats = map[string]any{}
	e.Badges = []string{}
	for k, v := range flat {
		if k != badgesField {
			e.Stats[k] = v
			continue
		}
		list, ok := v.([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			if id, ok := item.(string); ok {
				e.AddBadges(id)
			}
		}
	}
	return nil
}

type RankedEntry struct {
	Rank          int
	Username      string
	Score         int
	Challenges    int
	BadgeCount    int
	CurrentStreak int
	LastActivity  time.Time
}

type Activity struct {
	Username     string
	Score        int
	LastActivity time.Time
}

// Ranked orders every entry by score descending. Ties fall back to username
// order so the result is deterministic.
func (s *Scoreboard) Ranked() []RankedEntry {
	names := make([]string, 0, len(s.Users))
	for name := range s.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	sort.SliceStable(names, func(i, j int) bool {
		return s.Users[names[i]].Score() > s.Users[names[j]].Score()
	})

	out := make([]RankedEntry, 0, len(names))
	for i, name := range names {
		e := s.Users[name]
		last, _ := e.LastActivity()
		out = append(out, RankedEntry{
			Rank:          i + 1,
			Username:      name,
			Score:         e.Score(),
			Challenges:    int(e.Number(StatChallengesCompleted)),
			BadgeCount:    len(e.Badges),
			CurrentStreak: int(e.Number(StatStreakCurrent)),
			LastActivity:  last,
		})
	}
	return out
}

// ScoreboardRepository persists the scoreboard. Update must run fn inside an
// exclusive read-modify-write section and persist the result when fn succeeds.
type ScoreboardRepository interface {
	Load(ctx context.Context) (*Scoreboard, error)
	Update(ctx context.Context, fn func(sb *Scoreboard) error) error
}
