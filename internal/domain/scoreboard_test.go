package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fardannozami/cybertrainer/internal/domain"
)

func TestScoreboardEntry_MergeAccumulates(t *testing.T) {
	e := domain.NewScoreboardEntry()

	e.Merge(map[string]any{"challenges_completed": 5})
	e.Merge(map[string]any{"challenges_completed": 2})

	if got := e.Number("challenges_completed"); got != 7 {
		t.Errorf("expected challenges_completed=7, got %v", got)
	}
}

func TestScoreboardEntry_MergeOverwritesNonNumeric(t *testing.T) {
	e := domain.NewScoreboardEntry()

	e.Merge(map[string]any{domain.StatLastActivity: "2026-01-01T10:00:00Z"})
	e.Merge(map[string]any{domain.StatLastActivity: "2026-01-02T10:00:00Z"})
	e.Merge(map[string]any{"flag": true})
	e.Merge(map[string]any{"flag": false})

	if got := e.Stats[domain.StatLastActivity]; got != "2026-01-02T10:00:00Z" {
		t.Errorf("expected last_activity overwritten, got %v", got)
	}
	if got := e.Stats["flag"]; got != false {
		t.Errorf("expected bool overwritten to false, got %v", got)
	}
}

func TestScoreboardEntry_MergeNegativeDelta(t *testing.T) {
	e := domain.NewScoreboardEntry()
	e.Merge(map[string]any{domain.StatStreakCurrent: 4})
	e.Merge(map[string]any{domain.StatStreakCurrent: -3})

	if got := e.Number(domain.StatStreakCurrent); got != 1 {
		t.Errorf("expected streak.current=1, got %v", got)
	}
}

func TestScoreboardEntry_AddBadgesIsSetUnion(t *testing.T) {
	e := domain.NewScoreboardEntry()

	added := e.AddBadges("a", "b")
	if len(added) != 2 {
		t.Fatalf("expected 2 added, got %v", added)
	}
	added = e.AddBadges("b", "c")
	if len(added) != 1 || added[0] != "c" {
		t.Errorf("expected only c added, got %v", added)
	}
	if len(e.Badges) != 3 {
		t.Errorf("expected 3 badges, got %v", e.Badges)
	}
}

func TestScoreboardEntry_JSONIsFlat(t *testing.T) {
	e := domain.NewScoreboardEntry()
	e.Merge(map[string]any{domain.StatTotalScore: 30})
	e.AddBadges("first_challenge")

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("unmarshal flat: %v", err)
	}
	if flat[domain.StatTotalScore] != 30.0 {
		t.Errorf("expected total_score at top level, got %v", flat[domain.StatTotalScore])
	}
	if _, ok := flat["badges"].([]any); !ok {
		t.Errorf("expected badges list at top level, got %T", flat["badges"])
	}

	var back domain.ScoreboardEntry
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if back.Score() != 30 {
		t.Errorf("expected score 30, got %d", back.Score())
	}
	if len(back.Badges) != 1 || back.Badges[0] != "first_challenge" {
		t.Errorf("expected [first_challenge], got %v", back.Badges)
	}
	if _, ok := back.Stats["badges"]; ok {
		t.Error("expected badges to stay out of Stats")
	}
}

func TestScoreboard_RankedOrdering(t *testing.T) {
	sb := domain.NewScoreboard()
	sb.Entry("alice").Merge(map[string]any{domain.StatTotalScore: 100})
	sb.Entry("bob").Merge(map[string]any{domain.StatTotalScore: 200})
	sb.Entry("carol").Merge(map[string]any{domain.StatTotalScore: 150})

	ranked := sb.Ranked()
	want := []string{"bob", "carol", "alice"}
	for i, name := range want {
		if ranked[i].Username != name {
			t.Errorf("rank %d: expected %s, got %s", i+1, name, ranked[i].Username)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("expected Rank=%d, got %d", i+1, ranked[i].Rank)
		}
	}
}

func TestScoreboardEntry_LastActivity(t *testing.T) {
	e := domain.NewScoreboardEntry()
	if _, ok := e.LastActivity(); ok {
		t.Error("expected empty last_activity to be unparsable")
	}

	e.Merge(map[string]any{domain.StatLastActivity: "yesterday"})
	if _, ok := e.LastActivity(); ok {
		t.Error("expected malformed last_activity to be unparsable")
	}

	e.Merge(map[string]any{domain.StatLastActivity: "2026-03-01T12:00:00Z"})
	if _, ok := e.LastActivity(); !ok {
		t.Error("expected RFC3339 last_activity to parse")
	}
}

func TestScoreboardEntry_LastActivityWithoutOffset(t *testing.T) {
	e := domain.NewScoreboardEntry()

	e.Merge(map[string]any{domain.StatLastActivity: "2026-03-10T09:15:30.123456"})
	got, ok := e.LastActivity()
	if !ok {
		t.Fatal("expected timestamp without offset to parse")
	}
	want := time.Date(2026, 3, 10, 9, 15, 30, 123456000, time.Local)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	e.Merge(map[string]any{domain.StatLastActivity: "2026-03-10T09:15:30"})
	if _, ok := e.LastActivity(); !ok {
		t.Error("expected timestamp without fraction or offset to parse")
	}
}
