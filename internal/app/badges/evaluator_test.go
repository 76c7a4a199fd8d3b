package badges

import (
	"strings"
	"testing"

	"github.com/fardannozami/cybertrainer/internal/domain"
)

func badgeWith(criteria ...domain.Criterion) domain.Badge {
	return domain.Badge{ID: "test_badge", Name: "Test Badge", Criteria: criteria}
}

// =============================================================================
// IS EARNED
// =============================================================================

func TestIsEarned_FastPathIgnoresCriteria(t *testing.T) {
	b := badgeWith(domain.Compare("challenges.completed", domain.GE(100)))
	s := domain.Snapshot{
		"challenges.completed":  0,
		domain.StatBadgesEarned: domain.BadgeSet([]string{"test_badge"}),
	}

	earned, msgs := IsEarned(b, s)
	if !earned {
		t.Fatal("expected already-earned badge to stay earned")
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], "already earned") {
		t.Errorf("expected already-earned message, got %v", msgs)
	}
}

func TestIsEarned_GEBoundary(t *testing.T) {
	b := badgeWith(domain.Compare("challenges.completed", domain.GE(10)))

	tests := []struct {
		value any
		want  bool
	}{
		{9, false},
		{10, true},
		{11, true},
		{10.0, true},
		{9.5, false},
	}
	for _, tt := range tests {
		earned, _ := IsEarned(b, domain.Snapshot{"challenges.completed": tt.value})
		if earned != tt.want {
			t.Errorf("value %v: expected earned=%v, got %v", tt.value, tt.want, earned)
		}
	}
}

func TestIsEarned_GTBoundary(t *testing.T) {
	b := badgeWith(domain.Compare("challenges.completed", domain.GT(0)))

	if earned, _ := IsEarned(b, domain.Snapshot{"challenges.completed": 0}); earned {
		t.Error("expected 0 > 0 to be unmet")
	}
	if earned, _ := IsEarned(b, domain.Snapshot{"challenges.completed": 1}); !earned {
		t.Error("expected 1 > 0 to be met")
	}
}

func TestIsEarned_MissingKeyReadsZero(t *testing.T) {
	b := badgeWith(domain.Compare("streak.current", domain.LE(0)))

	earned, _ := IsEarned(b, domain.Snapshot{})
	if !earned {
		t.Error("expected missing key to read as 0 and satisfy <= 0")
	}
}

func TestIsEarned_OperatorsAreANDed(t *testing.T) {
	b := badgeWith(domain.Compare("score", domain.GE(10), domain.LT(20)))

	if earned, _ := IsEarned(b, domain.Snapshot{"score": 15}); !earned {
		t.Error("expected 15 within [10,20)")
	}
	earned, msgs := IsEarned(b, domain.Snapshot{"score": 25})
	if earned {
		t.Error("expected 25 outside [10,20)")
	}
	if last := msgs[len(msgs)-1]; !strings.Contains(last, "is not less than 20") {
		t.Errorf("expected failure message for <, got %q", last)
	}
}

func TestIsEarned_KeysAreANDed(t *testing.T) {
	b := badgeWith(
		domain.Compare("a", domain.GT(0)),
		domain.Compare("b", domain.GT(0)),
	)

	if earned, _ := IsEarned(b, domain.Snapshot{"a": 1, "b": 0}); earned {
		t.Error("expected unmet when one key fails")
	}
	if earned, _ := IsEarned(b, domain.Snapshot{"a": 1, "b": 1}); !earned {
		t.Error("expected met when both keys hold")
	}
}

func TestIsEarned_ScalarExactEquality(t *testing.T) {
	b := badgeWith(domain.Scalar(domain.StatEarlyBird, true))

	if earned, _ := IsEarned(b, domain.Snapshot{domain.StatEarlyBird: true}); !earned {
		t.Error("expected true == true")
	}
	earned, msgs := IsEarned(b, domain.Snapshot{domain.StatEarlyBird: false})
	if earned {
		t.Error("expected false != true")
	}
	if msgs[0] != "has_early_bird_achievement is false, expected true" {
		t.Errorf("unexpected message %q", msgs[0])
	}
}

func TestIsEarned_Contains(t *testing.T) {
	b := badgeWith(domain.Compare(domain.StatChallengeIDs, domain.Contains("networking:port_scan")))

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"string slice hit", []string{"basics:ls", "networking:port_scan"}, true},
		{"string slice miss", []string{"basics:ls"}, false},
		{"any slice hit", []any{"networking:port_scan"}, true},
		{"set hit", map[string]bool{"networking:port_scan": true}, true},
		{"substring", "did networking:port_scan today", true},
		{"number is not a collection", 5, false},
	}
	for _, tt := range tests {
		earned, _ := IsEarned(b, domain.Snapshot{domain.StatChallengeIDs: tt.value})
		if earned != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, earned)
		}
	}
}

func TestIsEarned_TypeMismatchNeverPanics(t *testing.T) {
	cases := []domain.Badge{
		badgeWith(domain.Compare("k", domain.GT(3))),
		badgeWith(domain.Compare("k", domain.EQ(3))),
		badgeWith(domain.Compare("k", domain.NE(3))),
		badgeWith(domain.Compare("k", domain.Contains(3))),
		badgeWith(domain.Scalar("k", 3)),
	}
	values := []any{"text", true, []string{"a"}, map[string]any{"x": 1}, nil}

	for _, b := range cases {
		for _, v := range values {
			earned, _ := IsEarned(b, domain.Snapshot{"k": v})
			if earned {
				t.Errorf("%s against %#v: expected mismatch to be unmet", b.Criteria[0].Key, v)
			}
		}
	}
}

func TestIsEarned_StringOrdering(t *testing.T) {
	b := badgeWith(domain.Compare("rank", domain.LT("m")))

	if earned, _ := IsEarned(b, domain.Snapshot{"rank": "alpha"}); !earned {
		t.Error("expected \"alpha\" < \"m\"")
	}
}

// =============================================================================
// PROGRESS AND NEXT STEPS
// =============================================================================

func TestProgress_CountsSatisfiedKeys(t *testing.T) {
	b := badgeWith(
		domain.Compare("a", domain.GE(1)),
		domain.Compare("b", domain.GE(1)),
		domain.Compare("c", domain.GE(1)),
		domain.Compare("d", domain.GE(1)),
	)
	s := domain.Snapshot{"a": 1, "b": 5, "c": "oops"}

	if got := Progress(b, s); got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
}

func TestProgress_NoCriteria(t *testing.T) {
	if got := Progress(badgeWith(), domain.Snapshot{}); got != 0 {
		t.Errorf("expected 0 for empty criteria, got %v", got)
	}
}

func TestNextSteps(t *testing.T) {
	b := badgeWith(
		domain.Compare("challenges.completed", domain.GE(10)),
		domain.Compare("streak.current", domain.GT(2)),
		domain.Scalar("has_night_owl_achievement", true),
	)
	s := domain.Snapshot{"challenges.completed": 4.0, "streak.current": 3}

	steps := NextSteps(b, s)
	want := []string{
		"Increase challenges.completed to at least 10 (current: 4)",
		"Set has_night_owl_achievement to true (current: 0)",
	}
	if len(steps) != len(want) {
		t.Fatalf("expected %d steps, got %v", len(want), steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], steps[i])
		}
	}
}
