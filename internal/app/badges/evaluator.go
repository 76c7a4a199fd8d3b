package badges

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fardannozami/cybertrainer/internal/domain"
)

// IsEarned checks badge against s. A badge already in the snapshot's earned
// set is earned without re-checking criteria. Otherwise the first unmet
// comparison stops evaluation and its message is the last one returned.
func IsEarned(badge domain.Badge, s domain.Snapshot) (bool, []string) {
	if s.HasBadge(badge.ID) {
		return true, []string{fmt.Sprintf("Badge '%s' already earned", badge.Name)}
	}

	var messages []string
	for _, c := range badge.Criteria {
		userValue := s.Get(c.Key)

		if c.Kind == domain.CriterionScalar {
			if eq, ok := equalValues(userValue, c.Value); !ok || !eq {
				messages = append(messages, fmt.Sprintf("%s is %s, expected %s", c.Key, format(userValue), format(c.Value)))
				return false, messages
			}
			messages = append(messages, fmt.Sprintf("✓ %s == %s", c.Key, format(c.Value)))
			continue
		}

		for _, cmp := range c.Comparisons {
			if holds, ok := compare(cmp.Op, userValue, cmp.Operand); !ok || !holds {
				messages = append(messages, failureMessage(c.Key, cmp, userValue))
				return false, messages
			}
			messages = append(messages, fmt.Sprintf("✓ %s %s %s (has %s)", c.Key, cmp.Op, format(cmp.Operand), format(userValue)))
		}
	}
	return true, messages
}

// Progress is the fraction of criteria keys currently satisfied. Every key is
// evaluated; a type mismatch counts as unsatisfied. No criteria yields 0.
func Progress(badge domain.Badge, s domain.Snapshot) float64 {
	if len(badge.Criteria) == 0 {
		return 0
	}
	met := 0
	for _, c := range badge.Criteria {
		if satisfied(c, s.Get(c.Key)) {
			met++
		}
	}
	return float64(met) / float64(len(badge.Criteria))
}

// NextSteps describes what each unmet comparison still needs.
func NextSteps(badge domain.Badge, s domain.Snapshot) []string {
	var steps []string
	for _, c := range badge.Criteria {
		userValue := s.Get(c.Key)
		cur := format(userValue)

		if c.Kind == domain.CriterionScalar {
			if eq, ok := equalValues(userValue, c.Value); !ok || !eq {
				steps = append(steps, fmt.Sprintf("Set %s to %s (current: %s)", c.Key, format(c.Value), cur))
			}
			continue
		}

		for _, cmp := range c.Comparisons {
			if holds, ok := compare(cmp.Op, userValue, cmp.Operand); ok && holds {
				continue
			}
			want := format(cmp.Operand)
			switch cmp.Op {
			case domain.OpGT:
				steps = append(steps, fmt.Sprintf("Increase %s to more than %s (current: %s)", c.Key, want, cur))
			case domain.OpGE:
				steps = append(steps, fmt.Sprintf("Increase %s to at least %s (current: %s)", c.Key, want, cur))
			case domain.OpLT:
				steps = append(steps, fmt.Sprintf("Decrease %s to less than %s (current: %s)", c.Key, want, cur))
			case domain.OpLE:
				steps = append(steps, fmt.Sprintf("Decrease %s to at most %s (current: %s)", c.Key, want, cur))
			case domain.OpEQ:
				steps = append(steps, fmt.Sprintf("Set %s to exactly %s (current: %s)", c.Key, want, cur))
			case domain.OpNE:
				steps = append(steps, fmt.Sprintf("Change %s from %s", c.Key, want))
			case domain.OpContains:
				steps = append(steps, fmt.Sprintf("Ensure %s contains %s", c.Key, want))
			}
		}
	}
	return steps
}

func satisfied(c domain.Criterion, userValue any) bool {
	if c.Kind == domain.CriterionScalar {
		eq, ok := equalValues(userValue, c.Value)
		return ok && eq
	}
	for _, cmp := range c.Comparisons {
		if holds, ok := compare(cmp.Op, userValue, cmp.Operand); !ok || !holds {
			return false
		}
	}
	return true
}

func failureMessage(key string, cmp domain.Comparison, userValue any) string {
	have, want := format(userValue), format(cmp.Operand)
	switch cmp.Op {
	case domain.OpGT:
		return fmt.Sprintf("%s (%s) is not greater than %s", key, have, want)
	case domain.OpGE:
		return fmt.Sprintf("%s (%s) is less than %s", key, have, want)
	case domain.OpLT:
		return fmt.Sprintf("%s (%s) is not less than %s", key, have, want)
	case domain.OpLE:
		return fmt.Sprintf("%s (%s) is greater than %s", key, have, want)
	case domain.OpEQ:
		return fmt.Sprintf("%s (%s) is not equal to %s", key, have, want)
	case domain.OpNE:
		return fmt.Sprintf("%s (%s) is equal to %s", key, have, want)
	case domain.OpContains:
		return fmt.Sprintf("%s does not contain %s", key, want)
	}
	return fmt.Sprintf("%s: unsupported operator %s", key, cmp.Op)
}

// compare evaluates userValue <op> operand. ok is false when the operand
// types cannot be compared.
func compare(op domain.Operator, userValue, operand any) (holds bool, ok bool) {
	switch op {
	case domain.OpEQ:
		return equalValues(userValue, operand)
	case domain.OpNE:
		eq, ok := equalValues(userValue, operand)
		return !eq, ok
	case domain.OpContains:
		return contains(userValue, operand)
	}

	c, ok := order(userValue, operand)
	if !ok {
		return false, false
	}
	switch op {
	case domain.OpGT:
		return c > 0, true
	case domain.OpGE:
		return c >= 0, true
	case domain.OpLT:
		return c < 0, true
	case domain.OpLE:
		return c <= 0, true
	}
	return false, false
}

func order(a, b any) (int, bool) {
	if x, ok := domain.AsNumber(a); ok {
		y, ok := domain.AsNumber(b)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	if x, ok := a.(string); ok {
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	}
	return 0, false
}

func equalValues(a, b any) (bool, bool) {
	if x, ok := domain.AsNumber(a); ok {
		y, ok := domain.AsNumber(b)
		return ok && x == y, ok
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y, ok
	case bool:
		y, ok := b.(bool)
		return ok && x == y, ok
	case nil:
		return b == nil, b == nil
	}
	return false, false
}

func contains(collection, item any) (bool, bool) {
	switch c := collection.(type) {
	case string:
		s, ok := item.(string)
		return ok && strings.Contains(c, s), ok
	case []string:
		s, ok := item.(string)
		if !ok {
			return false, false
		}
		for _, v := range c {
			if v == s {
				return true, true
			}
		}
		return false, true
	case []any:
		for _, v := range c {
			if eq, ok := equalValues(v, item); ok && eq {
				return true, true
			}
		}
		return false, true
	case map[string]bool:
		s, ok := item.(string)
		return ok && c[s], ok
	case map[string]any:
		s, ok := item.(string)
		if !ok {
			return false, false
		}
		_, found := c[s]
		return found, true
	case map[string]struct{}:
		s, ok := item.(string)
		if !ok {
			return false, false
		}
		_, found := c[s]
		return found, true
	}
	return false, false
}

func format(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
