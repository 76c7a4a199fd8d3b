package domain

import "time"

// TouchStreak applies the daily streak rules for an activity at now and
// reports whether the current streak changed.
//
// No previous login starts the streak at 1. A login on the same calendar day
// changes nothing, the day after extends it, and any longer gap resets it to 1.
func (p *Profile) TouchStreak(now time.Time) bool {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	before := p.CurrentStreak

	last, err := time.ParseInLocation(DateLayout, p.LastLoginDate, loc)
	switch {
	case p.LastLoginDate == "" || err != nil:
		p.CurrentStreak = 1
	case !last.Before(today):
		// same day, or a date in the future after a clock change
	case last.AddDate(0, 0, 1).Equal(today):
		p.CurrentStreak++
	default:
		p.CurrentStreak = 1
	}

	if p.CurrentStreak < 1 {
		p.CurrentStreak = 1
	}
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastLogin = now
	p.LastLoginDate = today.Format(DateLayout)

	return p.CurrentStreak != before
}
