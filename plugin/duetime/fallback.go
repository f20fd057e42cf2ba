package duetime

import "time"

// resolveMatches applies the disambiguation ladder to recognizer matches:
//
//  1. the first combined (date and time) match, as parsed;
//  2. the first date-only match's date at the first time-only match's time;
//  3. the first date-only match's date at DefaultDueHour;
//  4. today at the first time-only match's time, tomorrow if already passed;
//  5. the first match as parsed.
//
// matches must not be empty. The caller applies the future guard.
func resolveMatches(matches []Match, now time.Time, loc *time.Location) time.Time {
	var dateOnly, timeOnly *Match

	for i := range matches {
		m := &matches[i]
		switch Classify(m.Text) {
		case KindCombined:
			return m.Time.In(loc)
		case KindDate:
			if dateOnly == nil {
				dateOnly = m
			}
		case KindTime:
			if timeOnly == nil {
				timeOnly = m
			}
		}
	}

	switch {
	case dateOnly != nil && timeOnly != nil:
		clock := timeOnly.Time.In(loc)
		return atClock(dateOnly.Time.In(loc), clock.Hour(), clock.Minute())
	case dateOnly != nil:
		return atClock(dateOnly.Time.In(loc), DefaultDueHour, 0)
	case timeOnly != nil:
		clock := timeOnly.Time.In(loc)
		due := atClock(now.In(loc), clock.Hour(), clock.Minute())
		if !due.After(now) {
			due = due.AddDate(0, 0, 1)
		}
		return due
	default:
		return matches[0].Time.In(loc)
	}
}
