package duetime

import (
	"time"

	"golang.org/x/text/unicode/norm"
)

// DefaultDueHour is the time of day used when a text names no time.
const DefaultDueHour = 23

// Resolver implements DueService.
//
// Numeric dates take precedence over the natural-language recognizer; the
// recognizer only runs when the text holds no valid numeric date.
type Resolver struct {
	searcher Searcher
}

// NewResolver creates a new resolver. A nil searcher uses WhenSearcher.
func NewResolver(searcher Searcher) *Resolver {
	if searcher == nil {
		searcher = NewWhenSearcher()
	}
	return &Resolver{searcher: searcher}
}

// Infer returns the due moment for text. The result is always in loc and,
// unless it is the default due, strictly after now.
func (r *Resolver) Infer(text string, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = now.Location()
	}
	now = now.In(loc)
	text = norm.NFC.String(text)

	if candidates := ExtractNumeric(text, now, r.searcher); len(candidates) > 0 {
		return selectCandidate(candidates, now)
	}

	matches := r.searcher.Search(text, now)
	if len(matches) == 0 {
		return DefaultDue(now, loc)
	}

	due := resolveMatches(matches, now, loc)
	if !due.After(now) {
		return DefaultDue(now, loc)
	}
	return due
}

// DefaultDue returns now's calendar date at DefaultDueHour:00 in loc.
func DefaultDue(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = now.Location()
	}
	return atClock(now.In(loc), DefaultDueHour, 0)
}

// atClock returns t's calendar date at hour:minute in t's location.
func atClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return atClock(t, 0, 0)
}

var _ DueService = (*Resolver)(nil)
