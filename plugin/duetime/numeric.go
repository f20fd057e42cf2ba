package duetime

import (
	"cmp"
	"slices"
	"strconv"
	"time"
)

// Windows searched around a numeric date for its time of day, in characters.
const (
	timeWindowBefore = 12
	timeWindowAfter  = 20
)

// Candidate is a due moment found by the numeric extractor.
type Candidate struct {
	Time            time.Time
	HasExplicitTime bool
	// Position is the byte offset of the date token in the source text.
	Position int
}

// ExtractNumeric scans text for numeric D.M[.Y] and YYYY-MM-DD dates and
// pairs each with an adjacent time of day. Calendar-invalid dates are
// skipped. Candidates are returned in order of appearance and carry now's
// location.
//
// Worded times next to a date ("3.09 в 15") are parsed by s.ParseOne; a nil
// searcher falls back to the built-in worded clock rules.
func ExtractNumeric(text string, now time.Time, s Searcher) []Candidate {
	isoSpans := isoDatePattern.FindAllStringSubmatchIndex(text, -1)

	var tokens []dateToken
	for _, loc := range isoSpans {
		year, _ := strconv.Atoi(text[loc[2]:loc[3]])
		month, _ := strconv.Atoi(text[loc[4]:loc[5]])
		day, _ := strconv.Atoi(text[loc[6]:loc[7]])
		if date, ok := calendarDate(year, month, day, now.Location()); ok {
			tokens = append(tokens, dateToken{start: loc[0], end: loc[1], date: date})
		}
	}
	for _, loc := range numericDatePattern.FindAllStringSubmatchIndex(text, -1) {
		// "2024-06-05" holds "06-05", which is not 6 May.
		if overlapsAny(loc[0], loc[1], isoSpans) {
			continue
		}
		if date, ok := resolveNumericDate(text, loc, now); ok {
			tokens = append(tokens, dateToken{start: loc[0], end: loc[1], date: date})
		}
	}
	slices.SortFunc(tokens, func(a, b dateToken) int { return cmp.Compare(a.start, b.start) })

	var candidates []Candidate
	for _, tok := range tokens {
		c := Candidate{
			Time:     atClock(tok.date, DefaultDueHour, 0),
			Position: tok.start,
		}
		if hour, minute, ok := adjacentClock(text, tok.start, tok.end, tok.date, s); ok {
			c.Time = atClock(tok.date, hour, minute)
			c.HasExplicitTime = true
		}
		candidates = append(candidates, c)
	}

	return candidates
}

// dateToken is a calendar date found in text at [start, end).
type dateToken struct {
	start, end int
	date       time.Time
}

func overlapsAny(start, end int, spans [][]int) bool {
	for _, span := range spans {
		if start < span[1] && end > span[0] {
			return true
		}
	}
	return false
}

// resolveNumericDate turns a numericDatePattern match into a calendar date.
// Without a year the date falls in now's year, or the next one if it has
// already passed.
func resolveNumericDate(text string, loc []int, now time.Time) (time.Time, bool) {
	day, _ := strconv.Atoi(text[loc[2]:loc[3]])
	month, _ := strconv.Atoi(text[loc[4]:loc[5]])

	if loc[6] >= 0 {
		yearText := text[loc[6]:loc[7]]
		year, _ := strconv.Atoi(yearText)
		if len(yearText) == 2 {
			year += 2000
		}
		return calendarDate(year, month, day, now.Location())
	}

	date, ok := calendarDate(now.Year(), month, day, now.Location())
	if !ok {
		return time.Time{}, false
	}
	if date.Before(startOfDay(now)) {
		return calendarDate(now.Year()+1, month, day, now.Location())
	}
	return date, true
}

// calendarDate returns midnight of the given day, rejecting dates that
// time.Date would normalise (31.04 -> 01.05).
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// adjacentClock looks for a time of day right after the date token, then
// right before it. The first window yielding a valid clock wins.
func adjacentClock(text string, start, end int, date time.Time, s Searcher) (hour, minute int, ok bool) {
	windows := []string{
		headRunes(text[end:], timeWindowAfter),
		tailRunes(text[:start], timeWindowBefore),
	}

	for _, window := range windows {
		tok, found := findTimeToken(window)
		if !found {
			continue
		}
		if hour, minute, ok := tokenClock(tok, date, s); ok {
			return hour, minute, true
		}
	}
	return 0, 0, false
}

func tokenClock(tok timeToken, anchor time.Time, s Searcher) (hour, minute int, ok bool) {
	if !tok.worded {
		if tok.hour > 23 || tok.minute > 59 {
			return 0, 0, false
		}
		return tok.hour, tok.minute, true
	}

	if s == nil {
		return parseWordedClock(tok.text)
	}
	t, ok := s.ParseOne(tok.text, anchor)
	if !ok {
		return 0, 0, false
	}
	t = t.In(anchor.Location())
	return t.Hour(), t.Minute(), true
}

// selectCandidate picks the first future candidate with an explicit time,
// else the first candidate if it is in the future, else the default due.
func selectCandidate(candidates []Candidate, now time.Time) time.Time {
	for _, c := range candidates {
		if c.HasExplicitTime && c.Time.After(now) {
			return c.Time
		}
	}
	if first := candidates[0]; first.Time.After(now) {
		return first.Time
	}
	return DefaultDue(now, now.Location())
}

func headRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
