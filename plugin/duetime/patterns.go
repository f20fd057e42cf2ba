package duetime

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind labels a text span by the tokens it carries.
type Kind int

const (
	// KindNone means the span has neither a date-like nor a time-like token.
	KindNone Kind = iota
	// KindDate means the span has a date-like token only.
	KindDate
	// KindTime means the span has a time-like token only.
	KindTime
	// KindCombined means the span has both.
	KindCombined
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindCombined:
		return "combined"
	default:
		return "none"
	}
}

// Patterns for date/time tokens.
//
// Go's \b is ASCII-only, so Cyrillic words are bounded with explicit
// non-letter classes instead.
var (
	// D.M, D-M, D.M.YY, D.M.YYYY (day first).
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})(?:[./-](\d{4}|\d{2}))?\b`)

	// YYYY-MM-DD, also with dots or slashes.
	isoDatePattern = regexp.MustCompile(`\b(\d{4})[./-](\d{1,2})[./-](\d{1,2})\b`)

	monthPattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:` +
		`январ\p{L}*|феврал\p{L}*|март\p{L}*|апрел\p{L}*|ма[йяе]|июн\p{L}*|июл\p{L}*|август\p{L}*|` +
		`сентябр\p{L}*|октябр\p{L}*|ноябр\p{L}*|декабр\p{L}*|` +
		`january|february|march|april|may|june|july|august|september|october|november|december|` +
		`(?:jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec)\.?` +
		`)(?:[^\p{L}]|$)`)

	weekdayPattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:` +
		`понедельник\p{L}*|вторник\p{L}*|сред[аеуы]|четверг\p{L}*|пятниц\p{L}*|суббот\p{L}*|воскресень\p{L}*|` +
		`monday|tuesday|wednesday|thursday|friday|saturday|sunday` +
		`)(?:[^\p{L}]|$)`)

	relativeDayPattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:` +
		`сегодня|завтра|послезавтра|today|tomorrow|day\s+after\s+tomorrow` +
		`)(?:[^\p{L}]|$)`)

	// H:MM or H.MM.
	clockPattern = regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\b`)

	// H[:MM] am|pm, H[:MM] утра|дня|вечера|ночи.
	daypartPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(?:(am|pm)\b|(утра|дня|вечера|ночи))`)

	// "в 15", "в 9:30", "в 9 часов".
	prepositionHourPattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(в\s*(\d{1,2})(?:[:.](\d{2}))?)`)

	daypartSuffixPattern = regexp.MustCompile(`(?i)^\s*(?:am|pm|утра|дня|вечера|ночи)`)
)

// HasDate reports whether s contains a date-like token.
func HasDate(s string) bool {
	return numericDatePattern.MatchString(s) ||
		monthPattern.MatchString(s) ||
		weekdayPattern.MatchString(s) ||
		relativeDayPattern.MatchString(s)
}

// HasTime reports whether s contains a time-like token.
func HasTime(s string) bool {
	_, ok := findTimeToken(s)
	return ok
}

// Classify labels a span. It is pure and safe for concurrent use.
func Classify(span string) Kind {
	date, clock := HasDate(span), HasTime(span)
	switch {
	case date && clock:
		return KindCombined
	case date:
		return KindDate
	case clock:
		return KindTime
	default:
		return KindNone
	}
}

// timeToken is a time-like token located in a piece of text.
type timeToken struct {
	start, end int
	text       string
	// worded tokens need a parser; clock tokens carry hour and minute.
	worded       bool
	hour, minute int
}

// findTimeToken returns the leftmost time-like token in s. When two tokens
// start at the same offset the longer one wins, so "9:30 pm" is worded.
func findTimeToken(s string) (timeToken, bool) {
	var found []timeToken

	if loc := clockPattern.FindStringSubmatchIndex(s); loc != nil {
		h, _ := strconv.Atoi(s[loc[2]:loc[3]])
		m, _ := strconv.Atoi(s[loc[4]:loc[5]])
		found = append(found, timeToken{start: loc[0], end: loc[1], text: s[loc[0]:loc[1]], hour: h, minute: m})
	}

	if loc := daypartPattern.FindStringIndex(s); loc != nil {
		found = append(found, timeToken{start: loc[0], end: loc[1], text: s[loc[0]:loc[1]], worded: true})
	}

	for _, loc := range prepositionHourPattern.FindAllStringSubmatchIndex(s, -1) {
		start, end := loc[2], loc[3]
		// "в 2024" is not an hour; "в 9 вечера" belongs to daypartPattern.
		if continuesNumber(s[end:]) || daypartSuffixPattern.MatchString(s[end:]) {
			continue
		}
		found = append(found, timeToken{start: start, end: end, text: s[start:end], worded: true})
		break
	}

	if len(found) == 0 {
		return timeToken{}, false
	}
	best := found[0]
	for _, tok := range found[1:] {
		if tok.start < best.start || (tok.start == best.start && tok.end > best.end) {
			best = tok
		}
	}
	return best, true
}

func continuesNumber(rest string) bool {
	if rest == "" {
		return false
	}
	if isDigit(rest[0]) {
		return true
	}
	return len(rest) > 1 && (rest[0] == ':' || rest[0] == '.') && isDigit(rest[1])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// parseWordedClock converts a worded time-of-day expression into a 24-hour
// clock. Supported: "5pm", "12 am", "9 вечера", "2 ночи", "7 утра", "в 15".
func parseWordedClock(expr string) (hour, minute int, ok bool) {
	if m := daypartPattern.FindStringSubmatch(expr); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		suffix := strings.ToLower(m[3] + m[4])
		hour, ok = applyDaypart(hour, suffix)
		if !ok || minute > 59 {
			return 0, 0, false
		}
		return hour, minute, true
	}

	if m := prepositionHourPattern.FindStringSubmatch(expr); m != nil {
		hour, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			minute, _ = strconv.Atoi(m[3])
		}
		if hour > 23 || minute > 59 {
			return 0, 0, false
		}
		return hour, minute, true
	}

	return 0, 0, false
}

// applyDaypart maps a 12-hour reading plus its daypart onto a 24-hour clock.
func applyDaypart(hour int, suffix string) (int, bool) {
	if hour > 23 {
		return 0, false
	}
	if hour > 12 {
		// "15 дня" is already a 24-hour reading.
		return hour, true
	}
	switch suffix {
	case "pm", "дня", "вечера":
		if hour < 12 {
			hour += 12
		}
	case "am", "утра":
		if hour == 12 {
			hour = 0
		}
	case "ночи":
		switch {
		case hour == 12:
			hour = 0
		case hour >= 9:
			hour += 12
		}
	}
	return hour, true
}
