package duetime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/olebedev/when/rules/ru"
	"github.com/pkg/errors"
)

var (
	// "10 января", "10 января 2025", "10 января в 15:00".
	monthDatePattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(\d{1,2})\s*(` + ru.MONTHS_PATTERN[3:] +
		`(?:\s*(\d{4}))?(?:\s*в\s*(\d{1,2}):(\d{2}))?(?:[^\p{L}\p{N}]|$)`)

	dayAfterTomorrowPattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(послезавтра|day\s+after\s+tomorrow)(?:[^\p{L}]|$)`)

	explicitYearPattern = regexp.MustCompile(`(?:^|\D)\d{4}(?:\D|$)`)
)

// whenRules returns the recognizer rule chain. Rules are applied in list
// order, so later rules override earlier ones within a match cluster.
//
// The stock Russian month-date rule is replaced by monthDateRule: it takes
// the year from the wall clock instead of the reference time.
func whenRules() []rules.Rule {
	rs := []rules.Rule{
		prepositionHourRule{},
		ru.Weekday(rules.Override),
		ru.CasualDate(rules.Override),
		ru.CasualTime(rules.Override),
		ru.Hour(rules.Override),
		ru.HourMinute(rules.Override),
		ru.Deadline(rules.Override),
		monthDateRule(),
		ru.DotDateTime(rules.Override),
	}
	rs = append(rs, en.All...)
	rs = append(rs, common.All...)
	// After en.CasualDate, which reads the "tomorrow" in "day after tomorrow".
	return append(rs, dayAfterTomorrowRule())
}

// monthDateRule resolves a Russian day and month name in ref's year unless
// a year is given. The date is applied as an offset from ref so that the
// day never overflows into the following month.
func monthDateRule() rules.Rule {
	return &rules.F{
		RegExp: monthDatePattern,
		Applier: func(m *rules.Match, c *rules.Context, _ *rules.Options, ref time.Time) (bool, error) {
			day, err := strconv.Atoi(m.Captures[0])
			if err != nil {
				return false, errors.Wrap(err, "month date rule: day")
			}
			month, ok := ru.MONTHS[strings.ToLower(m.Captures[1])]
			if !ok {
				return false, nil
			}

			year := ref.Year()
			if m.Captures[2] != "" {
				if year, err = strconv.Atoi(m.Captures[2]); err != nil {
					return false, errors.Wrap(err, "month date rule: year")
				}
			}

			date, ok := calendarDate(year, int(month), day, ref.Location())
			if !ok {
				return false, nil
			}
			c.Duration = atClock(date, ref.Hour(), ref.Minute()).Sub(ref)

			if m.Captures[3] != "" && m.Captures[4] != "" {
				hour, _ := strconv.Atoi(m.Captures[3])
				minute, _ := strconv.Atoi(m.Captures[4])
				if hour > 23 || minute > 59 {
					return false, nil
				}
				c.Hour = &hour
				c.Minute = &minute
			}
			return true, nil
		},
	}
}

// dayAfterTomorrowRule sets the offset to two days, replacing the single
// day a "tomorrow" rule may already have added.
func dayAfterTomorrowRule() rules.Rule {
	return &rules.F{
		RegExp: dayAfterTomorrowPattern,
		Applier: func(_ *rules.Match, c *rules.Context, _ *rules.Options, _ time.Time) (bool, error) {
			c.Duration = 48 * time.Hour
			return true, nil
		},
	}
}

// prepositionHourRule recognises a 24-hour clock after "в": "в 15",
// "в 9:30". It skips the same tokens findTimeToken does, so "в 9 вечера"
// is left to the daypart rules and "в 2024" is not read as an hour.
type prepositionHourRule struct{}

func (prepositionHourRule) Find(text string) *rules.Match {
	for _, loc := range prepositionHourPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2], loc[3]
		if continuesNumber(text[end:]) || daypartSuffixPattern.MatchString(text[end:]) {
			continue
		}
		return &rules.Match{
			Left:    start,
			Right:   end,
			Text:    text[start:end],
			Applier: applyPrepositionHour,
		}
	}
	return nil
}

func applyPrepositionHour(m *rules.Match, c *rules.Context, _ *rules.Options, _ time.Time) (bool, error) {
	hour, minute, ok := parseWordedClock(m.Text)
	if !ok {
		return false, nil
	}
	c.Hour = &hour
	c.Minute = &minute
	return true, nil
}

// rollYearless moves a month-named date that gives no year and has already
// passed to the same day next year. A 29 February with no next-year
// counterpart is returned unchanged.
func rollYearless(text string, t, ref time.Time) time.Time {
	if !monthPattern.MatchString(text) || explicitYearPattern.MatchString(text) {
		return t
	}
	if !t.Before(startOfDay(ref)) {
		return t
	}
	next := t.AddDate(1, 0, 0)
	if next.Day() != t.Day() {
		return t
	}
	return next
}

var _ rules.Rule = prepositionHourRule{}
