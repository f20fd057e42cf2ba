package duetime

import (
	"strings"
	"time"

	"github.com/olebedev/when"
)

// maxSearchMatches bounds how many expressions Search reports for one text.
const maxSearchMatches = 8

// Match is one expression recognised by a Searcher.
type Match struct {
	// Text is the matched substring.
	Text string
	// Time is the moment the expression denotes.
	Time time.Time
}

// Searcher is a natural-language date/time recognizer.
type Searcher interface {
	// Search returns every date/time expression found in text, in discovery
	// order. Relative expressions are anchored at ref.
	Search(text string, ref time.Time) []Match

	// ParseOne parses a single time-of-day expression on ref's date.
	ParseOne(expr string, ref time.Time) (time.Time, bool)
}

// WhenSearcher implements Searcher with github.com/olebedev/when using the
// Russian, English and common rule sets plus the rules in whenRules.
type WhenSearcher struct{}

// NewWhenSearcher creates a new WhenSearcher.
func NewWhenSearcher() *WhenSearcher {
	return &WhenSearcher{}
}

// newWhenParser builds a parser per call so searches share no state.
func newWhenParser() *when.Parser {
	w := when.New(nil)
	w.Add(whenRules()...)
	return w
}

// Search repeatedly parses text, blanking each reported expression, until
// the recognizer finds nothing more. A month-named date without a year that
// already passed is moved to next year.
func (s *WhenSearcher) Search(text string, ref time.Time) []Match {
	w := newWhenParser()
	rest := text

	var matches []Match
	for i := 0; i < maxSearchMatches; i++ {
		r, err := w.Parse(rest, ref)
		if err != nil || r == nil || r.Text == "" {
			break
		}
		end := r.Index + len(r.Text)
		if r.Index < 0 || end > len(rest) {
			break
		}

		matched := strings.TrimSpace(r.Text)
		matches = append(matches, Match{
			Text: matched,
			Time: rollYearless(matched, r.Time.In(ref.Location()), ref),
		})
		rest = rest[:r.Index] + strings.Repeat(" ", len(r.Text)) + rest[end:]
	}

	return matches
}

// ParseOne parses a worded time of day such as "в 15" or "9 вечера". The
// built-in rules run first; anything else goes to the recognizer.
func (s *WhenSearcher) ParseOne(expr string, ref time.Time) (time.Time, bool) {
	if hour, minute, ok := parseWordedClock(expr); ok {
		return atClock(ref, hour, minute), true
	}

	r, err := newWhenParser().Parse(expr, ref)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	return r.Time.In(ref.Location()), true
}

var _ Searcher = (*WhenSearcher)(nil)
