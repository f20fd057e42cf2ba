package duetime

import (
	"sync"
	"time"
)

// MockSearcher is a scripted Searcher for testing.
type MockSearcher struct {
	// Matches is returned by every Search call.
	Matches []Match
	// Clocks maps ParseOne expressions to the time of day they denote.
	Clocks map[string]time.Time

	mu          sync.Mutex
	searchCalls int
	parsed      []string
}

// NewMockSearcher creates a MockSearcher returning matches from Search.
func NewMockSearcher(matches ...Match) *MockSearcher {
	return &MockSearcher{
		Matches: matches,
		Clocks:  make(map[string]time.Time),
	}
}

// Search returns a copy of the scripted matches.
func (m *MockSearcher) Search(_ string, _ time.Time) []Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	return append([]Match(nil), m.Matches...)
}

// ParseOne returns the scripted clock for expr on ref's date.
func (m *MockSearcher) ParseOne(expr string, ref time.Time) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parsed = append(m.parsed, expr)

	clock, ok := m.Clocks[expr]
	if !ok {
		return time.Time{}, false
	}
	return atClock(ref, clock.Hour(), clock.Minute()), true
}

// SearchCalls returns how many times Search ran (for testing).
func (m *MockSearcher) SearchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls
}

// Parsed returns the expressions handed to ParseOne (for testing).
func (m *MockSearcher) Parsed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.parsed...)
}

var _ Searcher = (*MockSearcher)(nil)
