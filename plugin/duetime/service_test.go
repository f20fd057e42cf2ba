package duetime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layout = "2006-01-02 15:04"

func TestResolver_NoTokensYieldsDefault(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 6, 10, 9, 0, 0, 0, loc)

	searcher := NewMockSearcher()
	resolver := NewResolver(searcher)

	got := resolver.Infer("купить молоко", fixedNow, loc)
	assert.Equal(t, "2024-06-10 23:00", got.Format(layout))
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 1, searcher.SearchCalls())
}

func TestResolver_NumericDates(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 6, 10, 9, 0, 0, 0, loc)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"future date without time", "подарок 25.12.2030", "2030-12-25 23:00"},
		{"future date with time", "25.12.2030 14:30", "2030-12-25 14:30"},
		{"bare date already passed", "01.01", "2025-01-01 23:00"},
		{"past date and time", "01.01.2020 10:00", "2024-06-10 23:00"},
		{"explicit time preferred", "01.02 купить молоко и хлеб; 05.03 10:00 встреча", "2025-03-05 10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := NewMockSearcher(Match{Text: "завтра", Time: fixedNow.AddDate(0, 0, 1)})
			got := NewResolver(searcher).Infer(tt.input, fixedNow, loc)
			assert.Equal(t, tt.want, got.Format(layout))
			// Numeric dates never reach the recognizer.
			assert.Zero(t, searcher.SearchCalls())
		})
	}
}

func TestResolver_InvalidNumericFallsBackToSearch(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 6, 10, 9, 0, 0, 0, loc)

	searcher := NewMockSearcher(Match{Text: "завтра", Time: time.Date(2024, 6, 11, 9, 0, 0, 0, loc)})
	got := NewResolver(searcher).Infer("31.04 завтра", fixedNow, loc)

	assert.Equal(t, "2024-06-11 23:00", got.Format(layout))
	assert.Equal(t, 1, searcher.SearchCalls())
}

func TestResolver_SearchLadder(t *testing.T) {
	loc := moscow(t)
	// Monday 2024-06-10 09:00
	fixedNow := time.Date(2024, 6, 10, 9, 0, 0, 0, loc)
	at := func(day, hour, minute int) time.Time {
		return time.Date(2024, 6, day, hour, minute, 0, 0, loc)
	}

	tests := []struct {
		name    string
		matches []Match
		want    string
	}{
		{
			name: "combined wins over earlier date",
			matches: []Match{
				{Text: "в пятницу", Time: at(14, 9, 0)},
				{Text: "завтра в 10:00", Time: at(11, 10, 0)},
			},
			want: "2024-06-11 10:00",
		},
		{
			name: "date and time are paired",
			matches: []Match{
				{Text: "в 10:00", Time: at(10, 10, 0)},
				{Text: "завтра", Time: at(11, 9, 0)},
			},
			want: "2024-06-11 10:00",
		},
		{
			name:    "date only gets default hour",
			matches: []Match{{Text: "в пятницу", Time: at(14, 9, 0)}},
			want:    "2024-06-14 23:00",
		},
		{
			name:    "time later today",
			matches: []Match{{Text: "в 18:00", Time: at(10, 18, 0)}},
			want:    "2024-06-10 18:00",
		},
		{
			name:    "time already passed rolls to tomorrow",
			matches: []Match{{Text: "в 8 утра", Time: at(10, 8, 0)}},
			want:    "2024-06-11 08:00",
		},
		{
			name:    "unclassified match used as parsed",
			matches: []Match{{Text: "через 2 часа", Time: at(10, 11, 0)}},
			want:    "2024-06-10 11:00",
		},
		{
			name:    "past result collapses to default",
			matches: []Match{{Text: "вчера", Time: at(9, 9, 0)}},
			want:    "2024-06-10 23:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewResolver(NewMockSearcher(tt.matches...)).Infer("текст задачи", fixedNow, loc)
			assert.Equal(t, tt.want, got.Format(layout))
			assert.Equal(t, loc, got.Location())
		})
	}
}

func TestResolver_BareTimeEvening(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 6, 10, 20, 0, 0, 0, loc)

	searcher := NewMockSearcher(Match{Text: "в 18:00", Time: time.Date(2024, 6, 10, 18, 0, 0, 0, loc)})
	got := NewResolver(searcher).Infer("в 18:00", fixedNow, loc)

	assert.Equal(t, "2024-06-11 18:00", got.Format(layout))
}

func TestResolver_Scenario(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 1, 9, 0, 0, 0, loc)

	got := NewResolver(nil).Infer("созвон 3.09 в 15", fixedNow, loc)
	assert.True(t, time.Date(2024, 9, 3, 15, 0, 0, 0, loc).Equal(got), "got %s", got)
}

func TestResolver_NaturalLanguage(t *testing.T) {
	loc := moscow(t)
	// Monday 2024-06-10 09:00
	fixedNow := time.Date(2024, 6, 10, 9, 0, 0, 0, loc)
	resolver := NewResolver(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"month date passed this year", "10 января", "2025-01-10 23:00"},
		{"month date later this year", "20 июня", "2024-06-20 23:00"},
		{"month date with year and time", "отчёт 10 января 2025 в 15:00", "2025-01-10 15:00"},
		{"english month date passed", "June 5", "2025-06-05 23:00"},
		{"same weekday means next week", "в понедельник", "2024-06-17 23:00"},
		{"weekday later this week", "созвон в пятницу", "2024-06-14 23:00"},
		{"day after tomorrow", "послезавтра", "2024-06-12 23:00"},
		{"day after tomorrow with time", "послезавтра в 10:00", "2024-06-12 10:00"},
		{"english day after tomorrow", "day after tomorrow", "2024-06-12 23:00"},
		{"tomorrow with time", "завтра в 18:00", "2024-06-11 18:00"},
		{"preposition hour", "созвон в 15", "2024-06-10 15:00"},
		{"iso date", "отчёт 2024-06-20", "2024-06-20 23:00"},
		{"nothing recognised", "купить молоко", "2024-06-10 23:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Infer(tt.input, fixedNow, loc)
			assert.Equal(t, tt.want, got.Format(layout))
			assert.Equal(t, loc, got.Location())
		})
	}
}

func TestResolver_ConvertsToTargetLocation(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 6, 10, 6, 0, 0, 0, time.UTC)

	got := NewResolver(NewMockSearcher()).Infer("25.12.2030", fixedNow, loc)
	assert.Equal(t, "Europe/Moscow", got.Location().String())
	assert.Equal(t, "2030-12-25 23:00", got.Format(layout))

	// Default due follows the target date, not now's UTC date.
	late := time.Date(2024, 6, 10, 22, 30, 0, 0, time.UTC) // 01:30 on the 11th in Moscow
	got = NewResolver(NewMockSearcher()).Infer("без даты", late, loc)
	assert.Equal(t, "2024-06-11 23:00", got.Format(layout))
}

func TestResolver_Idempotent(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 1, 9, 0, 0, 0, loc)
	resolver := NewResolver(nil)

	first := resolver.Infer("созвон 3.09 в 15", fixedNow, loc)
	second := resolver.Infer("созвон 3.09 в 15", fixedNow, loc)
	assert.True(t, first.Equal(second))
}

func TestResolver_ConcurrentUse(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 1, 9, 0, 0, 0, loc)
	resolver := NewResolver(nil)
	want := time.Date(2024, 9, 3, 15, 0, 0, 0, loc)

	var wg sync.WaitGroup
	results := make([]time.Time, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = resolver.Infer("созвон 3.09 в 15", fixedNow, loc)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.True(t, want.Equal(got), "got %s", got)
	}
}

func TestDefaultDue(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 6, 10, 23, 30, 0, 0, loc)

	got := DefaultDue(fixedNow, loc)
	assert.Equal(t, "2024-06-10 23:00", got.Format(layout))
	assert.False(t, got.After(fixedNow))
}
