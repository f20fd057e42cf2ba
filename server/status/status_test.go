package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/duebot/server/internal/observability"
	"github.com/hrygo/duebot/server/stats"
	"github.com/hrygo/duebot/store"
)

type fakeJournal struct {
	records  []*store.TaskRecord
	err      error
	lastFind *store.FindTaskRecord
}

func (f *fakeJournal) Stats(context.Context) (*store.JournalStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out store.JournalStats
	for _, r := range f.records {
		if r.Status == store.TaskStatusCreated {
			out.Created++
		} else {
			out.Failed++
		}
	}
	return &out, nil
}

func (f *fakeJournal) ListTaskRecords(_ context.Context, find *store.FindTaskRecord) ([]*store.TaskRecord, error) {
	f.lastFind = find
	if f.err != nil {
		return nil, f.err
	}
	var out []*store.TaskRecord
	for _, r := range f.records {
		if find.Status != nil && r.Status != *find.Status {
			continue
		}
		if find.ChatID != nil && r.ChatID != *find.ChatID {
			continue
		}
		out = append(out, r)
		if find.Limit > 0 && len(out) == find.Limit {
			break
		}
	}
	return out, nil
}

func do(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := NewServer(Config{Version: "0.3.0"}, observability.NewMetrics(), nil, nil, nil)

	rec := do(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, HealthResponse{Status: "ok", Version: "0.3.0"}, body)
}

func TestStats_WithoutJournal(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.RecordMessage()
	metrics.RecordMessage()
	metrics.RecordCreated(time.Date(2024, 9, 3, 12, 0, 0, 0, time.UTC))
	metrics.RecordFailed("TIMEOUT")
	metrics.RecordRateLimited()

	s := NewServer(Config{}, metrics, nil, nil, nil)
	rec := do(t, s, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["messages"])
	assert.EqualValues(t, 1, body["tasks_created"])
	assert.EqualValues(t, 1, body["tasks_failed"])
	assert.EqualValues(t, 1, body["rate_limited"])
	assert.InDelta(t, 50.0, body["success_rate"], 1e-9)
	assert.Equal(t, "2024-09-03T12:00:00Z", body["last_task_time"])
	assert.NotContains(t, body, "journal")
}

func TestStats_WithJournal(t *testing.T) {
	journal := &fakeJournal{records: []*store.TaskRecord{
		{ID: 2, ChatID: 1, Status: store.TaskStatusCreated, CreatedTs: 1725364800},
		{ID: 1, ChatID: 1, Status: store.TaskStatusFailed, CreatedTs: 1725361200},
	}}
	collector := stats.NewCollector(journal, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	collector.Start(ctx)
	defer collector.Stop()

	s := NewServer(Config{}, observability.NewMetrics(), collector, journal, nil)
	rec := do(t, s, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Journal *stats.Stats `json:"journal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Journal)
	assert.Equal(t, int64(1), body.Journal.TotalCreated)
	assert.Equal(t, int64(1), body.Journal.TotalFailed)
}

func TestTasks(t *testing.T) {
	journal := &fakeJournal{records: []*store.TaskRecord{
		{ID: 3, ChatID: 7, Title: "@alice купить хлеб", Status: store.TaskStatusCreated},
		{ID: 2, ChatID: 8, Title: "@bob отчёт", Status: store.TaskStatusFailed, ErrorCode: "TIMEOUT"},
		{ID: 1, ChatID: 7, Title: "@alice позвонить", Status: store.TaskStatusCreated},
	}}
	s := NewServer(Config{}, observability.NewMetrics(), nil, journal, nil)

	tests := []struct {
		name   string
		target string
		code   int
		ids    []int64
	}{
		{name: "all", target: "/api/v1/tasks", code: http.StatusOK, ids: []int64{3, 2, 1}},
		{name: "by chat", target: "/api/v1/tasks?chat_id=7", code: http.StatusOK, ids: []int64{3, 1}},
		{name: "by status", target: "/api/v1/tasks?status=failed", code: http.StatusOK, ids: []int64{2}},
		{name: "limit", target: "/api/v1/tasks?limit=1", code: http.StatusOK, ids: []int64{3}},
		{name: "no match", target: "/api/v1/tasks?chat_id=99", code: http.StatusOK, ids: []int64{}},
		{name: "bad limit", target: "/api/v1/tasks?limit=zero", code: http.StatusBadRequest},
		{name: "negative limit", target: "/api/v1/tasks?limit=-1", code: http.StatusBadRequest},
		{name: "bad chat", target: "/api/v1/tasks?chat_id=abc", code: http.StatusBadRequest},
		{name: "bad status", target: "/api/v1/tasks?status=done", code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.target)
			require.Equal(t, tt.code, rec.Code)
			if tt.code != http.StatusOK {
				return
			}
			var records []*store.TaskRecord
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
			ids := make([]int64, 0, len(records))
			for _, r := range records {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestTasks_LimitCapped(t *testing.T) {
	journal := &fakeJournal{}
	s := NewServer(Config{}, observability.NewMetrics(), nil, journal, nil)

	rec := do(t, s, "/api/v1/tasks?limit=100000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxTaskLimit, journal.lastFind.Limit)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestTasks_JournalDisabled(t *testing.T) {
	s := NewServer(Config{}, observability.NewMetrics(), nil, nil, nil)
	assert.Equal(t, http.StatusNotFound, do(t, s, "/api/v1/tasks").Code)
}

func TestTasks_JournalError(t *testing.T) {
	s := NewServer(Config{}, observability.NewMetrics(), nil, &fakeJournal{err: errors.New("disk I/O error")}, nil)
	assert.Equal(t, http.StatusInternalServerError, do(t, s, "/api/v1/tasks").Code)
}

func TestAddress(t *testing.T) {
	s := NewServer(Config{Addr: "127.0.0.1", Port: 8081}, observability.NewMetrics(), nil, nil, nil)
	assert.Equal(t, "127.0.0.1:8081", s.Address())

	s = NewServer(Config{Port: 8081}, observability.NewMetrics(), nil, nil, nil)
	assert.Equal(t, ":8081", s.Address())
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := NewServer(Config{Addr: "127.0.0.1", Port: 0}, observability.NewMetrics(), nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
