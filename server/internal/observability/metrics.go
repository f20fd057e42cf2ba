package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects in-process counters for the bot.
type Metrics struct {
	messages    atomic.Int64
	created     atomic.Int64
	failed      atomic.Int64
	rateLimited atomic.Int64

	mu           sync.Mutex
	lastTaskTime time.Time
	failuresBy   map[string]int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		failuresBy: make(map[string]int64),
	}
}

// RecordMessage records an accepted inbound text message.
func (m *Metrics) RecordMessage() {
	m.messages.Add(1)
}

// RecordCreated records a task TickTick accepted at t.
func (m *Metrics) RecordCreated(t time.Time) {
	m.created.Add(1)

	m.mu.Lock()
	if t.After(m.lastTaskTime) {
		m.lastTaskTime = t
	}
	m.mu.Unlock()
}

// RecordFailed records a task that could not be created, keyed by error code.
func (m *Metrics) RecordFailed(code string) {
	m.failed.Add(1)

	m.mu.Lock()
	m.failuresBy[code]++
	m.mu.Unlock()
}

// RecordRateLimited records a message rejected by flood control.
func (m *Metrics) RecordRateLimited() {
	m.rateLimited.Add(1)
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.messages.Store(0)
	m.created.Store(0)
	m.failed.Store(0)
	m.rateLimited.Store(0)

	m.mu.Lock()
	m.lastTaskTime = time.Time{}
	m.failuresBy = make(map[string]int64)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	failures := make(map[string]int64, len(m.failuresBy))
	for code, n := range m.failuresBy {
		failures[code] = n
	}

	s := &MetricsSnapshot{
		Messages:     m.messages.Load(),
		TasksCreated: m.created.Load(),
		TasksFailed:  m.failed.Load(),
		RateLimited:  m.rateLimited.Load(),
		FailuresBy:   failures,
	}
	if !m.lastTaskTime.IsZero() {
		last := m.lastTaskTime
		s.LastTaskTime = &last
	}
	return s
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	Messages     int64            `json:"messages"`
	TasksCreated int64            `json:"tasks_created"`
	TasksFailed  int64            `json:"tasks_failed"`
	RateLimited  int64            `json:"rate_limited"`
	FailuresBy   map[string]int64 `json:"failures_by_code,omitempty"`
	LastTaskTime *time.Time       `json:"last_task_time,omitempty"`
}

// SuccessRate returns the task success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	total := s.TasksCreated + s.TasksFailed
	if total == 0 {
		return 100.0
	}
	return float64(s.TasksCreated) / float64(total) * 100.0
}
