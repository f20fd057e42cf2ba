package store

// TaskStatus is the outcome of one task creation attempt.
type TaskStatus string

const (
	TaskStatusCreated TaskStatus = "created"
	TaskStatusFailed  TaskStatus = "failed"
)

// TaskRecord is one journaled task creation attempt.
type TaskRecord struct {
	ID        int64  `json:"id"`
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id"`
	Sender    string `json:"sender"`
	Title     string `json:"title"`
	// DueTs is the inferred due moment as a Unix timestamp.
	DueTs    int64      `json:"due_ts"`
	Timezone string     `json:"timezone"`
	Status   TaskStatus `json:"status"`
	// ErrorCode is empty for created tasks.
	ErrorCode string `json:"error_code,omitempty"`
	CreatedTs int64  `json:"created_ts"`
}

// FindTaskRecord specifies the conditions for finding task records.
type FindTaskRecord struct {
	ChatID *int64
	Status *TaskStatus
	// Limit caps the result; 0 means no limit. Newest records come first.
	Limit int
}

// JournalStats summarises the journal.
type JournalStats struct {
	Created int64 `json:"created"`
	Failed  int64 `json:"failed"`
}
