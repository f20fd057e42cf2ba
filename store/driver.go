package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Type returns the driver name, matching a directory under migration/.
	Type() string
	// Migrate executes a schema script in a single transaction.
	Migrate(ctx context.Context, schema string) error

	// SystemSetting model related methods.
	GetSystemSetting(ctx context.Context, name string) (string, error)
	UpsertSystemSetting(ctx context.Context, name, value string) error

	// TaskRecord model related methods.
	CreateTaskRecord(ctx context.Context, create *TaskRecord) (*TaskRecord, error)
	ListTaskRecords(ctx context.Context, find *FindTaskRecord) ([]*TaskRecord, error)
	CountTaskRecords(ctx context.Context, find *FindTaskRecord) (int64, error)
}
