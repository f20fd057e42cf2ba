package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/duebot/internal/profile"
)

// Store provides database access to the task journal.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// CreateTaskRecord journals one task creation attempt.
func (s *Store) CreateTaskRecord(ctx context.Context, create *TaskRecord) (*TaskRecord, error) {
	if create == nil {
		return nil, errors.New("task record is nil")
	}
	if create.Status != TaskStatusCreated && create.Status != TaskStatusFailed {
		return nil, errors.Errorf("invalid task status %q", create.Status)
	}
	if strings.TrimSpace(create.Title) == "" {
		return nil, errors.New("task title is empty")
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	return s.driver.CreateTaskRecord(ctx, create)
}

func (s *Store) ListTaskRecords(ctx context.Context, find *FindTaskRecord) ([]*TaskRecord, error) {
	if find == nil {
		find = &FindTaskRecord{}
	}
	return s.driver.ListTaskRecords(ctx, find)
}

func (s *Store) CountTaskRecords(ctx context.Context, find *FindTaskRecord) (int64, error) {
	if find == nil {
		find = &FindTaskRecord{}
	}
	return s.driver.CountTaskRecords(ctx, find)
}

// Stats returns the created and failed totals.
func (s *Store) Stats(ctx context.Context) (*JournalStats, error) {
	created, failed := TaskStatusCreated, TaskStatusFailed

	createdCount, err := s.driver.CountTaskRecords(ctx, &FindTaskRecord{Status: &created})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count created tasks")
	}
	failedCount, err := s.driver.CountTaskRecords(ctx, &FindTaskRecord{Status: &failed})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count failed tasks")
	}
	return &JournalStats{Created: createdCount, Failed: failedCount}, nil
}
