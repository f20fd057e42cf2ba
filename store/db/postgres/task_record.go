package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/duebot/store"
)

var taskRecordFields = []string{"chat_id", "message_id", "sender", "title", "due_ts", "timezone", "status", "error_code", "created_ts"}

func (d *DB) CreateTaskRecord(ctx context.Context, create *store.TaskRecord) (*store.TaskRecord, error) {
	args := []any{
		create.ChatID,
		create.MessageID,
		create.Sender,
		create.Title,
		create.DueTs,
		create.Timezone,
		string(create.Status),
		create.ErrorCode,
		create.CreatedTs,
	}

	stmt := `INSERT INTO task_record (` + strings.Join(taskRecordFields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create task_record: %w", err)
	}
	return create, nil
}

func (d *DB) ListTaskRecords(ctx context.Context, find *store.FindTaskRecord) ([]*store.TaskRecord, error) {
	where, args := taskRecordWhere(find)

	query := `SELECT id, ` + strings.Join(taskRecordFields, ", ") + `
		FROM task_record WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id DESC`
	if find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list task_records: %w", err)
	}
	defer rows.Close()

	list := make([]*store.TaskRecord, 0)
	for rows.Next() {
		r := &store.TaskRecord{}
		var status string
		if err := rows.Scan(
			&r.ID,
			&r.ChatID,
			&r.MessageID,
			&r.Sender,
			&r.Title,
			&r.DueTs,
			&r.Timezone,
			&status,
			&r.ErrorCode,
			&r.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task_record: %w", err)
		}
		r.Status = store.TaskStatus(status)
		list = append(list, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task_records: %w", err)
	}
	return list, nil
}

func (d *DB) CountTaskRecords(ctx context.Context, find *store.FindTaskRecord) (int64, error) {
	where, args := taskRecordWhere(find)

	var count int64
	query := `SELECT COUNT(*) FROM task_record WHERE ` + strings.Join(where, " AND ")
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count task_records: %w", err)
	}
	return count, nil
}

func taskRecordWhere(find *store.FindTaskRecord) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ChatID != nil {
		where, args = append(where, "chat_id = "+placeholder(len(args)+1)), append(args, *find.ChatID)
	}
	if find.Status != nil {
		where, args = append(where, "status = "+placeholder(len(args)+1)), append(args, string(*find.Status))
	}
	return where, args
}
