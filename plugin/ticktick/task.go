// Package ticktick creates tasks through the TickTick Open API.
package ticktick

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DueDateLayout is the wire format TickTick expects for dueDate.
	DueDateLayout = "2006-01-02T15:04:05.000-0700"
	// DueLabelLayout is the human-readable due format used in chat replies.
	DueLabelLayout = "02.01.2006 15:04"

	// UnknownSender labels messages whose author carries neither a username nor a name.
	UnknownSender = "Неизвестный отправитель"

	reminderAtDue = "TRIGGER:PT0S"
)

// Task is the request body of POST /open/v1/task.
type Task struct {
	Title     string   `json:"title"`
	ProjectID string   `json:"projectId"`
	DueDate   string   `json:"dueDate"`
	TimeZone  string   `json:"timeZone,omitempty"`
	IsAllDay  bool     `json:"isAllDay"`
	Reminders []string `json:"reminders,omitempty"`
}

// NewTask builds a timed task due at due, with a reminder firing at the due moment.
func NewTask(title, projectID string, due time.Time) *Task {
	return &Task{
		Title:     title,
		ProjectID: projectID,
		DueDate:   FormatDueDate(due),
		TimeZone:  due.Location().String(),
		IsAllDay:  false,
		Reminders: []string{reminderAtDue},
	}
}

// FormatDueDate renders t with millisecond precision and a numeric offset,
// e.g. 2024-09-03T15:00:00.000+0300.
func FormatDueDate(t time.Time) string {
	return t.Format(DueDateLayout)
}

// DueLabel renders t as DD.MM.YYYY HH:MM.
func DueLabel(t time.Time) string {
	return t.Format(DueLabelLayout)
}

// SenderLabel returns "@username", else the full name, else UnknownSender.
func SenderLabel(username, fullName string) string {
	if username = strings.TrimSpace(username); username != "" {
		return "@" + username
	}
	if fullName = strings.TrimSpace(fullName); fullName != "" {
		return fullName
	}
	return UnknownSender
}

// TaskTitle prefixes the message text with its sender label.
func TaskTitle(sender, text string) string {
	return fmt.Sprintf("%s %s", sender, text)
}
