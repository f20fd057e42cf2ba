// Package duetime infers a task's due moment from free-form Russian/English
// chat text.
package duetime

import "time"

// DueService defines the due-moment inference interface.
// Consumers: server/bot, cmd/duebot infer.
type DueService interface {
	// Infer returns the due moment for text as seen at now, in loc.
	// Supports: "25.12.2030 14:30", "созвон 3.09 в 15", "завтра в 18:00", "в 9 вечера".
	// Never fails: text without a usable date yields DefaultDue(now, loc).
	Infer(text string, now time.Time, loc *time.Location) time.Time
}
