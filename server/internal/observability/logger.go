package observability

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldChatID is the field name for the Telegram chat ID.
	LogFieldChatID = "chat_id"
	// LogFieldMessageKind is the field name for the inbound message kind.
	LogFieldMessageKind = "message_kind"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldMessageLen is the field name for message length.
	LogFieldMessageLen = "message_length"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
	// LogFieldDue is the field name for the inferred due moment.
	LogFieldDue = "due"
)

// Message kinds.
const (
	KindStart = "start"
	KindText  = "text"
)

// NewLogger builds the process logger: a text handler at DEBUG in dev mode,
// a JSON handler at INFO otherwise.
func NewLogger(w io.Writer, mode string) *slog.Logger {
	if mode == "dev" {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// RequestContext carries structured logging state for one inbound chat message.
type RequestContext struct {
	RequestID string
	ChatID    int64
	Kind      string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewRequestContext creates a new request context with a generated request ID.
func NewRequestContext(logger *slog.Logger, kind string, chatID int64) *RequestContext {
	return &RequestContext{
		RequestID: uuid.New().String(),
		ChatID:    chatID,
		Kind:      kind,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Info logs an info message.
func (r *RequestContext) Info(msg string, attrs ...slog.Attr) {
	r.log(slog.LevelInfo, msg, attrs)
}

// Debug logs a debug message.
func (r *RequestContext) Debug(msg string, attrs ...slog.Attr) {
	r.log(slog.LevelDebug, msg, attrs)
}

// Warn logs a warning message.
func (r *RequestContext) Warn(msg string, attrs ...slog.Attr) {
	r.log(slog.LevelWarn, msg, attrs)
}

// Error logs an error message with the error.
func (r *RequestContext) Error(msg string, err error, attrs ...slog.Attr) {
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	r.log(slog.LevelError, msg, attrs)
}

// Done logs completion of the message with its duration.
func (r *RequestContext) Done(msg string, attrs ...slog.Attr) {
	attrs = append(attrs, slog.Int64(LogFieldDuration, r.DurationMs()))
	r.log(slog.LevelInfo, msg, attrs)
}

// DurationMs returns the elapsed time in milliseconds.
func (r *RequestContext) DurationMs() int64 {
	return time.Since(r.StartTime).Milliseconds()
}

func (r *RequestContext) log(level slog.Level, msg string, attrs []slog.Attr) {
	combined := append([]slog.Attr{
		slog.String(LogFieldRequestID, r.RequestID),
		slog.Int64(LogFieldChatID, r.ChatID),
		slog.String(LogFieldMessageKind, r.Kind),
	}, attrs...)
	r.Logger.LogAttrs(context.Background(), level, msg, combined...)
}
