package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hrygo/duebot/plugin/ticktick"
	boterrors "github.com/hrygo/duebot/server/internal/errors"
	"github.com/hrygo/duebot/server/internal/observability"
	"github.com/hrygo/duebot/server/middleware"
	"github.com/hrygo/duebot/store"
)

// HandleMessage processes one inbound message.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.Chat == nil {
		return
	}

	if name, ok := command(msg); ok {
		if name == "start" {
			reqCtx := observability.NewRequestContext(b.logger, observability.KindStart, msg.Chat.ID)
			b.reply(reqCtx, msg, MsgGreeting)
			reqCtx.Done("start handled")
		}
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	b.handleText(ctx, msg, text)
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message, text string) {
	chatID := msg.Chat.ID
	reqCtx := observability.NewRequestContext(b.logger, observability.KindText, chatID)
	now := b.now()

	if !b.limiter.AllowAt(middleware.ChatKey(chatID), now) {
		b.metrics.RecordRateLimited()
		limitErr := boterrors.RateLimitExceeded("too many messages from chat").WithContext("chat_id", chatID)
		reqCtx.Warn("message rate limited",
			slog.String(observability.LogFieldErrorCode, string(limitErr.Code)),
			slog.String("error", limitErr.Error()),
		)
		b.reply(reqCtx, msg, MsgRateLimited)
		return
	}
	b.metrics.RecordMessage()

	sender := senderLabel(msg.From)
	due := b.resolver.Infer(text, now, b.config.Location)
	dueLabel := ticktick.DueLabel(due)
	title := ticktick.TaskTitle(sender, text)
	reqCtx.Debug("due inferred",
		slog.Int(observability.LogFieldMessageLen, len(text)),
		slog.String(observability.LogFieldDue, ticktick.FormatDueDate(due)),
	)

	createCtx, cancel := context.WithTimeout(ctx, b.config.CreateTimeout)
	err := b.tasks.CreateTask(createCtx, ticktick.NewTask(title, b.config.ProjectID, due))
	cancel()

	record := &store.TaskRecord{
		ChatID:    chatID,
		MessageID: msg.MessageID,
		Sender:    sender,
		Title:     title,
		DueTs:     due.Unix(),
		Timezone:  b.config.Location.String(),
		Status:    store.TaskStatusCreated,
		CreatedTs: now.Unix(),
	}

	if err != nil {
		code := boterrors.Classify(err)
		b.metrics.RecordFailed(string(code))
		attrs := []slog.Attr{slog.String(observability.LogFieldErrorCode, string(code))}
		if apiErr, ok := ticktick.AsAPIError(err); ok {
			attrs = append(attrs, slog.Int("status", apiErr.StatusCode), slog.String("body", apiErr.Body))
		}
		reqCtx.Error("task creation failed", err, attrs...)
		b.reply(reqCtx, msg, MsgTaskFailed)

		record.Status = store.TaskStatusFailed
		record.ErrorCode = string(code)
		b.journalRecord(ctx, reqCtx, record)
		return
	}

	b.metrics.RecordCreated(now)
	b.reply(reqCtx, msg, taskCreatedText(title, dueLabel))
	b.notify(reqCtx, chatID, sender, text, dueLabel)
	b.journalRecord(ctx, reqCtx, record)
	reqCtx.Done("task created", slog.String(observability.LogFieldDue, dueLabel))
}

// reply sends text to msg's chat, quoting msg outside private chats.
func (b *Bot) reply(reqCtx *observability.RequestContext, msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	if !msg.Chat.IsPrivate() {
		out.ReplyToMessageID = msg.MessageID
	}
	if _, err := b.api.Send(out); err != nil {
		reqCtx.Error("failed to send reply", err)
	}
}

// notify copies a created task to the notify chat unless it is the source chat.
func (b *Bot) notify(reqCtx *observability.RequestContext, sourceChatID int64, sender, text, dueLabel string) {
	target := b.config.NotifyChatID
	if target == 0 || target == sourceChatID {
		return
	}
	out := tgbotapi.NewMessage(target, notificationText(sender, text, dueLabel))
	if _, err := b.api.Send(out); err != nil {
		reqCtx.Error("failed to send notification", err, slog.Int64("notify_chat_id", target))
	}
}

func (b *Bot) journalRecord(ctx context.Context, reqCtx *observability.RequestContext, record *store.TaskRecord) {
	if b.journal == nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := b.journal.CreateTaskRecord(writeCtx, record); err != nil {
		err = boterrors.StorageFailed("failed to journal task", err)
		reqCtx.Error("journal write failed", err, slog.String(observability.LogFieldErrorCode, string(boterrors.ErrCodeStorageFailed)))
	}
}
