package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hrygo/duebot/plugin/ticktick"
)

// Reply texts.
const (
	MsgGreeting    = "Привет! Отправь мне текст задачи, и я добавлю её в TickTick."
	MsgTaskFailed  = "Не удалось добавить задачу. Проверьте настройки и права доступа."
	MsgRateLimited = "Слишком много сообщений. Попробуйте чуть позже."
)

// taskCreatedText confirms a created task to its sender.
func taskCreatedText(title, dueLabel string) string {
	return fmt.Sprintf("Задача добавлена ✅\n%s\nСрок: %s", title, dueLabel)
}

// notificationText announces a created task to the notify chat.
func notificationText(sender, text, dueLabel string) string {
	return fmt.Sprintf("Новая задача от %s:\n%s\nСрок: %s", sender, text, dueLabel)
}

// senderLabel names the author of msg.
func senderLabel(from *tgbotapi.User) string {
	if from == nil {
		return ticktick.SenderLabel("", "")
	}
	fullName := strings.TrimSpace(from.FirstName + " " + from.LastName)
	return ticktick.SenderLabel(from.UserName, fullName)
}

// command returns the bot command msg starts with, without the slash and
// any @botname suffix. ok is false for plain text.
func command(msg *tgbotapi.Message) (name string, ok bool) {
	if msg.IsCommand() {
		return msg.Command(), true
	}
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name = strings.TrimPrefix(strings.Fields(text)[0], "/")
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return name, true
}
