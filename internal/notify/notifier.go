// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers a text message to a user. Delivery failures are reported
// to the caller but never undo the state change that triggered them.
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string) error
}

// messageSender is the part of *tgbotapi.BotAPI the notifier uses.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends messages through the Telegram Bot API. Chat IDs of
// private chats equal user IDs.
type TelegramNotifier struct {
	bot messageSender
}

// NewTelegramNotifier authenticates against the Bot API with token.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot}, nil
}

// Notify sends text to the private chat of userID.
func (n *TelegramNotifier) Notify(ctx context.Context, userID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message to %d: %w", userID, err)
	}
	return nil
}

// LogNotifier writes notifications to the log. It is used when no bot token is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the message.
func (n *LogNotifier) Notify(_ context.Context, userID int64, text string) error {
	n.logger.Info("User notification", "user_id", userID, "text", text)
	return nil
}
