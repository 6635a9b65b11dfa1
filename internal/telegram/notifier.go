// Package telegram канал уведомлений администратора о фоновых задачах.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mindgarden/internal/logging"
)

type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewNotifier(token string, chatID int64) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram-бота: %w", err)
	}

	logging.Info().Str("bot", api.Self.UserName).Msg("🤖 Канал уведомлений Telegram подключён")
	return &Notifier{api: api, chatID: chatID}, nil
}

func (n *Notifier) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("ошибка отправки сообщения: %w", err)
	}
	return nil
}
