package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/portalevent/portal-api/internal/config"
)

type chatClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts chat messages to a single admin chat.
type Telegram struct {
	client chatClient
	chatID int64
}

func NewTelegram(conf *config.TelegramConfig) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(conf.BotToken)
	if err != nil {
		return nil, fmt.Errorf("tgbotapi.NewBotAPI -> %w", err)
	}

	return newTelegram(bot, conf.ChatID), nil
}

func newTelegram(client chatClient, chatID int64) *Telegram {
	return &Telegram{
		client: client,
		chatID: chatID,
	}
}

func (t *Telegram) SendChatMessage(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := t.client.Send(msg); err != nil {
		return fmt.Errorf("t.client.Send -> %w", err)
	}

	return nil
}
