package telegram

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"perception/internal/adapters/config"
	"perception/pkg/errors"
	"perception/pkg/logger"
)

// Notifier sends leaderboard digests to a single Telegram chat. It is
// send-only; the bot handles no incoming updates.
type Notifier struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewNotifier creates a Telegram notifier
func NewNotifier(cfg config.TelegramConfig) (*Notifier, error) {
	if !cfg.Enabled() {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "telegram bot token and chat id are required")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}

	return &Notifier{
		api:    api,
		chatID: cfg.ChatID,
		// Telegram caps bots at roughly 30 msg/sec; one digest per tick
		// never gets close, the limiter just guards against retry storms
		limiter: rate.NewLimiter(rate.Limit(20), 30),
		log:     logger.Get().With("component", "telegram"),
	}, nil
}

// Send posts a plain-text message to the configured chat
func (n *Notifier) Send(ctx context.Context, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "telegram rate limit wait")
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return errors.Wrap(err, "send telegram message")
	}

	n.log.Debugw("Telegram message sent", "chars", len(text))
	return nil
}
