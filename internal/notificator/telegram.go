package notificator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/sadaqapass/sadaqa/pkg/logger"
)

const (
	sendTimeout = 10 * time.Second

	startGreeting = "Ассаляму алейкум! 🤲\n\nОткройте мини-приложение, чтобы выбрать фонд, поддержать кампанию или рассчитать закят."
)

// TelegramNotificator delivers HTML messages through the bot. Without a
// token it is disabled and Send is a no-op.
type TelegramNotificator struct {
	logger *logger.Logger
	bot    *bot.Bot

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTelegramNotificator(logger *logger.Logger, token string) (*TelegramNotificator, error) {
	provider := &TelegramNotificator{logger: logger}
	if token == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN is not set, telegram notifications disabled")
		return provider, nil
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(provider.handler),
	}
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	provider.bot = b
	return provider, nil
}

// Enabled reports whether a bot is configured.
func (t *TelegramNotificator) Enabled() bool {
	return t.bot != nil
}

// Start begins polling for updates so /start gets a greeting.
func (t *TelegramNotificator) Start() {
	if t.bot == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.bot.Start(ctx)
	}()
}

func (t *TelegramNotificator) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
}

func (t *TelegramNotificator) Send(ctx context.Context, chatID int64, html string) error {
	if t.bot == nil {
		t.logger.Debug("Telegram disabled, message skipped", "chat_id", chatID)
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      html,
		ParseMode: tgModels.ParseModeHTML,
	}
	if _, err := t.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (t *TelegramNotificator) handler(ctx context.Context, b *bot.Bot, update *tgModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	t.logger.Debug("Telegram update", "username", update.Message.From.Username, "text", update.Message.Text)
	if update.Message.Text != "/start" {
		return
	}
	if err := t.Send(ctx, update.Message.Chat.ID, startGreeting); err != nil {
		t.logger.Error("Failed to send greeting", "chat_id", update.Message.Chat.ID, "error", err)
	}
}
