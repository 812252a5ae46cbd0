package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/print-shop/internal/infra/metrics"
)

// Telegram pushes low-stock alerts to the shop's admin chat. A nil receiver
// is a no-op, so callers don't have to care whether alerts are configured.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

func (t *Telegram) LowStock(material string, width, remaining, threshold float64) {
	if t == nil || t.api == nil {
		return
	}
	text := fmt.Sprintf("⚠️ Low stock: %s, roll %.0f cm — %.0f cm left (alert threshold %.0f cm)",
		material, width, remaining, threshold)
	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.log.Error("low stock alert failed", "material", material, "err", err)
		return
	}
	metrics.LowStockAlertsTotal.Inc()
}
