package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/payhub-ua/payoutbot/internal/config"
	"github.com/payhub-ua/payoutbot/internal/domain"
)

// AuditLogger mirrors payout milestones into an optional Telegram chat.
// Disabled when LOG_TELEGRAM_CHAT_ID is unset.
type AuditLogger struct {
	bot *bot.Bot
	cfg *config.Config
}

func NewAuditLogger(b *bot.Bot, cfg *config.Config) *AuditLogger {
	return &AuditLogger{bot: b, cfg: cfg}
}

func (l *AuditLogger) log(message string) {
	if l.cfg.LogTelegramChatID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.AuditSendTimeout)
	defer cancel()

	_, err := l.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    l.cfg.LogTelegramChatID,
		Text:      message,
		ParseMode: "Markdown",
	})
	if err != nil {
		slog.Error("failed to send audit log", "error", err)
	}
}

func (l *AuditLogger) LogInvoiceCreated(sess domain.Session) {
	l.log(fmt.Sprintf(
		"🧾 *Invoice Created*\n\n*Operator:* `%d`\n*Recipient:* `%d`\n*Amount:* %s₴ (%s$)\n*Currency:* %s\n*Invoice:* `%s`",
		sess.OperatorID, sess.RecipientID, sess.AmountUAH, sess.AmountUSD,
		domain.CurrencyLabel(sess.PayCurrency), sess.InvoiceID,
	))
}

func (l *AuditLogger) LogPayoutSettled(sess domain.Session, method string) {
	l.log(fmt.Sprintf(
		"✅ *Payout Settled*\n\n*Operator:* `%d`\n*Recipient:* `%d`\n*Amount:* %s₴ (%s$)\n*Method:* %s",
		sess.OperatorID, sess.RecipientID, sess.AmountUAH, sess.AmountUSD, method,
	))
}
