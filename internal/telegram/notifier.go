package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/payhub-ua/payoutbot/internal/domain"
)

// Notifier delivers payout messages to recipients. Delivery is
// best-effort; the caller decides what a failure means.
type Notifier struct {
	bot *bot.Bot
}

func NewNotifier(b *bot.Bot) *Notifier {
	return &Notifier{bot: b}
}

// NotifyInvoice sends the pay link for a freshly created invoice to the
// payout recipient.
func (n *Notifier) NotifyInvoice(ctx context.Context, sess domain.Session, currencyLabel string) error {
	text := fmt.Sprintf(
		"🪙 Вам виставлено рахунок на %s₴ (%s$) в %s:\n%s\nID рахунку: `%s`\nБудь ласка, здійсніть оплату.",
		sess.AmountUAH, sess.AmountUSD, currencyLabel, sess.PayURL, sess.InvoiceID,
	)

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    sess.RecipientID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("send invoice to recipient %d: %w", sess.RecipientID, err)
	}
	return nil
}
