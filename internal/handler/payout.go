package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/payhub-ua/payoutbot/internal/domain"
	"github.com/payhub-ua/payoutbot/internal/service"
	tg "github.com/payhub-ua/payoutbot/internal/telegram"
	"github.com/shopspring/decimal"
)

func (h *Handler) handlePayout(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	operatorID := update.Message.From.ID

	if !h.cfg.IsOperator(operatorID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ У вас немає доступу до цієї команди.",
		})
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 3 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: "❌ Неправильний формат команди.\n" +
				"Використовуйте: `/payout <user_id> <amount_in_uah>`\n" +
				"Наприклад: `/payout 123456789 500`",
			ParseMode: models.ParseModeMarkdown,
		})
		return
	}

	recipientID, idErr := strconv.ParseInt(parts[1], 10, 64)
	amount, amountErr := decimal.NewFromString(parts[2])
	if idErr != nil || amountErr != nil || amount.LessThanOrEqual(decimal.Zero) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Неправильний формат ID користувача або суми.",
		})
		return
	}

	res, err := h.payout.Handle(ctx, service.Initiate{
		OperatorID:  operatorID,
		RecipientID: recipientID,
		AmountUAH:   amount,
	})
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   errorText(err),
		})
		return
	}

	sess := res.Session
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf(
			"💳 Створення рахунку на %s₴ (%s$) для користувача `%d`.\nОберіть метод оплати:",
			sess.AmountUAH, sess.AmountUSD, sess.RecipientID,
		),
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: methodKeyboard(),
	})
}

func (h *Handler) handleSelectCard(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.handleCallback(ctx, b, update, service.SelectCard{OperatorID: callbackOperator(update)})
}

func (h *Handler) handleSelectCrypto(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.handleCallback(ctx, b, update, service.SelectCrypto{OperatorID: callbackOperator(update)})
}

func (h *Handler) handleSelectCurrency(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	code := strings.TrimPrefix(update.CallbackQuery.Data, "payout_cur_")
	h.handleCallback(ctx, b, update, service.SelectCurrency{OperatorID: callbackOperator(update), Code: code})
}

func (h *Handler) handleConfirmManual(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.handleCallback(ctx, b, update, service.ConfirmManual{OperatorID: callbackOperator(update)})
}

func (h *Handler) handleCheckStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.handleCallback(ctx, b, update, service.CheckStatus{OperatorID: callbackOperator(update)})
}

func (h *Handler) handleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.handleCallback(ctx, b, update, service.Cancel{OperatorID: callbackOperator(update)})
}

func callbackOperator(update *models.Update) int64 {
	return update.CallbackQuery.From.ID
}

// handleCallback runs one machine event and edits the operator message
// with the outcome. Access denial is answered as an alert without
// touching the message.
func (h *Handler) handleCallback(ctx context.Context, b *bot.Bot, update *models.Update, ev service.Event) {
	var chatID int64
	var messageID int
	if msg := update.CallbackQuery.Message.Message; msg != nil {
		chatID = msg.Chat.ID
		messageID = msg.ID
	}

	res, err := h.payout.Handle(ctx, ev)
	if errors.Is(err, domain.ErrAccessDenied) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
			Text:            "❌ У вас немає доступу.",
			ShowAlert:       true,
		})
		return
	}

	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
	})

	if err != nil {
		slog.Error("payout event failed", "error", err, "operator_id", callbackOperator(update))
		h.edit(ctx, b, chatID, messageID, errorText(err), nil)
		return
	}

	h.renderResult(ctx, b, chatID, messageID, res)
}

func (h *Handler) renderResult(ctx context.Context, b *bot.Bot, chatID int64, messageID int, res *service.Result) {
	sess := res.Session

	switch res.Outcome {
	case service.OutcomeMethodPrompt:
		h.edit(ctx, b, chatID, messageID, fmt.Sprintf(
			"💳 Створення рахунку на %s₴ (%s$) для користувача `%d`.\nОберіть метод оплати:",
			sess.AmountUAH, sess.AmountUSD, sess.RecipientID,
		), methodKeyboard())

	case service.OutcomeCardPrompt:
		h.edit(ctx, b, chatID, messageID, fmt.Sprintf(
			"💳 Оплата %s₴ (%s$) карткою.\n(Тут будуть реквізити для оплати)\nПісля оплати натисніть кнопку '✅ Оплачено'.",
			sess.AmountUAH, sess.AmountUSD,
		), tg.InlineKeyboard(
			tg.ButtonRow(tg.InlineButton("✅ Оплачено", "payout_paid")),
			tg.ButtonRow(tg.InlineButton("⬅️ Назад", "payout_cancel")),
		))

	case service.OutcomeCurrencyPrompt:
		var rows [][]models.InlineKeyboardButton
		for _, c := range domain.Currencies {
			rows = append(rows, tg.ButtonRow(tg.InlineButton(c.Label, "payout_cur_"+c.Code)))
		}
		rows = append(rows, tg.ButtonRow(tg.InlineButton("⬅️ Назад", "payout_cancel")))
		h.edit(ctx, b, chatID, messageID, fmt.Sprintf(
			"🪙 Оберіть криптовалюту для створення рахунку на %s₴ (%s$):",
			sess.AmountUAH, sess.AmountUSD,
		), tg.InlineKeyboard(rows...))

	case service.OutcomeInvoiceCreated:
		h.audit.LogInvoiceCreated(sess)
		text := fmt.Sprintf(
			"✅ Рахунок створено та надіслано користувачу `%d`.\nПосилання: %s",
			sess.RecipientID, sess.PayURL,
		)
		if res.NotifyErr != nil {
			slog.Error("failed to deliver invoice to recipient",
				"error", res.NotifyErr, "recipient_id", sess.RecipientID)
			text = fmt.Sprintf(
				"❌ Рахунок створено, але не вдалося надіслати користувачу: %v\nПосилання: %s",
				res.NotifyErr, sess.PayURL,
			)
		}
		h.edit(ctx, b, chatID, messageID, text, invoiceKeyboard(sess.PayURL))

	case service.OutcomeStatusPending:
		h.edit(ctx, b, chatID, messageID, fmt.Sprintf(
			"⏳ Статус оплати: `%s`. Будь ласка, зачекайте або перевірте ще раз.",
			res.Status,
		), tg.InlineKeyboard(
			tg.ButtonRow(tg.InlineButton("🔄 Перевірити ще раз", "payout_check")),
			tg.ButtonRow(tg.InlineButton("⬅️ Назад", "payout_cancel")),
		))

	case service.OutcomeStatusStalled:
		h.edit(ctx, b, chatID, messageID, fmt.Sprintf(
			"❌ Оплата не пройшла або була скасована. Статус: `%s`.",
			res.Status,
		), tg.InlineKeyboard(
			tg.ButtonRow(tg.InlineButton("🔄 Перевірити ще раз", "payout_check")),
			tg.ButtonRow(tg.InlineButton("⬅️ Назад", "payout_cancel")),
		))

	case service.OutcomeSettled:
		h.audit.LogPayoutSettled(sess, "NOWPayments")
		h.edit(ctx, b, chatID, messageID,
			"✅ Оплата успішно пройшла!\nІнформуйте користувача про подальші дії.", nil)

	case service.OutcomeManualConfirmed:
		h.audit.LogPayoutSettled(sess, "Картка (вручну)")
		h.edit(ctx, b, chatID, messageID,
			"✅ Оплата карткою підтверджена вручну.\nІнформуйте користувача про подальші дії.", nil)

	case service.OutcomeCancelled:
		h.edit(ctx, b, chatID, messageID, "❌ Створення рахунку скасовано.", nil)
	}
}

func (h *Handler) edit(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string, markup *models.InlineKeyboardMarkup) {
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.EditMessageText(ctx, params); err != nil {
		slog.Error("edit operator message", "error", err, "chat_id", chatID)
	}
}

func methodKeyboard() *models.InlineKeyboardMarkup {
	return tg.InlineKeyboard(
		tg.ButtonRow(tg.InlineButton("💳 Оплата карткою", "payout_card")),
		tg.ButtonRow(tg.InlineButton("🪙 Криптовалюта", "payout_crypto")),
		tg.ButtonRow(tg.InlineButton("⬅️ Назад", "payout_cancel")),
	)
}

func invoiceKeyboard(payURL string) *models.InlineKeyboardMarkup {
	return tg.InlineKeyboard(
		tg.ButtonRow(tg.URLButton("🔗 Перейти до оплати", payURL)),
		tg.ButtonRow(tg.InlineButton("🔄 Перевірити статус", "payout_check")),
		tg.ButtonRow(tg.InlineButton("⬅️ Назад", "payout_cancel")),
	)
}

func errorText(err error) string {
	var procErr *domain.ProcessorError
	switch {
	case errors.Is(err, domain.ErrNoSession):
		return "❌ Помилка: інформація про платіж втрачена. Спробуйте ще раз."
	case errors.Is(err, domain.ErrNoInvoice):
		return "❌ Не знайдено ID рахунку для перевірки."
	case errors.Is(err, domain.ErrInvalidAmount):
		return "❌ Сума в USD занадто мала для створення рахунку."
	case errors.As(err, &procErr):
		if procErr.Op == "invoice status" {
			return fmt.Sprintf("❌ Помилка перевірки статусу оплати: %v", procErr)
		}
		return fmt.Sprintf("❌ Помилка створення посилання для оплати: %v", procErr)
	default:
		return fmt.Sprintf("❌ Помилка: %v", err)
	}
}
