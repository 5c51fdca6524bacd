package handler

import "github.com/go-telegram/bot"

// Register registers all command and callback handlers on the bot
// instance. Callback identifiers share the payout_ namespace and are
// chosen non-overlapping because prefix matching has no priority order.
func (h *Handler) Register() {
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/payout", bot.MatchTypePrefix, h.handlePayout)

	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "payout_cancel", bot.MatchTypeExact, h.handleCancel)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "payout_card", bot.MatchTypeExact, h.handleSelectCard)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "payout_crypto", bot.MatchTypeExact, h.handleSelectCrypto)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "payout_cur_", bot.MatchTypePrefix, h.handleSelectCurrency)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "payout_paid", bot.MatchTypeExact, h.handleConfirmManual)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "payout_check", bot.MatchTypeExact, h.handleCheckStatus)
}
