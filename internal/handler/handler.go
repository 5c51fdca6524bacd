package handler

import (
	"github.com/go-telegram/bot"
	"github.com/payhub-ua/payoutbot/internal/config"
	"github.com/payhub-ua/payoutbot/internal/service"
	"github.com/payhub-ua/payoutbot/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot    *bot.Bot
	cfg    *config.Config
	payout *service.PayoutService
	audit  *telegram.AuditLogger
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot    *bot.Bot
	Cfg    *config.Config
	Payout *service.PayoutService
	Audit  *telegram.AuditLogger
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:    deps.Bot,
		cfg:    deps.Cfg,
		payout: deps.Payout,
		audit:  deps.Audit,
	}
}
