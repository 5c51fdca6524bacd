package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/payhub-ua/payoutbot/internal/config"
	"github.com/payhub-ua/payoutbot/internal/handler"
	"github.com/payhub-ua/payoutbot/internal/middleware"
	"github.com/payhub-ua/payoutbot/internal/service"
	"github.com/payhub-ua/payoutbot/internal/telegram"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if len(cfg.OperatorIDs) == 0 {
		slog.Warn("operator allow-list is empty, /payout will be denied for everyone")
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	store := service.NewSessionStore()
	processor := service.NewNowPaymentsClient(cfg)

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
		),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	notifier := telegram.NewNotifier(b)
	audit := telegram.NewAuditLogger(b, cfg)
	payout := service.NewPayoutService(cfg, store, processor, notifier)

	// Initialize and register handlers
	h := handler.New(handler.Deps{
		Bot:    b,
		Cfg:    cfg,
		Payout: payout,
		Audit:  audit,
	})
	h.Register()

	// IPN listener. The processor is given this URL as ipn_callback_url;
	// payloads are only logged, settlement is driven by operator-triggered
	// status checks.
	mux := http.NewServeMux()
	mux.HandleFunc(config.IPNPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		slog.Info("ipn callback received", "payload", string(body))
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}
	go func() {
		slog.Info("starting ipn listener", "addr", srv.Addr, "path", config.IPNPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ipn listener failed", "error", err)
		}
	}()

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("ipn listener shutdown", "error", err)
	}
	slog.Info("bot stopped gracefully")
}
