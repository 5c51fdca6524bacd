package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken string `env:"BOT_TOKEN,required"`

	// Payment processor (NOWPayments)
	NowPaymentsAPIKey string `env:"NOWPAYMENTS_API_KEY,required"`
	NowPaymentsURL    string `env:"NOWPAYMENTS_API_URL" envDefault:"https://api.nowpayments.io/v1"`
	WebhookURL        string `env:"WEBHOOK_URL" envDefault:"https://your-app-url.onrender.com"`

	// UAH -> USD conversion rate, fixed for the process lifetime
	ExchangeRateUAHToUSD float64 `env:"EXCHANGE_RATE_UAH_TO_USD" envDefault:"41.26"`

	// Operators allowed to run /payout
	OperatorIDs []int64 `env:"OPERATOR_IDS" envSeparator:","`

	// IPN listener
	Port int `env:"PORT" envDefault:"3000"`

	// Optional audit chat
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsOperator(telegramID int64) bool {
	for _, id := range c.OperatorIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
