package main

import (
	"log/slog"
	"time"

	"github.com/HazemSalah29/bracketesports-sub001/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" envDefault:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Postgres config.PostgresConfig

	// RefundLeadTime is how long before a tournament's start time paid
	// entries stop being refundable.
	RefundLeadTime time.Duration `env:"REFUND_LEAD_TIME" envDefault:"1h"`

	CoinPriceCents int64 `env:"COIN_PRICE_CENTS" envDefault:"10"`

	GatewayBaseURL string `env:"GATEWAY_BASE_URL"`
	GatewayAPIKey  string `env:"GATEWAY_API_KEY"`
}
