package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

const (
	defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"
	defaultCurrency  = "AOA"
)

// ErrMissingDatabaseURI is returned when LEDGER_DB_URI is unset. The ledger
// cannot start without a store.
var ErrMissingDatabaseURI = errors.New("LEDGER_DB_URI environment variable not set")

// Config holds application configuration.
type Config struct {
	DatabaseURI   string
	Port          string
	IsProduction  bool
	LogLevel      slog.Level
	RunMigrations bool

	// LedgerCurrency is the ISO 4217 code stamped on every transaction and entry.
	LedgerCurrency string

	JWTSecret string
	JWTIssuer string

	// RateLimit uses the limiter format, e.g. "100-M" for 100 requests per minute.
	RateLimit limiter.Rate

	// AllowedOrigins lists the origins allowed by CORS. Empty disables CORS.
	AllowedOrigins []string

	TracingEnabled bool
	OTLPEndpoint   string
	ServiceName    string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("LEDGER_DB_URI", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("RUN_MIGRATIONS", true)
	viper.SetDefault("LEDGER_CURRENCY", defaultCurrency)
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_ISSUER", "ledger-engine")
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	viper.SetDefault("OTEL_SERVICE_NAME", "ledger-engine")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURI:    strings.TrimSpace(viper.GetString("LEDGER_DB_URI")),
		Port:           viper.GetString("PORT"),
		IsProduction:   viper.GetBool("IS_PRODUCTION"),
		RunMigrations:  viper.GetBool("RUN_MIGRATIONS"),
		JWTSecret:      viper.GetString("JWT_SECRET"),
		JWTIssuer:      viper.GetString("JWT_ISSUER"),
		TracingEnabled: viper.GetBool("TRACING_ENABLED"),
		OTLPEndpoint:   viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:    viper.GetString("OTEL_SERVICE_NAME"),
	}

	if cfg.DatabaseURI == "" {
		return nil, ErrMissingDatabaseURI
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT not set, using default", slog.String("port", cfg.Port))
	}

	level, err := parseLogLevel(viper.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	currency, err := parseCurrency(viper.GetString("LEDGER_CURRENCY"))
	if err != nil {
		return nil, err
	}
	cfg.LedgerCurrency = currency

	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = defaultJWTSecret
		slog.Warn("JWT_SECRET not set, using default insecure key")
	}

	rate, err := limiter.NewRateFromFormatted(viper.GetString("RATE_LIMIT"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", viper.GetString("RATE_LIMIT"), err)
	}
	cfg.RateLimit = rate

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

// parseCurrency accepts ISO 4217 codes known to go-money whose minor unit is
// cents, matching the two fractional digits amounts may carry.
func parseCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	currency := money.GetCurrency(code)
	if currency == nil {
		return "", fmt.Errorf("invalid LEDGER_CURRENCY %q: unknown ISO 4217 code", code)
	}
	if currency.Fraction != 2 {
		return "", fmt.Errorf("invalid LEDGER_CURRENCY %q: %d fractional digits, ledger amounts carry 2", code, currency.Fraction)
	}
	return currency.Code, nil
}
