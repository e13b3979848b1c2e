package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	TelegramBotToken    string  `koanf:"telegram_bot_token"`
	TelegramAPIURL      string  `koanf:"telegram_api_url"`
	DatabasePath        string  `koanf:"database_path"`
	HTTPPort            string  `koanf:"http_port"`
	APIToken            string  `koanf:"api_token"`
	MarketDataURL       string  `koanf:"market_data_url"`
	MarketDataRateLimit int     `koanf:"market_data_rate_limit"`
	EnrichmentTimeout   int     `koanf:"enrichment_timeout"`
	MinLiquidityUSD     float64 `koanf:"min_liquidity_usd"`
	JournalRetention    int     `koanf:"journal_retention_days"`
	LogLevel            string  `koanf:"log_level"`
	AppEnv              AppEnv  `koanf:"app_env"`
}

// EnrichmentTimeoutDuration returns the bound applied to a market-data lookup.
func (c *Config) EnrichmentTimeoutDuration() time.Duration {
	return time.Duration(c.EnrichmentTimeout) * time.Second
}

// JournalRetentionDuration returns how long delivery records are kept.
func (c *Config) JournalRetentionDuration() time.Duration {
	return time.Duration(c.JournalRetention) * 24 * time.Hour
}

// UsesStaticMarketData reports whether the network market-data source should be
// replaced with canned quotes.
func (c *Config) UsesStaticMarketData() bool {
	return c.AppEnv == AppEnvLocal || c.AppEnv == AppEnvDevelopment
}

func Load() (*Config, error) {
	// A missing .env is the normal case in containers.
	_ = godotenv.Load()

	k := koanf.New(".")

	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	defaults := map[string]any{
		"telegram_api_url":       "https://api.telegram.org",
		"database_path":          "./data/relay.db",
		"http_port":              "8080",
		"market_data_url":        "https://api.dexscreener.com",
		"market_data_rate_limit": 300,
		"enrichment_timeout":     10,
		"min_liquidity_usd":      0,
		"journal_retention_days": 30,
		"log_level":              "info",
		"app_env":                "production",
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	if appEnv, err := ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = appEnv
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	if cfg.EnrichmentTimeout <= 0 {
		cfg.EnrichmentTimeout = 10
	}
	if cfg.MarketDataRateLimit <= 0 {
		cfg.MarketDataRateLimit = 300
	}

	if cfg.TelegramBotToken == "" {
		return nil, errors.ErrMissingBotToken
	}

	return &cfg, nil
}
