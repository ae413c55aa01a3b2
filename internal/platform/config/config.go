// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv        string `env:"APP_ENV" default:"development"`
	Port          string `env:"PORT" default:"8080"`
	SlackBotToken string `env:"SLACK_BOT_TOKEN"`
	SlackAppToken string `env:"SLACK_APP_TOKEN"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"text"`

	// DefaultTopVotes is the summary size used when `sum` is called without a limit.
	DefaultTopVotes int `env:"DEFAULT_TOP_VOTES" default:"3"`

	// NotifyRatePerSec throttles DM fan-out against the Slack chat.postMessage rate limit.
	NotifyRatePerSec float64 `env:"NOTIFY_RATE_PER_SEC" default:"1"`
	NotifyBurst      int     `env:"NOTIFY_BURST" default:"3"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"SLACK_BOT_TOKEN": cfg.SlackBotToken,
		"SLACK_APP_TOKEN": cfg.SlackAppToken,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if !strings.HasPrefix(cfg.SlackBotToken, "xoxb-") {
		return fmt.Errorf("SLACK_BOT_TOKEN must be a bot token (xoxb-...)")
	}
	if !strings.HasPrefix(cfg.SlackAppToken, "xapp-") {
		return fmt.Errorf("SLACK_APP_TOKEN must be an app-level token (xapp-...)")
	}

	if cfg.DefaultTopVotes < 1 {
		return fmt.Errorf("DEFAULT_TOP_VOTES must be at least 1, got %d", cfg.DefaultTopVotes)
	}
	if cfg.NotifyRatePerSec <= 0 {
		return fmt.Errorf("NOTIFY_RATE_PER_SEC must be positive, got %v", cfg.NotifyRatePerSec)
	}

	return nil
}
