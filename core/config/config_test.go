package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: " Polling "}}
	cfg.RateLimit.ExcludeUpdates = []string{"Callback", "INLINE_QUERY"}

	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if got := strings.Join(cfg.RateLimit.ExcludeUpdates, ","); got != "callback,inline_query" {
		t.Fatalf("exclude = %q", got)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]*Config{
		"missing token": {},
		"bad run mode":  {Telegram: TelegramConfig{Token: "t", RunMode: "push"}},
		"webhook url":   {Telegram: TelegramConfig{Token: "t", RunMode: RunModeWebhook}},
		"webhook port": {
			Telegram: TelegramConfig{Token: "t", RunMode: RunModeWebhook},
			Webhook:  WebhookConfig{URL: "https://x", Listen: "0.0.0.0"},
		},
		"negative timeout": {Telegram: TelegramConfig{Token: "t", LongPollTimeoutSeconds: -1}},
		"bad exclusion": {
			Telegram:  TelegramConfig{Token: "t"},
			RateLimit: RateLimitConfig{ExcludeUpdates: []string{"sticker"}},
		},
	}
	for name, cfg := range cases {
		if err := Normalize(cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if err := Normalize(nil); err == nil {
		t.Error("nil config: expected error")
	}
}

func TestLoadOverlaysEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "telegram:\n  token: from-file\n  run_mode: longpoll\nlogging:\n  level: info\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" || cfg.Logging.Level != "info" {
		t.Fatalf("cfg = %+v", cfg)
	}
}
