package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "template without page slot",
			mutate: func(cfg *Config) {
				cfg.CatalogueTemplate = "https://books.toscrape.com/catalogue/index.html"
			},
			wantErr: "catalogue template",
		},
		{
			name: "negative max pages",
			mutate: func(cfg *Config) {
				cfg.MaxPages = -1
			},
			wantErr: "max pages",
		},
		{
			name: "zero workers",
			mutate: func(cfg *Config) {
				cfg.Workers = 0
			},
			wantErr: "workers",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "bad output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "yaml"
			},
			wantErr: "output format",
		},
		{
			name: "bad trigger time",
			mutate: func(cfg *Config) {
				cfg.TriggerTime = "25:99"
			},
			wantErr: "trigger time",
		},
		{
			name: "zero poll interval",
			mutate: func(cfg *Config) {
				cfg.PollInterval = 0
			},
			wantErr: "poll interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestParseTriggerTime(t *testing.T) {
	parsed, err := ParseTriggerTime("12:30")
	if err != nil {
		t.Fatalf("parse trigger time: %v", err)
	}
	if parsed.Hour() != 12 || parsed.Minute() != 30 {
		t.Fatalf("parsed %02d:%02d, want 12:30", parsed.Hour(), parsed.Minute())
	}

	if _, err := ParseTriggerTime("noon"); err == nil {
		t.Fatalf("expected error for invalid trigger time")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("CRAWLER_TEST_INT", "7")
	value, ok, err := EnvInt("CRAWLER_TEST_INT")
	if err != nil || !ok || value != 7 {
		t.Fatalf("EnvInt = (%d, %v, %v), want (7, true, nil)", value, ok, err)
	}

	t.Setenv("CRAWLER_TEST_INT", "seven")
	if _, _, err := EnvInt("CRAWLER_TEST_INT"); err == nil {
		t.Fatalf("expected error for non-integer value")
	}

	if _, ok, err := EnvInt("CRAWLER_TEST_UNSET"); ok || err != nil {
		t.Fatalf("unset variable should report not-ok without error")
	}
}
