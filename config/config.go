package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds crawler configuration.
type Config struct {
	BaseURL           string
	CatalogueTemplate string // printf template with one %d page slot
	MaxPages          int    // 0 walks until the catalogue is exhausted
	Workers           int
	Timeout           time.Duration
	UserAgent         string
	OutputFile        string
	OutputFormat      string // json, csv, or dual
	DedupeMaxSize     int
	MetricsAddr       string
	TriggerTime       string        // daily run time, HH:MM
	TestDelay         time.Duration // near-term verification trigger, 0 disables
	PollInterval      time.Duration
	Verbose           bool
}

// DefaultConfig returns conservative defaults for the demo target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://books.toscrape.com",
		CatalogueTemplate: "https://books.toscrape.com/catalogue/page-%d.html",
		MaxPages:          0,
		Workers:           10,
		Timeout:           10 * time.Second,
		UserAgent:         "go-crawl-books/1.0 (student project)",
		OutputFile:        "artifacts/books_data.json",
		OutputFormat:      "json",
		DedupeMaxSize:     4096,
		MetricsAddr:       "",
		TriggerTime:       "12:00",
		TestDelay:         60 * time.Second,
		PollInterval:      time.Minute,
		Verbose:           false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.CatalogueTemplate == "" {
		return fmt.Errorf("catalogue template cannot be empty")
	}
	if strings.Count(c.CatalogueTemplate, "%d") != 1 {
		return fmt.Errorf("catalogue template must contain exactly one %%d page slot")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max pages cannot be negative")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "json" && c.OutputFormat != "csv" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be json, csv, or dual")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	if _, err := ParseTriggerTime(c.TriggerTime); err != nil {
		return fmt.Errorf("invalid trigger time: %w", err)
	}
	if c.TestDelay < 0 {
		return fmt.Errorf("test delay cannot be negative")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	return nil
}

// ParseTriggerTime parses an HH:MM wall-clock trigger.
func ParseTriggerTime(value string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("trigger time must be HH:MM: %w", err)
	}
	return t, nil
}

// EnvString reads a string environment override.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment override.
func EnvInt(key string) (int, bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, true, nil
}
