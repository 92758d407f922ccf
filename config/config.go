package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	StoreURL       string
	LocaleFlagSrc  string
	ServerValue    string
	SortValue      string
	RowLimit       int
	PriceThreshold int64
	// InclusiveThreshold selects price <= threshold; false gives price < threshold.
	InclusiveThreshold bool
	WaitTimeout        time.Duration
	LocaleDelay        time.Duration
	SortDelay          time.Duration
	RunTimeout         time.Duration
	Headless           bool
	ChromeBin          string
	RemoteURL          string
	EmailAddress       string
	EmailPassword      string
	EmailTo            string
	SMTPHost           string
	SMTPPort           int
	Schedule           string
	CSVPath            string
	DatabaseURL        string
	Debug              bool
}

func DefaultConfig() *Config {
	return &Config{
		StoreURL:           "https://metin2alerts.com/store",
		LocaleFlagSrc:      "country/es.png",
		ServerValue:        "506",
		SortValue:          "fiyat-artan",
		RowLimit:           10,
		PriceThreshold:     1000,
		InclusiveThreshold: true,
		WaitTimeout:        15 * time.Second,
		LocaleDelay:        2 * time.Second,
		SortDelay:          4 * time.Second,
		RunTimeout:         3 * time.Minute,
		Headless:           true,
		SMTPHost:           "smtp.gmail.com",
		SMTPPort:           465,
	}
}

// Load returns the defaults overlaid with values from the environment.
// Malformed numeric or boolean values are reported rather than ignored.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	env := envReader{}

	cfg.StoreURL = env.str("STORE_URL", cfg.StoreURL)
	cfg.RowLimit = env.integer("ROW_LIMIT", cfg.RowLimit)
	cfg.PriceThreshold = int64(env.integer("PRICE_THRESHOLD", int(cfg.PriceThreshold)))
	cfg.InclusiveThreshold = env.boolean("PRICE_INCLUSIVE", cfg.InclusiveThreshold)
	cfg.WaitTimeout = env.duration("WAIT_TIMEOUT", cfg.WaitTimeout)
	cfg.RunTimeout = env.duration("RUN_TIMEOUT", cfg.RunTimeout)
	cfg.Headless = env.boolean("HEADLESS", cfg.Headless)
	cfg.ChromeBin = env.str("CHROME_BIN", cfg.ChromeBin)
	cfg.RemoteURL = env.str("SELENIUM_REMOTE_URL", cfg.RemoteURL)
	cfg.EmailAddress = env.str("EMAIL_ADDRESS", cfg.EmailAddress)
	cfg.EmailPassword = env.str("EMAIL_PASSWORD", cfg.EmailPassword)
	cfg.EmailTo = env.str("EMAIL_TO", cfg.EmailTo)
	cfg.SMTPHost = env.str("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = env.integer("SMTP_PORT", cfg.SMTPPort)
	cfg.Schedule = env.str("CHECK_SCHEDULE", cfg.Schedule)
	cfg.CSVPath = env.str("RUN_LOG_CSV", cfg.CSVPath)
	cfg.DatabaseURL = env.str("DATABASE_URL", cfg.DatabaseURL)
	cfg.Debug = env.boolean("DEBUG", cfg.Debug)

	if len(env.errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(env.errs, "; "))
	}
	if cfg.RowLimit <= 0 {
		return nil, fmt.Errorf("invalid configuration: ROW_LIMIT must be positive, got %d", cfg.RowLimit)
	}
	if cfg.PriceThreshold < 0 {
		return nil, fmt.Errorf("invalid configuration: PRICE_THRESHOLD must not be negative, got %d", cfg.PriceThreshold)
	}
	return cfg, nil
}

// MissingError lists required environment variables that were not set.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// Validate checks the mail settings every run needs before a browser is opened.
func (c *Config) Validate() error {
	var missing []string
	if c.EmailAddress == "" {
		missing = append(missing, "EMAIL_ADDRESS")
	}
	if c.EmailPassword == "" {
		missing = append(missing, "EMAIL_PASSWORD")
	}
	if c.EmailTo == "" {
		missing = append(missing, "EMAIL_TO")
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}

func (c *Config) UsesRemoteBrowser() bool {
	return c.RemoteURL != ""
}

type envReader struct {
	errs []string
}

func (r *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *envReader) integer(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s=%q is not an integer", key, v))
		return def
	}
	return n
}

func (r *envReader) boolean(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s=%q is not a boolean", key, v))
		return def
	}
	return b
}

// duration accepts Go duration strings ("15s") or a bare number of seconds.
func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s=%q is not a duration", key, v))
		return def
	}
	return d
}
