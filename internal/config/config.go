// Package config provides environment-based configuration for the
// service. Every field has a working default except the external API
// keys, which simply disable their collaborator when absent.
package config

import (
	"os"
	"strconv"
)

// Config holds the service configuration read from the environment.
type Config struct {
	// Server
	Port string

	// Collaborators
	GeminiAPIKey string
	DatabaseURL  string

	// Mail transports
	ResendAPIKey      string
	ResendSenderEmail string
	SMTPHost          string
	SMTPPort          string
	SMTPUser          string
	SMTPPassword      string

	// Behavior
	UseBrowser  bool
	LegacyDedup bool
	Verbose     bool

	// RSSFeeds lists extra job boards as comma-separated name=url pairs.
	RSSFeeds string
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ResendAPIKey:      os.Getenv("RESEND_API_KEY"),
		ResendSenderEmail: os.Getenv("RESEND_SENDER_EMAIL"),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		UseBrowser:        getEnvBool("USE_BROWSER", false),
		LegacyDedup:       getEnvBool("LEGACY_DEDUP", false),
		Verbose:           getEnvBool("VERBOSE", false),
		RSSFeeds:          os.Getenv("JOB_RSS_FEEDS"),
	}
}

// MailConfigured reports whether at least one mail transport has the
// settings it needs.
func (c *Config) MailConfigured() bool {
	return (c.ResendAPIKey != "" && c.ResendSenderEmail != "") ||
		(c.SMTPHost != "" && c.SMTPUser != "")
}

// MailConfigErrors lists the missing mail settings, mirroring the
// service-status report.
func (c *Config) MailConfigErrors() []string {
	var errs []string
	if c.ResendAPIKey == "" {
		errs = append(errs, "RESEND_API_KEY not set")
	}
	if c.ResendSenderEmail == "" {
		errs = append(errs, "RESEND_SENDER_EMAIL not set")
	}
	if c.SMTPHost == "" {
		errs = append(errs, "SMTP_HOST not set")
	}
	if c.SMTPUser == "" {
		errs = append(errs, "SMTP_USER not set")
	}
	if c.SMTPPassword == "" {
		errs = append(errs, "SMTP_PASSWORD not set")
	}
	return errs
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
