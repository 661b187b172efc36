package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "587", cfg.SMTPPort)
	assert.False(t, cfg.UseBrowser)
	assert.False(t, cfg.LegacyDedup)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("USE_BROWSER", "true")
	t.Setenv("LEGACY_DEDUP", "1")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.True(t, cfg.UseBrowser)
	assert.True(t, cfg.LegacyDedup)
}

func TestMailConfigured(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.MailConfigured())
	assert.Len(t, cfg.MailConfigErrors(), 5)

	cfg.ResendAPIKey = "key"
	cfg.ResendSenderEmail = "bot@autoapply.test"
	assert.True(t, cfg.MailConfigured())

	smtpOnly := &Config{SMTPHost: "smtp.test", SMTPUser: "bot"}
	assert.True(t, smtpOnly.MailConfigured())
}

func TestNewJWTConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "48")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-secret", cfg.Secret)
	assert.Equal(t, 48, cfg.ExpirationHours)
}

func TestNewJWTConfigMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := NewJWTConfig()
	assert.Error(t, err)
}

func TestNewJWTConfigInvalidExpiration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "zero")

	_, err := NewJWTConfig()
	assert.Error(t, err)
}
