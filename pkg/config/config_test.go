package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAIL_MAX_RETRIES", "")
	t.Setenv("RATE_LIMIT_RPS", "")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.Email.SendTimeout)
	assert.Equal(t, 0, cfg.Email.MaxRetries, "provider calls are not retried unless configured")
	assert.Equal(t, float64(0), cfg.RateLimit.RPS, "rate limiting is off unless configured")
	assert.False(t, cfg.RateLimit.TrustProxy)
	assert.Equal(t, 30*time.Second, cfg.Client.SignupTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Client.CodeTTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ADMIN_EMAIL", "ops@example.com")
	t.Setenv("MAIL_SEND_TIMEOUT", "3s")
	t.Setenv("MAIL_MAX_RETRIES", "2")
	t.Setenv("RATE_LIMIT_RPS", "1.5")
	t.Setenv("RATE_LIMIT_TRUST_PROXY", "true")
	t.Setenv("EMAIL_DEV_MODE", "true")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "ops@example.com", cfg.Email.AdminEmail)
	assert.Equal(t, 3*time.Second, cfg.Email.SendTimeout)
	assert.Equal(t, 2, cfg.Email.MaxRetries)
	assert.Equal(t, 1.5, cfg.RateLimit.RPS)
	assert.True(t, cfg.RateLimit.TrustProxy)
	assert.True(t, cfg.Email.DevMode)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")
	t.Setenv("MAIL_SEND_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 1025, cfg.Email.SMTPPort)
	assert.Equal(t, 10*time.Second, cfg.Email.SendTimeout)
}
