package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	NATS      NATSConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
	Client    ClientConfig
}

type AppConfig struct {
	Env     string // development or production
	Version string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type NATSConfig struct {
	URL string // empty disables event publishing
}

type EmailConfig struct {
	Brand         string
	SenderEmail   string
	ReplyToEmail  string
	AdminEmail    string
	MailerSendKey string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPUseTLS    bool
	UseSMTP       bool
	DevMode       bool // print emails to logs instead of sending
	SendTimeout   time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
}

type RateLimitConfig struct {
	RPS   float64 // 0 disables
	Burst int

	// TrustProxy keys buckets on X-Forwarded-For / X-Real-IP. Enable only
	// behind a proxy that overwrites those headers.
	TrustProxy bool
}

type ClientConfig struct {
	RelayURL      string
	SignupTimeout time.Duration
	CodeTTL       time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func Load() *Config {
	return &Config{
		App: AppConfig{
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Email: EmailConfig{
			Brand:         getEnv("EMAIL_BRAND", "ShreeAI"),
			SenderEmail:   getEnv("SENDER_EMAIL", "rajveersinghjagirdar@gmail.com"),
			ReplyToEmail:  getEnv("REPLY_TO_EMAIL", "shreeai012@gmail.com"),
			AdminEmail:    getEnv("ADMIN_EMAIL", "shreeai012@gmail.com"),
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
			SMTPHost:      getEnv("SMTP_HOST", "localhost"),
			SMTPPort:      getInt("SMTP_PORT", 1025),
			SMTPUser:      getEnv("SMTP_USER", ""),
			SMTPPass:      getEnv("SMTP_PASS", ""),
			SMTPUseTLS:    getBool("SMTP_USE_TLS", false),
			UseSMTP:       getBool("EMAIL_USE_SMTP", false),
			DevMode:       getBool("EMAIL_DEV_MODE", false),
			SendTimeout:   getDuration("MAIL_SEND_TIMEOUT", 10*time.Second),
			MaxRetries:    getInt("MAIL_MAX_RETRIES", 0),
			RetryBackoff:  getDuration("MAIL_RETRY_BACKOFF", 500*time.Millisecond),
		},
		RateLimit: RateLimitConfig{
			RPS:        getFloat("RATE_LIMIT_RPS", 0),
			Burst:      getInt("RATE_LIMIT_BURST", 5),
			TrustProxy: getBool("RATE_LIMIT_TRUST_PROXY", false),
		},
		Client: ClientConfig{
			RelayURL:      getEnv("RELAY_URL", "http://localhost:3000"),
			SignupTimeout: getDuration("SIGNUP_WAIT_TIMEOUT", 30*time.Second),
			CodeTTL:       getDuration("VERIFICATION_CODE_TTL", 10*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
