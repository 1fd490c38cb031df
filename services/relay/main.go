package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/diagnosis/consult-relay/internal/platform/mailer"
	"github.com/diagnosis/consult-relay/internal/templates"
	"github.com/diagnosis/consult-relay/pkg/config"
	"github.com/diagnosis/consult-relay/pkg/events"
	"github.com/diagnosis/consult-relay/pkg/logger"
	mw "github.com/diagnosis/consult-relay/pkg/middleware"
	"github.com/diagnosis/consult-relay/services/relay/internal/handlers"
	"github.com/diagnosis/consult-relay/services/relay/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err)
	}

	cfg := config.Load()

	if err := run(cfg); err != nil {
		logger.Error("Relay service error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	renderer, err := templates.NewRenderer(cfg.Email.Brand, cfg.Client.CodeTTL)
	if err != nil {
		return err
	}

	mail := mailer.NewBounded(newMailer(cfg), cfg.Email.SendTimeout, cfg.Email.MaxRetries, cfg.Email.RetryBackoff)

	publisher := newPublisher(cfg)
	defer publisher.Close()

	relay := service.NewRelayService(renderer, mail, publisher, cfg)
	h := handlers.New(relay, cfg)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("relay"))
	r.Use(mw.Logging)
	r.Use(mw.Recover(!cfg.IsProduction()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	g, gctx := errgroup.WithContext(ctx)

	if cfg.RateLimit.RPS > 0 {
		limiter := mw.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy)
		r.Use(limiter.Middleware)
		g.Go(func() error {
			limiter.Run(time.Minute, gctx.Done())
			return nil
		})
		logger.Info("Rate limiting enabled", "rps", cfg.RateLimit.RPS, "burst", cfg.RateLimit.Burst, "trust_proxy", cfg.RateLimit.TrustProxy)
	} else {
		logger.Warn("Rate limiting disabled; mail endpoints are open to any caller")
	}

	h.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		logger.Info("Starting relay service",
			"port", cfg.Server.Port,
			"env", cfg.App.Env,
			"admin_email", cfg.Email.AdminEmail,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down relay service...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		logger.Info("Using dev mailer; emails are printed, not sent")
		return mailer.NewDevMailer(os.Stdout)
	case cfg.Email.UseSMTP:
		logger.Info("Using SMTP mailer", "host", cfg.Email.SMTPHost, "port", cfg.Email.SMTPPort)
		return mailer.NewSMTPMailer(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SenderEmail,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPass,
			cfg.Email.SMTPUseTLS,
		)
	default:
		m := mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.SenderEmail)
		if !m.Enabled {
			logger.Warn("MAILERSEND_API_KEY not set; every delivery will fail")
		}
		return m
	}
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.NATS.URL == "" {
		return events.NoopPublisher{}
	}

	bus, err := events.NewNATSEventBus(cfg.NATS.URL, "consult-relay")
	if err != nil {
		logger.Error("Failed to connect to NATS, mail events disabled", "error", err)
		return events.NoopPublisher{}
	}
	return bus
}
