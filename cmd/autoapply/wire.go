package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rafael/autoapply/internal/config"
	"github.com/rafael/autoapply/internal/db"
	"github.com/rafael/autoapply/internal/jobs"
	"github.com/rafael/autoapply/internal/llm"
	"github.com/rafael/autoapply/internal/mail"
	"github.com/rafael/autoapply/internal/server"
)

// buildDeps assembles the service collaborators from configuration.
// Missing API keys disable their collaborator rather than failing, so a
// bare process still serves the heuristic pipeline.
func buildDeps(ctx context.Context, cfg *config.Config) (server.Deps, func(), error) {
	deps := server.Deps{Config: cfg}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
		if err != nil {
			return deps, cleanup, fmt.Errorf("failed to create LLM client: %w", err)
		}
		deps.LLM = client
		cleanups = append(cleanups, func() { _ = client.Close() })
	} else {
		log.Println("GEMINI_API_KEY not set, running with heuristic extraction only")
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return deps, func() {}, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			cleanup()
			return deps, func() {}, fmt.Errorf("failed to run migrations: %w", err)
		}
		deps.DB = database
		cleanups = append(cleanups, database.Close)
	} else {
		log.Println("DATABASE_URL not set, running stateless")
	}

	deps.Adapters = buildAdapters(cfg)
	deps.Primary, deps.Fallback = buildSenders(cfg)

	if os.Getenv("JWT_SECRET") != "" {
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			cleanup()
			return deps, func() {}, fmt.Errorf("failed to load JWT config: %w", err)
		}
		deps.Sessions = jwtCfg
	}

	return deps, cleanup, nil
}

func buildAdapters(cfg *config.Config) []jobs.Adapter {
	wwr := jobs.NewWeWorkRemotely()
	wwr.UseBrowser = cfg.UseBrowser

	adapters := []jobs.Adapter{wwr, jobs.NewRemotive()}

	for _, pair := range strings.Split(cfg.RSSFeeds, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, feedURL, ok := strings.Cut(pair, "=")
		if !ok {
			log.Printf("ignoring malformed JOB_RSS_FEEDS entry %q", pair)
			continue
		}
		adapters = append(adapters, jobs.NewRSSFeed(name, feedURL))
	}
	return adapters
}

// buildSenders picks the mail transports: Resend as primary when
// configured, SMTP as primary otherwise and as fallback when both are.
func buildSenders(cfg *config.Config) (mail.Sender, mail.Sender) {
	var resend, smtp mail.Sender
	if cfg.ResendAPIKey != "" && cfg.ResendSenderEmail != "" {
		resend = mail.NewResendSender(cfg.ResendAPIKey, cfg.ResendSenderEmail)
	}
	if cfg.SMTPHost != "" && cfg.SMTPUser != "" {
		smtp = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	}

	if resend != nil {
		return resend, smtp
	}
	return smtp, nil
}
