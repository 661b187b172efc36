package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rafael/autoapply/internal/compose"
	"github.com/rafael/autoapply/internal/config"
	"github.com/rafael/autoapply/internal/db"
	"github.com/rafael/autoapply/internal/jobs"
	"github.com/rafael/autoapply/internal/keywords"
	"github.com/rafael/autoapply/internal/llm"
	"github.com/rafael/autoapply/internal/mail"
	"github.com/rafael/autoapply/internal/match"
	"github.com/rafael/autoapply/internal/profile"
	"github.com/rafael/autoapply/internal/server/ratelimit"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	db         *db.DB
	llm        llm.Client

	policy     *profile.Policy
	deriver    *keywords.Deriver
	aggregator *jobs.Aggregator
	enricher   *jobs.Enricher
	matcher    *match.Matcher
	composer   *compose.Composer
	dispatcher *mail.Dispatcher

	sessions    *SessionService
	rateLimiter *ratelimit.Limiter
	validator   *validator.Validate
}

// Deps holds the collaborators the server is built from. DB, LLM, the
// mail senders and Sessions may all be nil; each missing collaborator
// degrades its stage instead of failing startup.
type Deps struct {
	Config   *config.Config
	DB       *db.DB
	LLM      llm.Client
	Adapters []jobs.Adapter
	Primary  mail.Sender
	Fallback mail.Sender
	Sessions *config.JWTConfig
}

// New creates a new server instance.
func New(deps Deps) *Server {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Load()
	}

	var primary profile.Extractor
	if deps.LLM != nil {
		primary = profile.NewLLMExtractor(deps.LLM)
	}

	aggConfig := jobs.DefaultAggregatorConfig()
	aggConfig.LegacyDedup = cfg.LegacyDedup

	enricher := jobs.NewEnricher()
	enricher.UseBrowser = cfg.UseBrowser

	s := &Server{
		cfg:        cfg,
		db:         deps.DB,
		llm:        deps.LLM,
		policy:     profile.NewPolicy(primary, profile.NewHeuristicExtractor()),
		deriver:    keywords.NewDeriver(deps.LLM),
		aggregator: jobs.NewAggregator(deps.Adapters, db.NewJobCache(deps.DB, db.DefaultJobCacheTTL), aggConfig),
		enricher:   enricher,
		matcher:    match.NewMatcher(deps.LLM),
		composer:   compose.NewComposer(deps.LLM),
		dispatcher: mail.NewDispatcher(deps.Primary, deps.Fallback, deps.DB),
		validator:  validator.New(),
	}

	if deps.Sessions != nil {
		s.sessions = NewSessionService(deps.Sessions)
	}
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("POST /resume/extract", s.handleExtractResume)
	mux.HandleFunc("POST /jobs/aggregate", s.handleAggregateJobs)
	mux.HandleFunc("POST /jobs/match", s.handleMatchJobs)
	mux.HandleFunc("POST /applications/compose", s.handleComposeApplications)
	mux.HandleFunc("POST /applications/send", s.handleSendApplications)
	mux.HandleFunc("GET /applications/stats", s.handleApplicationStats)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // LLM-backed handlers are slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// withRateLimit rejects requests over the per-client endpoint budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
			}
			s.errorResponse(w, http.StatusTooManyRequests, "rate_limit_exceeded", "rate limit exceeded, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID extracts the client identifier (IP address) from the request.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// handleHealth reports server health and the readiness of each external
// collaborator so clients can tell which pipeline stages are degraded.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	services := map[string]string{
		"llm":      configured(s.llm != nil),
		"database": configured(s.db != nil),
		"mail":     configured(s.cfg.MailConfigured()),
		"sessions": configured(s.sessions != nil),
	}

	response := map[string]any{
		"status":   "ok",
		"services": services,
	}
	if !s.cfg.MailConfigured() {
		response["mail_errors"] = s.cfg.MailConfigErrors()
	}
	s.jsonResponse(w, http.StatusOK, response)
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "disabled"
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response with a machine-readable
// code alongside the human message.
func (s *Server) errorResponse(w http.ResponseWriter, status int, code, message string) {
	s.jsonResponse(w, status, map[string]string{"code": code, "message": message})
}

// errorFrom maps a typed pipeline error to its status, code and message.
func (s *Server) errorFrom(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), errorCode(err), err.Error())
}
