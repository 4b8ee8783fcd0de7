package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonathan/job-aggregator/internal/logging"
	"github.com/jonathan/job-aggregator/internal/orchestrator"
	"github.com/jonathan/job-aggregator/internal/provider"
	"github.com/jonathan/job-aggregator/internal/server/middleware"
	"github.com/jonathan/job-aggregator/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	resolver    *orchestrator.Resolver
	registry    *provider.Registry
	rateLimiter *ratelimit.Limiter
	rateConfig  *ratelimit.Config
	log         *logging.Logger
}

// Config holds server configuration
type Config struct {
	Port     int
	APIKey   string
	Resolver *orchestrator.Resolver
	Registry *provider.Registry
	Logger   *logging.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Resolver == nil || cfg.Registry == nil {
		return nil, fmt.Errorf("server requires a resolver and a provider registry")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	rateConfig := ratelimit.LoadConfig()
	s := &Server{
		resolver:    cfg.Resolver,
		registry:    cfg.Registry,
		rateLimiter: ratelimit.NewLimiter(rateConfig),
		rateConfig:  rateConfig,
		log:         cfg.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/jobs/search", s.handleMultiSearch)
	mux.HandleFunc("POST /api/jobs/{provider}", s.handleProviderSearch)

	handler := middleware.RequestID(
		s.withLogging(
			s.withCORS(
				middleware.APIKeyAuth(cfg.APIKey)(
					s.withRateLimit(mux)))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // slow scraping providers
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until SIGINT/SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.APIKeyHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit gates requests per client before they reach a handler.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateConfig.Exempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		clientKey := s.extractClientKey(r)
		allowed, info := s.rateLimiter.Allow(clientKey)
		s.setRateLimitHeaders(w, info)

		if !allowed {
			s.log.Warn("rate limit exceeded", "client", clientKey, "path", r.URL.Path)
			retryAfter := int(info.RetryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Detail: fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", retryAfter),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	w.Header().Set("X-RateLimit-Limit-Minute", fmt.Sprintf("%d", info.LimitPerMinute))
	w.Header().Set("X-RateLimit-Limit-Hour", fmt.Sprintf("%d", info.LimitPerHour))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.RemainingMinute))
}

// extractClientKey identifies the client for rate limiting: forwarded IP
// when behind a proxy, remote address otherwise.
func (s *Server) extractClientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"elapsed", time.Since(start))
	})
}
