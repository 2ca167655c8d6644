// Package http exposes the finance tracker as a JSON API. Handlers stay
// thin: all domain decisions live behind the state provider, the server adds
// caching, rate limiting and security headers.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/exchange"
	"fintrack/internal/log"
	"fintrack/internal/state"
)

type Server struct {
	http.Server
	provider    *state.Provider
	logger      *log.Logger
	rateLimiter *rateLimiter

	// Read-side caches keyed on the provider version, so entries written
	// before a mutation are simply never asked for again.
	monthCache *cache.LRUCache[core.MonthSummary]
	yearCache  *cache.LRUCache[core.YearSummary]

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, provider *state.Provider, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		provider:    provider,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(),
		monthCache:  cache.NewLRUCache[core.MonthSummary](100, 5*time.Minute),
		yearCache:   cache.NewLRUCache[core.YearSummary](20, 5*time.Minute),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/transactions", s.secured(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.secured(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.secured(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.secured(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/categories", s.secured(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.secured(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.secured(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.secured(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/summary/month", s.secured(s.handleMonthSummary))
	mux.HandleFunc("GET /api/summary/year", s.secured(s.handleYearSummary))
	mux.HandleFunc("GET /api/anomalies", s.secured(s.handleAnomalies))
	mux.HandleFunc("GET /api/suggest", s.secured(s.handleSuggestCategory))

	mux.HandleFunc("POST /api/undo", s.secured(s.handleUndo))
	mux.HandleFunc("POST /api/redo", s.secured(s.handleRedo))

	mux.HandleFunc("GET /api/preferences", s.secured(s.handleGetPreferences))
	mux.HandleFunc("PUT /api/preferences", s.secured(s.handlePutPreferences))

	mux.HandleFunc("GET /api/export/json", s.secured(s.handleExportJSON))
	mux.HandleFunc("GET /api/export/csv", s.secured(s.handleExportCSV))
	mux.HandleFunc("POST /api/import", s.secured(s.handleImport))

	s.Server.Handler = log.Middleware(s.logger)(log.RequestIDMiddleware(requestID)(mux))

	return s
}

// StartCacheJanitors sweeps expired summary entries in the background until
// ctx is cancelled. Without it, entries only leave the cache on lookup or
// eviction.
func (s *Server) StartCacheJanitors(ctx context.Context, interval time.Duration) {
	s.monthCache.StartJanitor(ctx, interval)
	s.yearCache.StartJanitor(ctx, interval)
}

// Shutdown gracefully shuts down the server and its rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// secured adds security headers, rate limiting and request logging.
func (s *Server) secured(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		ctx := r.Context()
		logger := log.FromContext(ctx)
		access := log.NewAccessLogger(logger)

		// Mutations are rate limited, reads are not.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			access.LogHTTPEnd(ctx, r, http.StatusTooManyRequests, time.Since(start).Milliseconds(), clientIP)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		access.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// requestID honours a caller-supplied X-Request-ID, generating one otherwise.
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return generateRequestID()
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError translates provider errors into HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrTransactionNotFound), errors.Is(err, state.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrCategoryInUse),
		errors.Is(err, state.ErrNothingToUndo),
		errors.Is(err, state.ErrNothingToRedo):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, exchange.ErrInvalidImport),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidFrequency),
		errors.Is(err, core.ErrInvalidColor),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrUnknownCategory),
		errors.Is(err, core.ErrTypeImmutable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
