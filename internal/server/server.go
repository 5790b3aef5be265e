// Package server exposes the tracker as a JSON API for the web client.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"loipen-tracker/internal/api"
	apperrors "loipen-tracker/internal/errors"
	"loipen-tracker/internal/logging"
)

// Config holds the listener settings.
type Config struct {
	Addr              string
	JWTSecret         string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server serves the JSON API on top of a BusinessAPI.
type Server struct {
	api    api.BusinessAPI
	secret []byte
	cfg    Config
	log    logging.Logger
}

// New creates a server. A JWT secret is required.
func New(businessAPI api.BusinessAPI, cfg Config, log logging.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, apperrors.NewInvalidInputError("jwt secret", "", "set LOIPEN_JWT_SECRET to serve the API")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	log = orDiscard(log)
	return &Server{api: businessAPI, secret: []byte(cfg.JWTSecret), cfg: cfg, log: log}, nil
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)

	auth := func(h http.HandlerFunc) http.Handler { return s.requireUser(h) }
	mux.Handle("GET /api/timer", auth(s.timerStatus))
	mux.Handle("POST /api/timer/start", auth(s.timerStart))
	mux.Handle("POST /api/timer/pause", auth(s.timerPause))
	mux.Handle("POST /api/timer/resume", auth(s.timerResume))
	mux.Handle("POST /api/timer/stop", auth(s.timerStop))
	mux.Handle("POST /api/entries/manual", auth(s.manualEntry))
	mux.Handle("GET /api/entries", auth(s.listEntries))
	mux.Handle("GET /api/summary", auth(s.summary))
	mux.Handle("GET /api/seasons", auth(s.seasons))
	mux.Handle("POST /api/diesel", auth(s.logDiesel))
	mux.Handle("PUT /api/diesel/{id}", auth(s.updateDiesel))
	mux.Handle("POST /api/expenses", auth(s.saveExpense))
	mux.Handle("POST /api/cash", auth(s.saveCashTaking))
	mux.Handle("PUT /api/cash/{id}", auth(s.updateCashTaking))
	mux.Handle("GET /api/records", auth(s.listRecords))
	mux.Handle("POST /api/receipts/upload-url", auth(s.receiptUpload))
	mux.Handle("GET /api/receipts/download-url", auth(s.receiptDownload))

	return Chain(mux,
		Recoverer(s.log),
		RequestLogger(s.log),
		SecurityHeaders(SecurityHeadersConfig{ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'"}),
	)
}

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "api listening", "addr", s.cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.log.Info(ctx, "shutting down api")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// fail logs unexpected errors and writes the error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.ShouldLogError(err) {
		s.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, r, err)
}
