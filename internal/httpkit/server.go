// Package httpkit provides the base HTTP server, middleware chain, and JSON
// response helpers for the card service.
package httpkit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Server wraps a chi router with common middleware and lifecycle management.
type Server struct {
	Router *chi.Mux
	Logger *slog.Logger
	addr   string
}

// New creates a Server listening on the given port. Verbose switches the
// JSON logger to debug level.
func New(port string, verbose bool) *Server {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	r := chi.NewRouter()
	mw := NewMiddleware(logger)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.CORS)
	r.Use(mw.RequestLog)
	r.Use(mw.Recover)

	return &Server{
		Router: r,
		Logger: logger,
		addr:   ":" + port,
	}
}

// Serve starts the HTTP server and blocks until a shutdown signal arrives.
func (s *Server) Serve() error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // bulk dispatch runs inside the request
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.Logger.Info("starting server", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-done
	s.Logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// ServeHTTP implements http.Handler so Server can be used directly in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// Error writes the API's error envelope: {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]any{"error": message})
}
