package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/atomic"

	"attendance-backend/internal/i18n"
	"attendance-backend/internal/metrics"
)

const banner = "Blinkit Attendance Backend is Running"

type ServerConfig struct {
	ListenAddr    string
	Log           *slog.Logger
	EnableMetrics bool

	DrainDuration            time.Duration
	GracefulShutdownDuration time.Duration
	ReadTimeout              time.Duration
	WriteTimeout             time.Duration
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Routes is implemented by every handler group.
type Routes interface {
	RegisterRoutes(r chi.Router)
}

type Server struct {
	cfg     *ServerConfig
	log     *slog.Logger
	db      Pinger
	isReady atomic.Bool
	srv     *http.Server
}

func NewServer(cfg *ServerConfig, db Pinger, routes ...Routes) *Server {
	s := &Server{cfg: cfg, log: cfg.Log, db: db}
	s.isReady.Store(true)
	s.srv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.router(routes),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) router(routes []Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.httpLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)
	r.Use(i18n.Middleware)

	r.Get("/", s.handleBanner)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/drain", s.handleDrain)
	r.Get("/undrain", s.handleUndrain)
	if s.cfg.EnableMetrics {
		r.Handle("/metrics", metrics.Handler())
	}

	for _, rt := range routes {
		rt.RegisterRoutes(r)
	}
	return r
}

func (s *Server) httpLogger(next http.Handler) http.Handler {
	return httplogger.LoggingMiddlewareSlog(s.log, next)
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(banner))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.isReady.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "draining"})
		return
	}
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.log.Warn("readiness: store unreachable", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "store unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleDrain(w http.ResponseWriter, r *http.Request) {
	if !s.isReady.Swap(false) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already draining"})
		return
	}
	s.log.Info("Server marked as not ready")
	writeJSON(w, http.StatusOK, map[string]string{"status": "draining"})
}

func (s *Server) handleUndrain(w http.ResponseWriter, r *http.Request) {
	if s.isReady.Swap(true) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already ready"})
		return
	}
	s.log.Info("Server marked as ready")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) RunInBackground() {
	go func() {
		s.log.Info("Starting HTTP server", "listenAddress", s.cfg.ListenAddr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server failed", "err", err)
		}
	}()
}

// Shutdown marks the server not ready, waits DrainDuration so load balancers
// notice, then stops accepting requests.
func (s *Server) Shutdown() {
	if s.isReady.Swap(false) && s.cfg.DrainDuration > 0 {
		s.log.Info("Draining before shutdown", "duration", s.cfg.DrainDuration)
		time.Sleep(s.cfg.DrainDuration)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.GracefulShutdownDuration)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Error("Graceful HTTP server shutdown failed", "err", err)
	} else {
		s.log.Info("HTTP server gracefully stopped")
	}
}
