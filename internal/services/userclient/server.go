// Package userclient hosts the browser-facing user management service.
package userclient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/userclient/internal/platform/timeouts"
	"github.com/louisbranch/userclient/internal/services/shared/route"
	"github.com/louisbranch/userclient/internal/services/userclient/platform/httpx"
	"github.com/louisbranch/userclient/internal/services/userclient/platform/observability"
	"github.com/louisbranch/userclient/internal/services/userclient/platform/requestmeta"
	"github.com/louisbranch/userclient/internal/services/userclient/routepath"
	"github.com/louisbranch/userclient/internal/services/userclient/session"
	"github.com/louisbranch/userclient/internal/services/userclient/shell"
)

// Pinger checks that the user service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config defines startup inputs for the userclient service.
type Config struct {
	HTTPAddr     string
	AssetBaseURL string
	// UserService backs every session's shell.
	UserService shell.UserService
	// Pinger is probed by the health route; nil skips the probe.
	Pinger              Pinger
	SessionTTL          time.Duration
	TrustForwardedProto bool
	Logger              *log.Logger
}

// Handler serves the userclient routes and owns the session registry.
type Handler struct {
	sessions     *session.Registry
	pinger       Pinger
	assetBaseURL string
	logger       *log.Logger
	root         http.Handler
}

// NewHandler builds the root handler with its middleware chain.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.UserService == nil {
		return nil, errors.New("user service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	sessions, err := session.NewRegistry(session.Config{
		NewShell: func() *shell.Shell {
			return shell.New(cfg.UserService, shell.WithLogger(logger))
		},
		TTL:          cfg.SessionTTL,
		SchemePolicy: requestmeta.SchemePolicy{TrustForwardedProto: cfg.TrustForwardedProto},
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build session registry: %w", err)
	}

	h := &Handler{
		sessions:     sessions,
		pinger:       cfg.Pinger,
		assetBaseURL: strings.TrimSpace(cfg.AssetBaseURL),
		logger:       logger,
	}
	mux := http.NewServeMux()
	h.registerRoutes(mux)
	h.root = httpx.Chain(mux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		observability.RequestLogger(logger),
		route.CanonicalPaths(routepath.StaticPrefix),
	)
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

// Sessions exposes the session registry.
func (h *Handler) Sessions() *session.Registry {
	return h.sessions
}

// Close closes every session shell.
func (h *Handler) Close() {
	if h == nil {
		return
	}
	h.sessions.Close()
}

// Server hosts the userclient HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	handler    *Handler
	httpServer *http.Server
}

// NewServer validates config and constructs a userclient server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose userclient handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		handler:  handler,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.httpAddr
}

// ListenAndServe serves HTTP traffic and sweeps idle sessions until context
// cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("userclient server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.handler.sessions.Run(sweepCtx, timeouts.SessionSweep)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown userclient http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve userclient http: %w", err)
	}
}

// Close closes the HTTP server and every session.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	s.handler.Close()
}
