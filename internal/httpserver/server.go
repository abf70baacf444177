package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"dashboard/backend/internal/config"
	"dashboard/backend/internal/logging"
	authusecase "dashboard/backend/internal/usecase/auth"
	invoiceusecase "dashboard/backend/internal/usecase/invoice"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	Auth     *authusecase.Service
	Sessions authusecase.SessionReader
	Gate     *authusecase.Gate
	Invoices *invoiceusecase.Service
	Health   Pinger
	Logger   logging.Logger
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	cfg        config.Config
	auth       *authusecase.Service
	sessions   authusecase.SessionReader
	gate       *authusecase.Gate
	invoices   *invoiceusecase.Service
	health     Pinger
	log        logging.Logger
	addr       string
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, deps Deps) *Server {
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	srv := &Server{
		router:   chi.NewRouter(),
		cfg:      cfg,
		auth:     deps.Auth,
		sessions: deps.Sessions,
		gate:     deps.Gate,
		invoices: deps.Invoices,
		health:   deps.Health,
		log:      deps.Logger,
		addr:     addr,
	}
	if srv.log == nil {
		srv.log = logging.Discard()
	}

	srv.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		srv.withLogging,
		srv.withRecover,
		withCORS(cfg.AllowedOrigins),
		srv.withSession,
		srv.withGate,
	)
	srv.registerRoutes()

	srv.httpServer = &http.Server{
		Addr:         addr,
		Handler:      srv.router,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSec) * time.Second,
	}
	return srv
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the full middleware pipeline and routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
