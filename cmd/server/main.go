package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboard/backend/internal/config"
	"dashboard/backend/internal/httpserver"
	"dashboard/backend/internal/infrastructure/postgres"
	"dashboard/backend/internal/infrastructure/token"
	"dashboard/backend/internal/logging"
	authusecase "dashboard/backend/internal/usecase/auth"
	invoiceusecase "dashboard/backend/internal/usecase/invoice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "info").Error(context.Background(), "failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error(context.Background(), "server exited", "error", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run(cfg config.Config, logger logging.Logger) error {
	rootCtx := context.Background()

	db, err := postgres.New(rootCtx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(rootCtx, logger); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	tokenManager, err := token.NewJWTManager(cfg.AuthSecret, cfg.SessionExpiry, cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("failed to configure session tokens: %w", err)
	}
	gate, err := authusecase.NewGate(authusecase.GateConfig{
		ProtectedRoots: cfg.ProtectedRoots,
		BypassPrefixes: cfg.BypassPrefixes,
		LandingPath:    cfg.LandingPath,
		SignInPath:     cfg.SignInPath,
		SignOutPath:    cfg.SignOutPath,
		ErrorPath:      cfg.ErrorPath,
	})
	if err != nil {
		return fmt.Errorf("invalid route gate configuration: %w", err)
	}

	verifier := authusecase.NewVerifier(postgres.NewUserRepository(db.Pool))
	authService := authusecase.NewService(verifier, tokenManager, gate.LandingPath(), logger.With("component", "auth"))
	invoiceService := invoiceusecase.NewService(
		postgres.NewInvoiceRepository(db.Pool),
		postgres.NewCustomerRepository(db.Pool),
	)

	server := httpserver.NewServer(cfg, httpserver.Deps{
		Auth:     authService,
		Sessions: tokenManager,
		Gate:     gate,
		Invoices: invoiceService,
		Health:   db,
		Logger:   logger.With("component", "http"),
	})
	logger.Info(rootCtx, "HTTP server listening", "addr", server.Addr())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-shutdownCtx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info(ctx, "graceful shutdown completed")
	return nil
}
