package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/cpne/stages/internal/bootstrap"
	"github.com/cpne/stages/internal/config"
	"github.com/cpne/stages/internal/pkg/helpers"
)

// Server serves the stages API until the process is asked to stop.
type Server struct {
	dbPool          *pgxpool.Pool
	logger          zerolog.Logger
	http            *http.Server
	shutdownTimeout time.Duration
}

// New loads the configuration at configPath, prepares the database and wires the router.
func New(configPath string) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	dbPool, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, dbPool, lgr)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return &Server{
		dbPool:          dbPool,
		logger:          lgr,
		http:            newHTTPServer(cfg, bootstrap.SetupRouter(cfg, deps, lgr)),
		shutdownTimeout: helpers.ParseDuration(cfg.Server.ShutdownTimeout, 10*time.Second),
	}, nil
}

func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  helpers.ParseDuration(cfg.Server.ReadTimeout, 30*time.Second),
		WriteTimeout: helpers.ParseDuration(cfg.Server.WriteTimeout, 2*time.Minute),
		IdleTimeout:  2 * time.Minute,
	}
}

// Run listens until SIGINT/SIGTERM or a listener failure, then shuts down.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		listenErr <- s.http.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			s.closePool()
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown signal received")
	}

	return s.Shutdown(context.Background())
}

// Shutdown drains in-flight requests, then closes the pool.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		s.logger.Info().Msg("HTTP server stopped")
	}
	s.closePool()
	return err
}

func (s *Server) closePool() {
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info().Msg("Database connection pool closed")
	}
}
