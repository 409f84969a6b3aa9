package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/costnav/costnav/internal/agent"
	"github.com/costnav/costnav/internal/config"
	"github.com/costnav/costnav/internal/service"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	cfg    *config.Config
	http   *http.Server
	store  *service.PostgresService
	oracle agent.Oracle
}

// New connects to the store and builds the HTTP server. The oracle is
// optional: without an API key /api/v1/ask is not mounted.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	store, err := service.NewPostgresService(ctx, cfg.DSN(), cfg.DBMaxConns,
		time.Duration(cfg.StatementTimeoutMs)*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	s := &Server{cfg: cfg, store: store}
	if cfg.OracleAPIKey() != "" {
		if s.oracle, err = NewOracle(cfg); err != nil {
			store.Close()
			return nil, err
		}
	} else {
		log.Warn().Str("provider", cfg.OracleProvider).Msg("oracle API key not set - question answering disabled")
	}

	log.Info().
		Str("oracle_provider", cfg.OracleProvider).
		Bool("oracle_enabled", s.oracle != nil).
		Bool("query_allow_list", cfg.QueryAllowList).
		Int("max_result_rows", cfg.MaxResultRows).
		Int("statement_timeout_ms", cfg.StatementTimeoutMs).
		Bool("phi_detection", cfg.EnablePHIDetection).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Msg("service configuration")

	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.setupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.OracleTimeoutSeconds)*time.Second + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// Run serves until ctx is cancelled, then drains connections and closes the pool.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", s.http.Addr).Msg("listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(s.cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.store.Close()
	log.Info().Msg("database pool closed")
	return err
}
