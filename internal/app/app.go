// Package app wires the casavia server runtime: config, logging, the JSON
// file store, and the HTTP surface.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	authapi "casavia/internal/auth/api"
	"casavia/internal/auth/session"
	"casavia/internal/listings"
	"casavia/internal/store"
)

// App is the casavia server runtime.
type App struct {
	cfg Config
	log *slog.Logger

	store    *store.Store
	auth     *authapi.Handler
	listings *listings.Handler
	metrics  *Metrics
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	st, err := store.Open(cfg.DBFile)
	if err != nil {
		return nil, err
	}
	if err := st.Seed(); err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewService(sessCfg, st)
	if err != nil {
		return nil, err
	}

	auth := authapi.NewHandler(log, authapi.LoadConfigFromEnv(), sessions, st)

	return &App{
		cfg:      cfg,
		log:      log,
		store:    st,
		auth:     auth,
		listings: listings.NewHandler(log, st),
		metrics:  NewMetrics(),
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.store, a.auth, a.listings, a.metrics)

	var handler http.Handler = mux
	handler = a.metrics.WithMetrics(handler, mux)
	handler = WithSecurityHeaders(handler)
	handler = WithCORS(handler, a.cfg.AllowedOrigin, a.log)
	handler = WithRecover(handler, a.log)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_file", a.cfg.DBFile, "auth_enforced", a.auth.Enforced())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
