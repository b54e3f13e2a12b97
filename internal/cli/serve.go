package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/geocoder89/userhub/internal/auth"
	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/db"
	httpx "github.com/geocoder89/userhub/internal/http"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	if cfg.UsingDevSecret() {
		log.Warn("JWT_SECRET not set; using the built-in dev secret")
	}

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		Enabled:     cfg.OTelEnabled,
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		cctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(cctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewProm(reg)

	store, closeStore, err := openStore(ctx, cfg, metrics, log)
	if err != nil {
		return err
	}
	defer closeStore()

	hasher := newHasher(cfg)

	seedCtx, cancelSeed := context.WithTimeout(ctx, 10*time.Second)
	created, err := db.EnsureAdminUser(seedCtx, store, hasher, adminSeed(cfg))
	cancelSeed()
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Info("bootstrap admin created", "email", cfg.AdminEmail)
	}

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// set up routers with the log
	router := httpx.NewRouter(httpx.Deps{
		Log:                log,
		Store:              store,
		Tokens:             auth.NewManager(cfg.JWTSecret, cfg.TokenTTL()),
		Hasher:             hasher,
		Metrics:            metrics,
		Gatherer:           reg,
		Env:                cfg.Env,
		ServiceName:        cfg.ServiceName,
		AdminCode:          cfg.AdminCode,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		Tracing:            cfg.OTelEnabled,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown

	select {
	case err, ok := <-serveErr:
		if ok {
			log.Error("server failed", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}
