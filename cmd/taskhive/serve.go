// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/httpapi"
	"github.com/taskhive/taskhive/internal/identity"
	"github.com/taskhive/taskhive/internal/identity/memory"
	identitypg "github.com/taskhive/taskhive/internal/identity/postgres"
	"github.com/taskhive/taskhive/internal/logging"
	"github.com/taskhive/taskhive/internal/observability"
	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/pkg/errutil"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var inMemory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the identity HTTP service",
		Long: `Start the identity service: the JSON API for registration, login,
session resolution, and password reset, plus the metrics/health server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, inMemory)
		},
	}

	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "use an in-memory account store (development only)")
	cmd.Flags().String("http_addr", "", "JSON API listen address")
	cmd.Flags().String("metrics_addr", "", "metrics/health listen address (empty = disabled)")
	cmd.Flags().String("log_format", "", "log format (json or text)")

	return cmd
}

func runServe(cmd *cobra.Command, inMemory bool) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("taskhive", version, cfg.LogFormat)
	logger := slog.Default()

	tokens, err := identity.NewTokenService([]byte(cfg.SigningKey))
	if err != nil {
		// Refuse to start rather than issue unsigned tokens.
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var accounts identity.AccountStore
	if inMemory {
		logger.Warn("using in-memory account store, data will not survive restart")
		accounts = memory.NewStore()
	} else {
		if cfg.DatabaseURL == "" {
			return oops.Code("CONFIG_INVALID").
				Errorf("%s environment variable is required", config.EnvDatabaseURL)
		}
		pool, connErr := store.Connect(ctx, cfg.DatabaseURL)
		if connErr != nil {
			return connErr
		}
		defer pool.Close()
		accounts = identitypg.NewAccountRepository(pool)
	}

	mailer := identity.NewLogMailer(logger, cfg.FrontendURL)
	service, err := identity.NewService(accounts, identity.NewBcryptHasher(cfg.HashCost), tokens, mailer)
	if err != nil {
		return err
	}

	var metrics *observability.Metrics
	var obsErrCh <-chan error
	if cfg.MetricsAddr != "" {
		obs := observability.NewServer(cfg.MetricsAddr, func() bool { return true })
		obsErrCh, err = obs.Start()
		if err != nil {
			return err
		}
		metrics = obs.Metrics()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if stopErr := obs.Stop(stopCtx); stopErr != nil {
				errutil.LogError(logger, "stop observability server", stopErr)
			}
		}()
	}

	handler, err := httpapi.NewHandler(service, logger, metrics)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handler.Register(mux)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		logger.Info("identity service listening", "addr", cfg.HTTPAddr)
		if serveErr := httpSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			serveErrCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErrCh:
		errutil.LogError(logger, "http server failed", err)
		return oops.Code("SERVE_FAILED").Wrap(err)
	case err = <-obsErrCh:
		if err != nil {
			errutil.LogError(logger, "observability server failed", err)
			return oops.Code("SERVE_FAILED").Wrap(err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}
