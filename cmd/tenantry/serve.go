// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package main

import (
	"context"
	cryptotls "crypto/tls"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/tenantry/tenantry/internal/auth"
	"github.com/tenantry/tenantry/internal/config"
	"github.com/tenantry/tenantry/internal/logging"
	"github.com/tenantry/tenantry/internal/observability"
	"github.com/tenantry/tenantry/internal/tls"
	"github.com/tenantry/tenantry/internal/web"
	"github.com/tenantry/tenantry/internal/xdg"
)

// shutdownTimeout bounds graceful shutdown of the listeners.
const shutdownTimeout = 5 * time.Second

// serveOptions holds flags local to the serve command.
type serveOptions struct {
	autoMigrate bool
}

func newServeCmd(deps *Deps) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API serving signup, login, logout, the current user
and availability checks, plus the metrics and health endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, opts, deps)
		},
	}

	cmd.Flags().BoolVar(&opts.autoMigrate, "auto-migrate", false, "apply pending migrations before serving")

	return cmd
}

// runServe runs the API until a signal arrives, ctx is cancelled or a
// listener fails.
func runServe(ctx context.Context, cmd *cobra.Command, opts *serveOptions, deps *Deps) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := setupLogging(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting tenantry",
		"http_addr", cfg.HTTP.Addr,
		"metrics_addr", cfg.Metrics.Addr,
		"log_format", cfg.Log.Format,
	)

	if opts.autoMigrate {
		if err := cfg.RequireDatabase(); err != nil {
			return err
		}
		if err := applyMigrations(cmd, deps, cfg.Database.URL); err != nil {
			return err
		}
	}

	pool, err := openPool(ctx, deps, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Info("connected to database")

	service, err := newAuthService(pool, cfg, logger)
	if err != nil {
		return oops.Code("SERVE_INIT_FAILED").With("component", "auth").Wrap(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		obsServer ObservabilityServer
		metrics   *observability.Metrics
	)
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, pool.Ping)
		auth.RegisterMetrics(obsServer.Registry())
		metrics = obsServer.Metrics()

		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("SERVE_INIT_FAILED").With("component", "observability").Wrap(err)
		}
		defer stopServer(logger, "observability", obsServer.Stop)
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	tlsConfig, err := httpsConfig(cfg, logger)
	if err != nil {
		return oops.Code("SERVE_INIT_FAILED").With("component", "tls").Wrap(err)
	}

	api, err := web.New(web.Deps{
		Addr:           cfg.HTTP.Addr,
		Auth:           service,
		Logger:         logger,
		Metrics:        metrics,
		Cookie:         web.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure},
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		TLS:            tlsConfig,
	})
	if err != nil {
		return oops.Code("SERVE_INIT_FAILED").With("component", "http").Wrap(err)
	}
	apiErrChan, err := api.Start()
	if err != nil {
		return oops.Code("SERVE_INIT_FAILED").With("component", "http").Wrap(err)
	}
	defer stopServer(logger, "http", api.Stop)
	go monitorServerErrors(ctx, cancel, apiErrChan, "http")

	if cfg.Session.SweepInterval > 0 {
		sweeper, err := auth.NewSweeper(service.Sessions(), cfg.Session.SweepInterval, logger)
		if err != nil {
			return oops.Code("SERVE_INIT_FAILED").With("component", "sweeper").Wrap(err)
		}
		sweeper.Start(ctx)
		defer sweeper.Stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Tenantry started on", api.Addr())
	logger.Info("tenantry ready", "http_addr", api.Addr())
	if deps.OnReady != nil {
		deps.OnReady(api.Addr())
	}

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")
	return nil
}

// httpsConfig returns the API listener's TLS configuration, or nil when the
// API serves plain HTTP.
func httpsConfig(cfg *config.Config, logger *slog.Logger) (*cryptotls.Config, error) {
	t := cfg.HTTP.TLS
	if !t.Enabled() {
		return nil, nil
	}
	if !t.SelfSigned {
		return tls.LoadServerTLS(t.CertFile, t.KeyFile)
	}

	dir, err := xdg.CertsDir()
	if err != nil {
		return nil, err
	}
	if err := xdg.EnsureDir(dir); err != nil {
		return nil, err
	}
	var hosts []string
	if host, _, err := net.SplitHostPort(cfg.HTTP.Addr); err == nil && host != "" {
		hosts = append(hosts, host)
	}
	certFile, keyFile, err := tls.EnsureSelfSigned(dir, hosts)
	if err != nil {
		return nil, err
	}
	logger.Info("using self-signed certificate", "cert_file", certFile, "ca_file", filepath.Join(dir, tls.CACertFile))
	return tls.LoadServerTLS(certFile, keyFile)
}

func setupLogging(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.SetDefault(serviceName, version, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, oops.Code("LOGGING_SETUP_FAILED").Wrap(err)
	}
	return logger, nil
}

// stopServer stops a listener with a bounded grace period.
func stopServer(logger *slog.Logger, name string, stop func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		logger.Warn("error stopping server", "server", name, "error", err)
	}
}

// monitorServerErrors cancels ctx when a listener reports a serve error.
// It exits when an error is received, the channel is closed, or ctx ends.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
