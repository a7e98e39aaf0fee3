package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/payfisc/payfisc-admin/auth"
	"github.com/payfisc/payfisc-admin/internal/analytics"
	"github.com/payfisc/payfisc-admin/internal/apiclient"
	"github.com/payfisc/payfisc-admin/internal/audit"
	"github.com/payfisc/payfisc-admin/internal/db"
	"github.com/payfisc/payfisc-admin/internal/metrics"
	"github.com/payfisc/payfisc-admin/internal/models"
	"github.com/payfisc/payfisc-admin/internal/policy"
	"github.com/payfisc/payfisc-admin/internal/services"
	"github.com/payfisc/payfisc-admin/view"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Démarre la console HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.log.Sync() //nolint:errcheck
			return serve(cmd.Context(), e)
		},
	}
}

func serve(ctx context.Context, e *env) error {
	cfg, log := e.cfg, e.log

	conn, err := db.Open(cfg.Database, log, cfg.App.Dev)
	if err != nil {
		return err
	}
	if cfg.App.Migrations {
		if err := db.Migrate(conn); err != nil {
			return err
		}
		log.Info("migrations completed")
	}
	created, err := db.Seed(conn, cfg.App.AdminEmail, cfg.App.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Info("bootstrap administrator created", zap.String("email", cfg.App.AdminEmail))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	api, err := newAPIClient(e, apiclient.WithMetrics(m))
	if err != nil {
		return err
	}

	auth.Configure(cfg.App.SessionSecret, !cfg.App.Dev)
	auth.SetOperatorVerifier(func(ctx context.Context, id uint) bool {
		var count int64
		conn.WithContext(ctx).Model(&models.Operator{}).Where("id = ?", id).Count(&count)
		return count > 0
	})
	view.SetDevMode(cfg.App.Dev)
	view.SetAlertTimeout(cfg.App.AlertTimeout)

	journal := audit.NewStore(conn)
	retention := audit.NewRetention(journal, cfg.App.AuditRetention, log, m)
	if err := retention.Start(cfg.App.AuditPurgeSpec); err != nil {
		return err
	}
	defer retention.Stop()

	beacon := analytics.New(cfg.Analytics.URL, cfg.Analytics.Token, cfg.Analytics.Timeout, log)
	defer beacon.Wait()

	app := NewApp(Deps{
		DB:       conn,
		Catalog:  services.NewCatalog(api),
		Gate:     policy.NewAuthGate(conn, cfg.App.ProfileCacheTTL),
		Journal:  journal,
		Metrics:  m,
		Gatherer: reg,
		Beacon:   beacon,
		Log:      log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("api", cfg.API.BaseURL),
			zap.Bool("dev", cfg.App.Dev),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}
