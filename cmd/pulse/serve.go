package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/threadcraft/pulse/internal/archive"
	"github.com/threadcraft/pulse/internal/audience"
	"github.com/threadcraft/pulse/internal/config"
	"github.com/threadcraft/pulse/internal/events"
	"github.com/threadcraft/pulse/internal/retention"
	"github.com/threadcraft/pulse/internal/server"
	"github.com/threadcraft/pulse/internal/store/postgres"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the Pulse notification server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create an HTTP client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Connect to Postgres.
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("event bus enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("event bus disabled (PULSE_NATS_URL not set)")
		}

		// Create the audience resolver.
		var resolver audience.Resolver = audience.NopResolver{}
		if cfg.RolesFile != "" {
			var dir audience.StaticDirectory
			if _, err := toml.DecodeFile(cfg.RolesFile, &dir); err != nil {
				publisher.Close()
				store.Close()
				return err
			}
			resolver = audience.NewRoleResolver(dir)
			logger.Info("role directory loaded", "path", cfg.RolesFile, "tenants", len(dir))
		}

		// Create server components.
		srv := server.NewPulseServer(store, resolver, publisher, logger)
		srv.Engine.SetRetentionWindow(cfg.RetentionWindow)
		srv.Sessions.StartReaper(nil)

		// Start HTTP server.
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: srv.NewHTTPHandler(cfg.AuthToken, cfg.JWTSecret),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start the retention sweeper.
		var sweeper *retention.Sweeper
		if cfg.SweepInterval > 0 {
			sweeper = retention.NewSweeper(srv.Engine, cfg.SweepInterval, logger)
			sweeper.Start()
			logger.Info("retention sweeper started",
				"interval", cfg.SweepInterval,
				"window", cfg.RetentionWindow)
		}

		// Start the archive scheduler if a destination is configured.
		var scheduler *archive.Scheduler
		if cfg.ArchiveInterval > 0 && len(cfg.ArchiveTenants) > 0 {
			var dests []archive.Destination

			if cfg.ArchiveS3Bucket != "" {
				s3Dest, err := archive.NewS3Destination(
					context.Background(),
					cfg.ArchiveS3Bucket,
					cfg.ArchiveS3Prefix,
					cfg.ArchiveS3Region,
					cfg.ArchiveS3Endpoint,
				)
				if err != nil {
					logger.Error("failed to create S3 archive destination", "err", err)
				} else {
					dests = append(dests, s3Dest)
					logger.Info("archive S3 destination enabled",
						"bucket", cfg.ArchiveS3Bucket, "prefix", cfg.ArchiveS3Prefix)
				}
			}

			if len(dests) > 0 {
				scheduler = archive.NewScheduler(store, cfg.ArchiveTenants, dests, cfg.ArchiveInterval, logger)
				scheduler.Start()
				logger.Info("archive scheduler started", "interval", cfg.ArchiveInterval)
			}
		}

		logger.Info("pulse server started", "http_addr", cfg.HTTPAddr)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown.
		if scheduler != nil {
			scheduler.Stop()
			logger.Info("archive scheduler stopped")
		}

		if sweeper != nil {
			sweeper.Stop()
			logger.Info("retention sweeper stopped")
		}

		srv.Sessions.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
