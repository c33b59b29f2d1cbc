package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/me/sked/internal/archive"
	"github.com/me/sked/internal/config"
	"github.com/me/sked/internal/export"
	"github.com/me/sked/internal/generate"
	"github.com/me/sked/internal/ingest"
	"github.com/me/sked/internal/logging"
	"github.com/me/sked/internal/reconcile"
	"github.com/me/sked/internal/server"
	"github.com/me/sked/internal/store"
	"github.com/me/sked/internal/supervisor"
	"github.com/me/sked/pkg/model"
	"github.com/me/sked/pkg/optimizer"
)

func main() {
	cfg := config.FromEnv()

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Resolve database path.
	dbPath := cfg.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".sked")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		dbPath = filepath.Join(dir, "sked.db")
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", dbPath)

	// Constraint weights: defaults, optionally overridden from YAML.
	weights := model.DefaultConstraintWeights()
	if cfg.WeightsFile != "" {
		weights, err = config.LoadWeights(cfg.WeightsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load weights: %v\n", err)
			os.Exit(1)
		}
		logger.Info("constraint weights loaded", "path", cfg.WeightsFile)
	}

	// Optimizer client.
	optCfg := optimizer.DefaultConfig().
		WithBaseURL(cfg.Optimizer.BaseURL).
		WithPushData(cfg.Optimizer.PushData)
	client := optimizer.NewClient(optCfg, logger)

	// Supervisor, only when auto-start is configured.
	var sup *supervisor.Supervisor
	var ensurer generate.ProcessEnsurer
	if cfg.Optimizer.AutoStart {
		sup = supervisor.New(supervisor.Config{
			LauncherPath:   cfg.Optimizer.LauncherPath,
			ArtifactPath:   cfg.Optimizer.ArtifactPath,
			BaseURL:        cfg.Optimizer.BaseURL,
			StartupTimeout: cfg.Optimizer.StartupTimeout(),
		}, client, logger)
		defer sup.Stop()
		ensurer = sup
		logger.Info("optimizer auto-start enabled", "artifact", cfg.Optimizer.ArtifactPath)
	}

	// Export payload archiver: S3 when a bucket is set, else local dir.
	var archiver generate.Archiver
	switch {
	case cfg.ArchiveBucket != "":
		archiver, err = archive.NewS3Archiver(context.Background(), cfg.ArchiveBucket, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "s3 archiver: %v\n", err)
			os.Exit(1)
		}
		logger.Info("payload archiving to s3", "bucket", cfg.ArchiveBucket)
	case cfg.ArchiveDir != "":
		archiver, err = archive.NewDirArchiver(cfg.ArchiveDir, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dir archiver: %v\n", err)
			os.Exit(1)
		}
		logger.Info("payload archiving to disk", "dir", cfg.ArchiveDir)
	}

	// Generation pipeline.
	mapper := export.NewMapper(st, weights, logger)
	importer := ingest.NewImporter(st, logger)
	validator := ingest.NewValidator(st, logger)
	reconciler := reconcile.NewReconciler(importer, validator, logger)
	orchestrator := generate.NewOrchestrator(client, cfg.Optimizer.PollInterval(), logger)
	svc := generate.NewService(ensurer, mapper, client, orchestrator, reconciler, archiver,
		cfg.Optimizer.DefaultTimeBudget(), logger)

	serverOpts := []server.Option{}
	if cfg.Optimizer.Enabled {
		serverOpts = append(serverOpts, server.WithOptimizerHealth(client))
	}

	srv := server.New(cfg, st, svc, mapper, validator, logger, serverOpts...)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Stop the optimizer child before the HTTP server so in-flight polls fail fast.
	if sup != nil {
		sup.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
