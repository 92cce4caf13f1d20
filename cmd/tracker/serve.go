package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/ysam020/task-management-assessment/internal/auth"
	"github.com/ysam020/task-management-assessment/internal/config"
	"github.com/ysam020/task-management-assessment/internal/database"
	"github.com/ysam020/task-management-assessment/internal/events"
	"github.com/ysam020/task-management-assessment/internal/handler"
	"github.com/ysam020/task-management-assessment/internal/metrics"
	"github.com/ysam020/task-management-assessment/internal/middleware"
	"github.com/ysam020/task-management-assessment/internal/scheduler"
	"github.com/ysam020/task-management-assessment/internal/search"
	"github.com/ysam020/task-management-assessment/internal/storage"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   config.DefaultPort,
				Usage:   "HTTP server port",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:    "cors-origin",
				Usage:   "Allowed browser origin (empty disables CORS headers)",
				EnvVars: []string{"CORS_ORIGIN"},
			},
			&cli.StringFlag{
				Name:    "storage",
				Value:   config.DefaultStorageBackend,
				Usage:   "Resume storage backend (local, gcs)",
				EnvVars: []string{"STORAGE_BACKEND"},
			},
			&cli.StringFlag{
				Name:    "upload-dir",
				Value:   config.DefaultUploadDir,
				Usage:   "Directory for locally stored resumes",
				EnvVars: []string{"UPLOAD_DIR"},
			},
			&cli.StringFlag{
				Name:    "public-url",
				Usage:   "Public base URL prepended to local resume links",
				EnvVars: []string{"PUBLIC_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "gcs-bucket",
				Usage:   "Bucket for the gcs storage backend",
				EnvVars: []string{"GCS_BUCKET"},
			},
			&cli.StringFlag{
				Name:    "gcs-credentials",
				Usage:   "Service account file for the gcs storage backend",
				EnvVars: []string{"GOOGLE_APPLICATION_CREDENTIALS"},
			},
			&cli.Int64Flag{
				Name:    "max-upload-size",
				Value:   config.DefaultMaxUploadSize,
				Usage:   "Maximum resume size in bytes",
				EnvVars: []string{"MAX_FILE_SIZE"},
			},
			&cli.StringFlag{
				Name:    "openai-api-key",
				Usage:   "Enables model-backed search when set",
				EnvVars: []string{"OPENAI_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "openai-model",
				Usage:   "Chat model for search query parsing",
				EnvVars: []string{"OPENAI_MODEL"},
			},
			&cli.StringFlag{
				Name:    "stuck-sweep",
				Value:   config.DefaultStuckSweep,
				Usage:   "Cron spec for the stuck-candidate sweep",
				EnvVars: []string{"STUCK_SWEEP"},
			},
			&cli.DurationFlag{
				Name:    "access-ttl",
				Value:   config.DefaultAccessTTL,
				Usage:   "Access token lifetime",
				EnvVars: []string{"JWT_EXPIRES_IN"},
			},
			&cli.DurationFlag{
				Name:    "refresh-ttl",
				Value:   config.DefaultRefreshTTL,
				Usage:   "Refresh token lifetime",
				EnvVars: []string{"JWT_REFRESH_EXPIRES_IN"},
			},
		},
		Action: runServe,
	}
}

// applyServeFlags copies explicitly set serve flags over the loaded config.
func applyServeFlags(c *cli.Context, cfg *config.Config) {
	str := func(flag string, dst *string) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	str("port", &cfg.Server.Port)
	str("cors-origin", &cfg.Server.CORSOrigin)
	str("upload-dir", &cfg.Storage.UploadDir)
	str("public-url", &cfg.Storage.PublicBaseURL)
	str("gcs-bucket", &cfg.Storage.GCSBucket)
	str("gcs-credentials", &cfg.Storage.CredentialsFile)
	str("openai-api-key", &cfg.OpenAI.APIKey)
	str("openai-model", &cfg.OpenAI.Model)
	str("stuck-sweep", &cfg.Scheduler.StuckSweep)
	if c.IsSet("storage") {
		cfg.Storage.Backend = strings.ToLower(c.String("storage"))
	}
	if c.IsSet("max-upload-size") {
		cfg.Storage.MaxUploadSize = c.Int64("max-upload-size")
	}
	if c.IsSet("access-ttl") {
		cfg.Auth.AccessTTL = c.Duration("access-ttl")
	}
	if c.IsSet("refresh-ttl") {
		cfg.Auth.RefreshTTL = c.Duration("refresh-ttl")
	}
}

func runServe(c *cli.Context) error {
	ctx := c.Context
	cfg := configFrom(c)
	applyServeFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := database.New(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m := metrics.New()
	opts := handler.Options{
		Issuer:        auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL),
		MaxUploadSize: cfg.Storage.MaxUploadSize,
		Metrics:       m,
		LoginLimiter: middleware.NewRateLimiter(
			time.Minute/time.Duration(cfg.Server.LoginPerMinute), cfg.Server.LoginBurst, 10*time.Minute),
	}

	closeStore, err := configureStorage(ctx, cfg, &opts)
	if err != nil {
		return err
	}
	defer closeStore.Close()

	if cfg.Redis.URL != "" {
		rdb, err := events.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		opts.Publisher = events.NewRedisPublisher(rdb, cfg.Redis.Channel)
	} else {
		slog.Info("redis not configured, change events disabled")
	}

	if cfg.OpenAI.APIKey != "" {
		opts.Parser = search.NewOpenAIParser(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		slog.Info("openai not configured, search uses keyword matching")
	}

	h := handler.New(db.Pool(), opts)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	sched := scheduler.New(cfg.Scheduler.StuckSweep, h.CandidateService(), h.AuthService(), m)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           middleware.Observe(m, middleware.CORS(cfg.Server.CORSOrigin, mux)),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// configureStorage sets the resume store on opts and returns its closer.
func configureStorage(ctx context.Context, cfg *config.Config, opts *handler.Options) (io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.StorageGCS:
		store, err := storage.NewGCSStore(ctx, cfg.Storage.GCSBucket, cfg.Storage.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open gcs bucket: %w", err)
		}
		opts.Files = store
		slog.Info("resume storage configured", "backend", config.StorageGCS, "bucket", cfg.Storage.GCSBucket)
		return store, nil
	default:
		prefix := strings.TrimRight(cfg.Storage.PublicBaseURL, "/") + "/uploads"
		store, err := storage.NewLocalStore(cfg.Storage.UploadDir, prefix)
		if err != nil {
			return nil, err
		}
		opts.Files = store
		opts.FilesHandler = store.Handler()
		slog.Info("resume storage configured", "backend", config.StorageLocal, "dir", cfg.Storage.UploadDir)
		return nopCloser{}, nil
	}
}
