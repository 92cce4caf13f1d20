// @title			Hiring & Task Tracker API
// @version		1.0
// @description	Candidate pipeline with forward-only stage moves, collaboration and personal tasks.
// @BasePath		/api
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"github.com/ysam020/task-management-assessment/internal/config"
	"github.com/ysam020/task-management-assessment/internal/logger"
)

const configKey = "config"

func main() {
	app := &cli.App{
		Name:  "tracker",
		Usage: "Hiring pipeline and task tracker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML settings file",
				EnvVars: []string{"TRACKER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "env-file",
				Value:   ".env",
				Usage:   "Optional .env file loaded before flags are read",
				EnvVars: []string{"TRACKER_ENV_FILE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   config.DefaultLogLevel,
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Value:   config.DefaultDatabaseURL,
				Usage:   "PostgreSQL database URL",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "jwt-secret",
				Usage:   "HMAC secret for access tokens",
				EnvVars: []string{"JWT_SECRET"},
			},
			&cli.StringFlag{
				Name:    "jwt-refresh-secret",
				Usage:   "HMAC secret for refresh tokens (defaults to the access secret)",
				EnvVars: []string{"JWT_REFRESH_SECRET"},
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for change events (optional)",
				EnvVars: []string{"REDIS_URL"},
			},
			&cli.StringFlag{
				Name:    "events-channel",
				Value:   "tracker.events",
				Usage:   "Redis channel for change events",
				EnvVars: []string{"EVENTS_CHANNEL"},
			},
		},
		Before: func(c *cli.Context) error {
			if err := godotenv.Load(c.String("env-file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load env file: %w", err)
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			logger.Setup(logger.ParseLevel(cfg.LogLevel))

			if c.App.Metadata == nil {
				c.App.Metadata = map[string]any{}
			}
			c.App.Metadata[configKey] = cfg
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			checkStuckCommand(),
			eventsCommand(),
			taskCommand(),
			candidateCommand(),
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional YAML file and lets set flags and
// environment variables override it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// godotenv fills the environment after flags were parsed, so values that
	// came only from the .env file are read here.
	override := func(flag, env string, dst *string) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		} else if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
	override("log-level", "LOG_LEVEL", &cfg.LogLevel)
	override("database-url", "DATABASE_URL", &cfg.Database.URL)
	override("jwt-secret", "JWT_SECRET", &cfg.Auth.JWTSecret)
	override("jwt-refresh-secret", "JWT_REFRESH_SECRET", &cfg.Auth.RefreshSecret)
	override("redis-url", "REDIS_URL", &cfg.Redis.URL)
	override("events-channel", "EVENTS_CHANNEL", &cfg.Redis.Channel)
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = c.String("events-channel")
	}

	return cfg, nil
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

func requireDatabaseURL(cfg *config.Config) error {
	if cfg.Database.URL == "" {
		return errors.New("database URL is required (--database-url or DATABASE_URL)")
	}
	return nil
}
