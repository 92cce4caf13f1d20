package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/ysam020/task-management-assessment/internal/auth"
	"github.com/ysam020/task-management-assessment/internal/database"
	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/events"
	"github.com/ysam020/task-management-assessment/internal/handler"
	"github.com/ysam020/task-management-assessment/internal/metrics"
	"github.com/ysam020/task-management-assessment/internal/scheduler"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: withDB(func(c *cli.Context, db *database.DB) error {
					return database.RunMigrations(c.Context, db.Pool())
				}),
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Action: withDB(func(c *cli.Context, db *database.DB) error {
					return database.RollbackMigration(c.Context, db.Pool())
				}),
			},
			{
				Name:  "version",
				Usage: "Print the applied schema version",
				Action: withDB(func(c *cli.Context, db *database.DB) error {
					v, err := database.MigrationVersion(c.Context, db.Pool())
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, v)
					return nil
				}),
			},
		},
	}
}

func checkStuckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-stuck",
		Usage: "List candidates stuck in a stage and purge expired refresh tokens",
		Action: withDB(func(c *cli.Context, db *database.DB) error {
			if err := database.RunMigrations(c.Context, db.Pool()); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			cfg := configFrom(c)
			h := handler.New(db.Pool(), handler.Options{
				Issuer: auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL),
			})

			report, err := scheduler.New("", h.CandidateService(), h.AuthService(), metrics.New()).RunOnce(c.Context)
			for _, cand := range report.Stuck {
				fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\tsince %s\n",
					cand.ID, cand.Name, cand.Stage, cand.StageEnteredAt.Format(time.RFC3339))
			}
			fmt.Fprintf(c.App.Writer, "%d stuck, %d expired refresh tokens purged\n", len(report.Stuck), report.Purged)
			return err
		}),
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Inspect change events",
		Subcommands: []*cli.Command{
			{
				Name:  "tail",
				Usage: "Print change events as they are published",
				Action: func(c *cli.Context) error {
					cfg := configFrom(c)
					if cfg.Redis.URL == "" {
						return fmt.Errorf("redis URL is required (--redis-url or REDIS_URL)")
					}

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					rdb, err := events.NewRedisClient(ctx, cfg.Redis.URL)
					if err != nil {
						return err
					}
					defer rdb.Close()

					slog.Info("listening for change events", "channel", cfg.Redis.Channel)
					return events.Listen(ctx, rdb, cfg.Redis.Channel, func(e domain.ChangeEvent) {
						line := fmt.Sprintf("%s\t%s\t%s", e.OccurredAt.Format(time.RFC3339), e.Type, e.EntityID)
						if e.FromStage != nil || e.ToStage != nil {
							line += fmt.Sprintf("\t%s -> %s", stageOrDash(e.FromStage), stageOrDash(e.ToStage))
						}
						fmt.Fprintln(c.App.Writer, line)
					})
				},
			},
		},
	}
}

func stageOrDash(s *domain.Stage) string {
	if s == nil {
		return "-"
	}
	return string(*s)
}

// withDB opens the pool for the duration of the action.
func withDB(fn func(c *cli.Context, db *database.DB) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg := configFrom(c)
		if err := requireDatabaseURL(cfg); err != nil {
			return err
		}

		db, err := database.New(c.Context, cfg.Database.URL, database.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		return fn(c, db)
	}
}
