package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/ysam020/task-management-assessment/internal/client"
	"github.com/ysam020/task-management-assessment/internal/coordinator"
	"github.com/ysam020/task-management-assessment/internal/domain"
	"github.com/ysam020/task-management-assessment/internal/handler/dto"
	"github.com/ysam020/task-management-assessment/internal/service"
)

// remoteListLimit is how many entities are loaded before a mutation.
const remoteListLimit = 100

func remoteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "api-url",
			Value:   "http://localhost:5000",
			Usage:   "Tracker server base URL",
			EnvVars: []string{"TRACKER_API_URL"},
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Access token",
			EnvVars: []string{"TRACKER_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "email",
			Usage:   "Log in with this email when no token is given",
			EnvVars: []string{"TRACKER_EMAIL"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Password for --email",
			EnvVars: []string{"TRACKER_PASSWORD"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: client.DefaultTimeout,
			Usage: "Per-request timeout",
		},
	}
}

func remoteClient(c *cli.Context) (*client.Client, error) {
	api := client.New(c.String("api-url"), c.Duration("timeout"))
	if token := c.String("token"); token != "" {
		return api.WithToken(token), nil
	}
	if c.String("email") == "" {
		return nil, errors.New("--token or --email/--password is required")
	}
	if _, err := api.Login(c.Context, c.String("email"), c.String("password")); err != nil {
		return nil, err
	}
	return api, nil
}

func taskCommand() *cli.Command {
	return &cli.Command{
		Name:  "task",
		Usage: "Manage your tasks on a running server",
		Flags: remoteFlags(),
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "PENDING, IN_PROGRESS or COMPLETED"},
					&cli.StringFlag{Name: "search", Usage: "Match title and description"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "limit", Value: 10},
				},
				Action: func(c *cli.Context) error {
					tasks, err := loadTasks(c, client.TaskQuery{
						Page:   c.Int("page"),
						Limit:  c.Int("limit"),
						Status: strings.ToUpper(c.String("status")),
						Search: c.String("search"),
					})
					if err != nil {
						return err
					}
					view := tasks.View()
					printTasks(c.App.Writer, view.Items)
					fmt.Fprintf(c.App.Writer, "\n%d total: %d pending, %d in progress, %d completed\n",
						view.Stats.Total, view.Stats.Pending, view.Stats.InProgress, view.Stats.Completed)
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "Create a task",
				ArgsUsage: "<title>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "status"},
				},
				Action: func(c *cli.Context) error {
					title := strings.Join(c.Args().Slice(), " ")
					if title == "" {
						return errors.New("title is required")
					}
					in := service.CreateTaskInput{
						Title:  title,
						Status: domain.TaskStatus(strings.ToUpper(c.String("status"))),
					}
					if d := c.String("description"); d != "" {
						in.Description = &d
					}

					tasks, err := loadTasks(c, client.TaskQuery{Limit: remoteListLimit})
					if err != nil {
						return err
					}
					task, err := tasks.Create(c.Context, in)
					if err != nil {
						return err
					}
					printTasks(c.App.Writer, []dto.TaskResponse{task})
					return nil
				},
			},
			{
				Name:      "toggle",
				Usage:     "Advance a task to its next status",
				ArgsUsage: "<task-id>",
				Action: func(c *cli.Context) error {
					id, err := firstArg(c, "task id")
					if err != nil {
						return err
					}
					tasks, err := loadTasks(c, client.TaskQuery{Limit: remoteListLimit})
					if err != nil {
						return err
					}
					task, err := tasks.Toggle(c.Context, id)
					if err != nil {
						return err
					}
					printTasks(c.App.Writer, []dto.TaskResponse{task})
					return nil
				},
			},
			{
				Name:      "rm",
				Usage:     "Delete a task",
				ArgsUsage: "<task-id>",
				Action: func(c *cli.Context) error {
					id, err := firstArg(c, "task id")
					if err != nil {
						return err
					}
					tasks, err := loadTasks(c, client.TaskQuery{Limit: remoteListLimit})
					if err != nil {
						return err
					}
					if err := tasks.Delete(c.Context, id); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "deleted %s\n", id)
					return nil
				},
			},
		},
	}
}

func candidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "candidate",
		Usage: "Inspect and move candidates on a running server",
		Flags: remoteFlags(),
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List candidates",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "stage", Usage: "Only candidates in this stage"},
					&cli.StringFlag{Name: "search", Usage: "Match name, email or position"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "limit", Value: 10},
				},
				Action: func(c *cli.Context) error {
					cands, err := loadCandidates(c, client.CandidateQuery{
						Page:   c.Int("page"),
						Limit:  c.Int("limit"),
						Stage:  c.String("stage"),
						Search: c.String("search"),
					})
					if err != nil {
						return err
					}
					printCandidates(c.App.Writer, cands.View().Items)
					return nil
				},
			},
			{
				Name:      "move",
				Usage:     "Move a candidate to a stage (HR only)",
				ArgsUsage: "<candidate-id> <stage>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "reason"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("expected <candidate-id> <stage>, got %d arguments", c.NArg())
					}
					cands, err := loadCandidates(c, client.CandidateQuery{Limit: remoteListLimit})
					if err != nil {
						return err
					}
					cand, err := cands.Move(c.Context, c.Args().Get(0), c.Args().Get(1), c.String("reason"))
					if err != nil {
						return err
					}
					printCandidates(c.App.Writer, []dto.CandidateResponse{cand})
					return nil
				},
			},
			{
				Name:      "next",
				Usage:     "Advance a candidate one stage (HR only)",
				ArgsUsage: "<candidate-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "reason"},
				},
				Action: func(c *cli.Context) error {
					id, err := firstArg(c, "candidate id")
					if err != nil {
						return err
					}
					cands, err := loadCandidates(c, client.CandidateQuery{Limit: remoteListLimit})
					if err != nil {
						return err
					}
					cand, err := cands.Advance(c.Context, id, c.String("reason"))
					if err != nil {
						return err
					}
					printCandidates(c.App.Writer, []dto.CandidateResponse{cand})
					return nil
				},
			},
		},
	}
}

func loadTasks(c *cli.Context, q client.TaskQuery) (*coordinator.Tasks, error) {
	api, err := remoteClient(c)
	if err != nil {
		return nil, err
	}
	tasks := coordinator.NewTasks(api)
	if err := tasks.Fetch(c.Context, q); err != nil {
		return nil, err
	}
	if err := tasks.RefreshStats(c.Context); err != nil {
		return nil, err
	}
	return tasks, nil
}

func loadCandidates(c *cli.Context, q client.CandidateQuery) (*coordinator.Candidates, error) {
	api, err := remoteClient(c)
	if err != nil {
		return nil, err
	}
	cands := coordinator.NewCandidates(api)
	if err := cands.Fetch(c.Context, q); err != nil {
		return nil, err
	}
	return cands, nil
}

func firstArg(c *cli.Context, name string) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("%s is required", name)
	}
	return c.Args().First(), nil
}

func printTasks(w io.Writer, tasks []dto.TaskResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tUPDATED")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Title, t.UpdatedAt.Format(time.DateTime))
	}
	tw.Flush()
}

func printCandidates(w io.Writer, cands []dto.CandidateResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOSITION\tSTAGE\tSTUCK")
	for _, c := range cands {
		stuck := ""
		if c.IsStuck {
			stuck = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Position, c.CurrentStage, stuck)
	}
	tw.Flush()
}
