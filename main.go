// clipmetrics collects engagement metrics for short-form video posts.
//
// Usage:
//   clipmetrics collect --targets "https://www.tiktok.com/@user/video/123"
//   clipmetrics collect --targets-file targets.txt --dump-raw ./raw
//   clipmetrics report --batch <id> --keywords 25
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/clipmetrics/internal/collect"
	"github.com/dtnitsch/clipmetrics/internal/reportcmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := &cli.App{
		Name:    "clipmetrics",
		Usage:   "Adaptive extraction dispatcher for short-form video metrics",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		Commands: []*cli.Command{
			{
				Name:   "collect",
				Usage:  "Run a batch of extractions through the dispatcher",
				Action: collect.CollectAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "targets",
						Usage: "Comma-separated post URLs",
					},
					&cli.StringFlag{
						Name:  "targets-file",
						Usage: "File with one post URL per line ('#' comments allowed)",
					},
					&cli.StringFlag{
						Name:    "config",
						Value:   "config.yaml",
						Usage:   "Dispatcher configuration file",
						EnvVars: []string{"CLIPMETRICS_CONFIG"},
					},
					&cli.StringFlag{
						Name:    "db",
						Usage:   "SQLite database path (defaults to config, then binary directory)",
						EnvVars: []string{"CLIPMETRICS_DB"},
					},
					&cli.Float64Flag{
						Name:  "max-budget",
						Usage: "Override the daily budget in dollars",
					},
					&cli.IntFlag{
						Name:  "max-requests",
						Usage: "Override the daily request quota",
					},
					&cli.StringFlag{
						Name:  "dump-raw",
						Usage: "Directory for raw response dumps (disabled when empty)",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Only log errors",
					},
				},
			},
			{
				Name:   "report",
				Usage:  "Summarize stored attempts and snapshots",
				Action: reportcmd.ReportAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Usage:   "SQLite database path",
						EnvVars: []string{"CLIPMETRICS_DB"},
					},
					&cli.StringFlag{
						Name:  "batch",
						Usage: "Restrict to one batch id (all batches when empty)",
					},
					&cli.IntFlag{
						Name:  "keywords",
						Value: 25,
						Usage: "Number of caption keywords to include (0 disables)",
					},
					&cli.BoolFlag{
						Name:  "list",
						Usage: "List recent batches instead of reporting",
					},
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "Number of batches to list",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
