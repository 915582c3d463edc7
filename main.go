package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/finvarta/annbrief/internal/run"
	"github.com/finvarta/annbrief/internal/serve"
)

func main() {
	app := &cli.App{
		Name:  "annbrief",
		Usage: "summarize new corporate announcements and mail the report",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "process new announcements once",
				Action: run.RunAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "test",
						Usage: "cap the batch at 3 new announcements",
					},
					&cli.BoolFlag{
						Name:  "sample",
						Usage: "use the built-in sample listing instead of fetching",
					},
					&cli.BoolFlag{
						Name:  "notify",
						Usage: "email the report to the configured recipients",
					},
					&cli.StringFlag{
						Name:  "cookie",
						Usage: "cookie header for the listing fetch (overrides config)",
					},
					&cli.StringFlag{
						Name:  "config",
						Value: "config.yaml",
						Usage: "path to the YAML config file",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "only log errors",
					},
				},
			},
			{
				Name:   "runs",
				Usage:  "list recent run history",
				Action: run.RunsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "maximum number of runs to show",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "expose processing over HTTP",
				Action: serve.ServeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Value: ":8000",
						Usage: "listen address",
					},
					&cli.StringFlag{
						Name:  "config",
						Value: "config.yaml",
						Usage: "path to the YAML config file",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "only log errors",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
