// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/chartx/internal/tasks"
	"github.com/urfave/cli/v3"
)

func configFlag(r *Runner) cli.Flag {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   path,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example configuration file",
				Flags:  []cli.Flag{configFlag(r)},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					configFlag(r),
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recently applied migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// chartCommand handles chart crawling and aggregation.
func chartCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "Weekly and year-end chart operations",
		Commands: []*cli.Command{
			{
				Name:  "crawl",
				Usage: "Crawl a weekly chart across a date range, checkpointing every row",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "chart",
						Usage: "Chart identifier",
						Value: r.config.Crawl.Chart,
					},
					&cli.StringFlag{
						Name:     "start",
						Usage:    "First chart date (YYYY-MM-DD)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "end",
						Usage: "Last chart date (YYYY-MM-DD), defaults to today",
					},
					&cli.IntFlag{
						Name:  "step",
						Usage: "Days between chart dates",
						Value: r.config.Crawl.StepDays,
					},
					&cli.StringFlag{
						Name:  "checkpoint",
						Usage: "Checkpoint name (defaults to <chart>.csv)",
					},
					&cli.BoolFlag{
						Name:  "resume",
						Usage: "Continue from the latest date in the checkpoint",
					},
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Show the interactive progress monitor",
					},
				},
				Action: r.ChartCrawl,
			},
			{
				Name:  "years",
				Usage: "Fetch year-end charts for a range of years",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "chart",
						Usage: "Year-end chart identifier",
						Value: tasks.DefaultYearChart,
					},
					&cli.IntFlag{
						Name:     "from",
						Usage:    "First year",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "to",
						Usage: "Last year (inclusive), defaults to --from",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write rows to a CSV file",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of rows to print",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ChartYears,
			},
			{
				Name:  "peaks",
				Usage: "Summarize a crawl checkpoint into one peak row per song",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Crawl checkpoint to read",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write summaries to a CSV file",
					},
					&cli.BoolFlag{
						Name:  "by-artist",
						Usage: "Group by title and artist instead of title alone",
					},
					&cli.BoolFlag{
						Name:  "fold-case",
						Usage: "Ignore case and extra whitespace when grouping",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of rows to print",
					},
					&cli.BoolFlag{
						Name:  "plot",
						Usage: "Draw weeks on chart as a bar plot",
					},
					&cli.IntFlag{
						Name:  "width",
						Usage: "Plot bar width",
						Value: 40,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ChartPeaks,
			},
		},
	}
}

// tracksCommand handles Spotify enrichment.
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Track metadata operations",
		Commands: []*cli.Command{
			{
				Name:  "enrich",
				Usage: "Fill Spotify metadata and audio features, checkpointing every row",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Peak summaries CSV used to seed a new checkpoint",
					},
					&cli.StringFlag{
						Name:  "checkpoint",
						Usage: "Track checkpoint name",
						Value: "tracks.csv",
					},
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Show the interactive progress monitor",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "List rows that could not be enriched",
					},
				},
				Action: r.TracksEnrich,
			},
		},
	}
}

// runsCommand handles run history.
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Run history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to return",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.RunsList,
			},
		},
	}
}
