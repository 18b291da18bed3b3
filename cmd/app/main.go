// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/bookflow/cmd/app/commands"
)

var version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "bookflow",
		Usage:   "Book workflow and notification service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the workflow API server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "worker",
				Usage: "Start the notification consumer",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunWorker(ctx, version)
				},
			},
			{
				Name:  "dlq-replay",
				Usage: "Republish dead-lettered events to the main topic",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "drain-timeout",
						Aliases: []string{"t"},
						Value:   0,
						Usage:   "Stop draining after this duration (0 drains until interrupted)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunDLQReplay(ctx, cmd.Duration("drain-timeout"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
