package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"support-chat/internal/analytics"
	"support-chat/internal/storage"
)

func reportCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Summarize one day of the interaction log",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "Day to summarize as YYYY-MM-DD in UTC (default: today)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw statistics as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if a.cfg.LogFilePath == "" {
				return errors.New("LOG_FILE_PATH is empty; no interaction log to report on")
			}

			day := time.Now().UTC()
			if d := cmd.String("date"); d != "" {
				parsed, err := time.Parse(time.DateOnly, d)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				day = parsed
			}

			rec, err := storage.NewFileRecorder(a.cfg.LogFilePath)
			if err != nil {
				return err
			}
			events, err := rec.LoadInteractions()
			if err != nil {
				return err
			}
			stats := analytics.AnalyzeDailyLogs(events, day)

			out := stats.GenerateReportSummary()
			if cmd.Bool("json") {
				if out, err = stats.ToJSON(); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(cmd.Root().Writer, out)
			return err
		},
	}
}
