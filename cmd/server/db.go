package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"support-chat/internal/transcript"
)

func initDBCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "init-db",
		Usage: "Create the sessions table if it does not exist",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			a.log.Info().Str("backend", string(a.cfg.StorageBackend)).Msg("schema ready")
			return nil
		},
	}
}

func sessionsCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "List stored sessions with a preview of their first question",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.ListSessions(ctx)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}

			w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tTURNS\tPREVIEW")
			for _, s := range list {
				fmt.Fprintf(w, "%s\t%d\t%s\n", s.SessionID, len(transcript.Decode(s.Transcript)), transcript.Preview(s.Transcript))
			}
			return w.Flush()
		},
	}
}
