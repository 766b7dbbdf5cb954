package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	a := &app{}

	root := &cli.Command{
		Name:  "support-chat",
		Usage: "FAQ-grounded customer support chat service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file loaded before reading the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides LOG_LEVEL)",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			serveCmd(a),
			initDBCmd(a),
			sessionsCmd(a),
			reportCmd(a),
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("exit")
	}
}
