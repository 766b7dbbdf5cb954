package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"support-chat/internal/config"
	"support-chat/internal/history"
	"support-chat/internal/logger"
	"support-chat/internal/session"
)

// app carries what every subcommand needs once the root flags are parsed.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	envErr := godotenv.Load(cmd.String("env-file"))

	cfg, err := config.Load()
	if err != nil {
		return ctx, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	a.cfg = cfg
	a.log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if envErr != nil {
		a.log.Warn().Err(envErr).Msg(".env file not loaded")
	}
	return a.log.WithContext(ctx), nil
}

// openStore returns the configured session store with its schema in place.
func (a *app) openStore(ctx context.Context) (session.Store, error) {
	if err := a.cfg.ValidateStorage(); err != nil {
		return nil, err
	}

	switch a.cfg.StorageBackend {
	case config.StorageMemory:
		a.log.Warn().Msg("using in-memory session store; sessions will not survive a restart")
		return history.NewManager(), nil
	case config.StoragePostgres:
		store, err := session.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.StorageBackend)
	}
}
