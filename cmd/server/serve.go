package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"support-chat/internal/analytics"
	"support-chat/internal/chat"
	"support-chat/internal/faq"
	"support-chat/internal/httpapi"
	"support-chat/internal/llm"
	"support-chat/internal/scheduler"
	"support-chat/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP chat service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides PORT)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if p := cmd.String("port"); p != "" {
				a.cfg.Port = p
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := llm.NewFactory(a.cfg).CreateClient(string(a.cfg.LLMProvider))
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}

	faqs, err := faq.Load(a.cfg.FAQFilePath)
	switch {
	case errors.Is(err, faq.ErrNotFound):
		a.log.Warn().Str("path", a.cfg.FAQFilePath).Msg("faq file not found, answering without FAQs")
	case err != nil:
		return fmt.Errorf("load faqs: %w", err)
	default:
		a.log.Info().Int("count", len(faqs)).Msg("faqs loaded")
	}

	var rec storage.Recorder
	if a.cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(a.cfg.LogFilePath)
		if err != nil {
			a.log.Warn().Err(err).Msg("interaction log disabled")
		} else {
			rec = fr
			sched := scheduler.New(a.cfg.ReportCron, a.log)
			sched.SetReportFunction(func(context.Context) error {
				return a.logDailyReport(fr, time.Now().UTC())
			})
			if err := sched.Start(); err != nil {
				return fmt.Errorf("start scheduler: %w", err)
			}
			defer sched.Stop()
		}
	}

	svc := chat.NewService(client, store, faqs, rec)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", a.cfg.Port),
		Handler:           httpapi.NewServer(svc, a.cfg.StaticDir, a.log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Str("provider", string(a.cfg.LLMProvider)).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *app) logDailyReport(rec storage.Recorder, day time.Time) error {
	events, err := rec.LoadInteractions()
	if err != nil {
		return fmt.Errorf("load interactions: %w", err)
	}
	stats := analytics.AnalyzeDailyLogs(events, day)
	a.log.Info().
		Str("date", stats.Date).
		Int("messages", stats.TotalMessages).
		Int("sessions", stats.UniqueSessions).
		Int("escalations", stats.Escalations).
		Msg(stats.GenerateReportSummary())
	return nil
}
