package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultReportSpec runs the daily report at 21:00 UTC.
const DefaultReportSpec = "0 21 * * *"

// Scheduler runs periodic jobs.
type Scheduler struct {
	cron       *cron.Cron
	ctx        context.Context
	cancel     context.CancelFunc
	log        zerolog.Logger
	spec       string
	reportFunc func(ctx context.Context) error
}

// New creates a scheduler that runs the report on spec (UTC).
func New(spec string, log zerolog.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultReportSpec
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		log:    log.With().Str("component", "scheduler").Logger(),
		spec:   spec,
	}
}

func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Start registers the report job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.reportFunc == nil {
		return errors.New("report function not set")
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		s.log.Info().Msg("daily report triggered")
		if err := s.reportFunc(s.ctx); err != nil {
			s.log.Error().Err(err).Msg("daily report failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info().Str("spec", s.spec).Msg("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.log.Info().Msg("scheduler stopped")
}

// IsRunning reports whether any job is registered.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
