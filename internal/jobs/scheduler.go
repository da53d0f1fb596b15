// Package jobs runs the booking lifecycle sweeps on a cron schedule.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"marketapi/internal/config"
	"marketapi/internal/metrics"
	"marketapi/internal/service"
)

// Job names accepted by RunOnce.
const (
	JobExpire   = "expire"
	JobComplete = "complete"
	JobPayout   = "payout"
)

// ErrUnknownJob is returned by RunOnce for a name that is not registered.
var ErrUnknownJob = errors.New("unknown job")

type sweep func(ctx context.Context, now time.Time) (service.SweepResult, error)

type job struct {
	spec string
	run  sweep
}

// Scheduler owns the cron runner. Runs of the same job never overlap.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]job
	timeout time.Duration
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// New builds a scheduler for the three booking sweeps.
func New(bookings service.BookingService, cfg config.JobsConfig, m *metrics.Metrics, log zerolog.Logger) *Scheduler {
	s := &Scheduler{
		jobs: map[string]job{
			JobExpire:   {spec: cfg.ExpireSpec, run: bookings.ExpireStale},
			JobComplete: {spec: cfg.CompleteSpec, run: bookings.CompleteDue},
			JobPayout:   {spec: cfg.PayoutSpec, run: bookings.PayoutDue},
		},
		timeout: cfg.Timeout,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})),
	)
	return s
}

// Names lists the registered jobs in a stable order.
func (s *Scheduler) Names() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start registers every job with a non-empty spec and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, name := range s.Names() {
		j := s.jobs[name]
		if j.spec == "" {
			s.log.Info().Str("job", name).Msg("job disabled")
			continue
		}
		name := name
		if _, err := s.cron.AddFunc(j.spec, func() {
			_, _ = s.RunOnce(ctx, name)
		}); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", name, j.spec, err)
		}
		s.log.Info().Str("job", name).Str("spec", j.spec).Msg("job scheduled")
	}
	s.cron.Start()
	return nil
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce runs one sweep synchronously under the configured timeout.
func (s *Scheduler) RunOnce(ctx context.Context, name string) (service.SweepResult, error) {
	j, ok := s.jobs[name]
	if !ok {
		return service.SweepResult{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := otel.Tracer("marketapi/jobs").Start(ctx, "job."+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("job.name", name)),
	)
	defer span.End()

	start := s.now()
	res, err := j.run(ctx, start.UTC())
	s.metrics.JobRun(name, err)
	span.SetAttributes(
		attribute.Int("job.processed", res.Processed),
		attribute.Int("job.failed", res.Failed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	ev := s.log.Info()
	if err != nil {
		ev = s.log.Error().Err(err)
	} else if res.Failed > 0 {
		ev = s.log.Warn()
	}
	ev.Str("job", name).
		Int("processed", res.Processed).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Dur("elapsed", s.now().Sub(start)).
		Msg("job_run")
	return res, err
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
