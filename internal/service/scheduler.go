package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"auditchain/internal/domain"
)

// Scheduler produces daily attestations for every known tenant. The cron
// wrapper decides "when"; RunDaily is a pure function of (tenants, asOf)
// and can be invoked directly with a fixed date.
type Scheduler struct {
	svc         *AttestationService
	events      domain.EventRepository
	logger      *slog.Logger
	cron        *cron.Cron
	timeout     time.Duration
	concurrency int
}

// NewScheduler creates a daily attestation scheduler. cronSpec uses the
// standard 5-field cron format and should fire once per UTC day shortly
// after midnight.
func NewScheduler(svc *AttestationService, events domain.EventRepository, logger *slog.Logger, timeout time.Duration, concurrency int) *Scheduler {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Scheduler{
		svc:         svc,
		events:      events,
		logger:      logger,
		cron:        cron.New(cron.WithLocation(time.UTC)),
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// Start registers the daily job and starts the cron scheduler.
func (s *Scheduler) Start(cronSpec string) error {
	_, err := s.cron.AddFunc(cronSpec, func() {
		ctx := context.Background()
		if err := s.RunDaily(ctx, time.Now()); err != nil {
			s.logger.Warn("daily attestation run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("attestation scheduler started", "schedule", cronSpec)
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("attestation scheduler stopped")
}

// RunDaily attests the closed UTC day preceding asOf for every tenant.
// Tenants are processed with bounded concurrency and are fully independent:
// a failure for one tenant is logged and never blocks the others. The
// listing error is the only error this returns.
func (s *Scheduler) RunDaily(ctx context.Context, asOf time.Time) error {
	start, end := DailyWindow(asOf)

	tenants, err := s.events.ListTenants(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, tenant := range tenants {
		tenant := tenant
		g.Go(func() error {
			// A stuck tenant must not block the daily run indefinitely.
			tctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			a, err := s.svc.CreateManualAttestation(tctx, tenant, &start, &end)
			if err != nil {
				s.logger.Warn("tenant attestation failed",
					"tenant", tenant,
					"windowStart", start,
					"error", err,
				)
				return nil // isolate: never abort the run for other tenants
			}
			s.logger.Info("tenant attested",
				"tenant", tenant,
				"windowStart", start,
				"ok", a.OK,
				"count", a.Count,
			)
			return nil
		})
	}

	return g.Wait()
}

// DailyWindow returns the closed UTC-day window preceding asOf: from
// yesterday 00:00 UTC (inclusive) up to but not including today 00:00 UTC.
// The end bound backs off one nanosecond because the verifier range is
// inclusive on both sides.
func DailyWindow(asOf time.Time) (start, end time.Time) {
	asOf = asOf.UTC()
	midnight := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -1), midnight.Add(-time.Nanosecond)
}
