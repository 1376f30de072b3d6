// Package maintenance runs scheduled housekeeping for the server process.
package maintenance

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pjecz/casiopea/internal/services"
	"github.com/pjecz/casiopea/pkg/logger"
)

const defaultAuditSpec = "@daily"

// AuditPruner is the part of services.AuditService the cleaner drives.
type AuditPruner interface {
	CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error)
}

var _ AuditPruner = (*services.AuditService)(nil)

// Cleaner prunes bitácora lines past their retention on a cron schedule.
type Cleaner struct {
	audit     AuditPruner
	cron      *cron.Cron
	retention int
	schedule  string
	log       *zap.Logger
	started   bool
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithAuditSchedule overrides the cron expression for audit pruning.
func WithAuditSchedule(schedule string) Option {
	return func(cleaner *Cleaner) {
		if schedule != "" {
			cleaner.schedule = schedule
		}
	}
}

// NewCleaner builds a cleaner. A nil pruner or a non-positive retention
// yields a cleaner whose Start schedules nothing.
func NewCleaner(audit AuditPruner, retentionDays int, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		audit:     audit,
		retention: retentionDays,
		schedule:  defaultAuditSpec,
		log:       logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(cleaner)
	}
	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Enabled reports whether there is anything to schedule.
func (c *Cleaner) Enabled() bool {
	return c.audit != nil && c.retention > 0
}

// Start registers the pruning job and launches the scheduler.
func (c *Cleaner) Start() error {
	if !c.Enabled() || c.started {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if _, err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("audit cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	c.started = true
	c.log.Info("audit retention scheduled",
		zap.String("schedule", c.schedule),
		zap.Int("retention_days", c.retention),
	)
	return nil
}

// Stop halts the scheduler, started or not; the returned context is done once
// running jobs finish.
func (c *Cleaner) Stop() context.Context {
	c.started = false
	return c.cron.Stop()
}

// RunOnce prunes immediately and reports the number of removed lines.
func (c *Cleaner) RunOnce(ctx context.Context) (int64, error) {
	if !c.Enabled() {
		return 0, errors.New("maintenance: audit retention is disabled")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	removed, err := c.audit.CleanupOlderThan(ctx, c.retention)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		c.log.Info("audit lines pruned", zap.Int64("removed", removed))
	}
	return removed, nil
}
