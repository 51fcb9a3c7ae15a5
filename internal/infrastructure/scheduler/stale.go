package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "ebridge-portal/internal/domain/entity/proposals"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SummaryFunc returns the current proposal summary.
type SummaryFunc func(ctx context.Context) (domain.Summary, error)

type StaleGauge interface {
	SetStalePending(n int)
}

// StaleReporter periodically reports pending proposals past their deadline. Deadlines are
// advisory, so it only publishes the count.
type StaleReporter struct {
	cron      *cron.Cron
	summarize SummaryFunc
	gauge     StaleGauge
	logger    *logrus.Entry
	timeout   time.Duration
}

func NewStaleReporter(spec string, summarize SummaryFunc, gauge StaleGauge, logger *logrus.Logger) (*StaleReporter, error) {
	if summarize == nil {
		return nil, errors.New("summary func is required")
	}
	r := &StaleReporter{
		cron:      cron.New(),
		summarize: summarize,
		gauge:     gauge,
		logger:    logger.WithField("component", "stale_reporter"),
		timeout:   30 * time.Second,
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("schedule stale report %q: %w", spec, err)
	}
	return r, nil
}

func (r *StaleReporter) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for a running report to finish.
func (r *StaleReporter) Stop() {
	<-r.cron.Stop().Done()
}

func (r *StaleReporter) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.RunOnce(ctx); err != nil {
		r.logger.WithError(err).Warn("stale proposal report failed")
	}
}

func (r *StaleReporter) RunOnce(ctx context.Context) error {
	summary, err := r.summarize(ctx)
	if err != nil {
		return err
	}
	if r.gauge != nil {
		r.gauge.SetStalePending(summary.StalePending)
	}
	entry := r.logger.WithFields(logrus.Fields{
		"pending":       summary.Pending,
		"stale_pending": summary.StalePending,
	})
	if summary.StalePending > 0 {
		entry.Warn("pending proposals past deadline")
		return nil
	}
	entry.Debug("no stale proposals")
	return nil
}
