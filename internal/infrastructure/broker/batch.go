package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ebridge-portal/internal/domain/entity/activity"
	interfaces "ebridge-portal/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var (
	errWriterStopped = errors.New("activity writer is not running")
	errNilEvent      = errors.New("event is nil")
	// errBatchWrite marks failures after which the batch receipts were already nacked.
	errBatchWrite    = errors.New("write activity batch")
)

// BatchConfig controls when buffered activity events are written.
type BatchConfig struct {
	Size    int
	Timeout time.Duration
}

func (c BatchConfig) limit() int {
	if c.Size <= 0 {
		return 1
	}
	return c.Size
}

// Receipt settles the broker delivery an event arrived in.
type Receipt interface {
	Ack() error
	Nack(requeue bool) error
}

type queuedEvent struct {
	event   activity.Event
	receipt Receipt
}

// BatchWriter collects activity events and writes them to the repository in one call,
// either when Size events are pending or Timeout after the first pending event.
// Receipts are acked after their batch is stored and nacked for redelivery when the
// write fails, so no delivery is settled before its event is persisted.
type BatchWriter struct {
	cfg    BatchConfig
	repo   interfaces.ActivityRepository
	logger *logrus.Entry

	mu       sync.Mutex
	base     context.Context
	pending  []queuedEvent
	deadline *time.Timer
}

func NewBatchWriter(cfg BatchConfig, repo interfaces.ActivityRepository, logger *logrus.Logger) *BatchWriter {
	return &BatchWriter{
		cfg:    cfg,
		repo:   repo,
		logger: logger.WithField("component", "activity_writer"),
	}
}

// Run binds the context used by size- and timer-triggered writes.
func (w *BatchWriter) Run(ctx context.Context) {
	w.bind(ctx)
}

// Stop writes whatever is still pending with ctx.
func (w *BatchWriter) Stop(ctx context.Context) error {
	w.bind(ctx)
	return w.write(ctx, w.detach())
}

// AddEvent queues a copy of event together with the receipt of its delivery; receipt may
// be nil for events that did not come from the broker. Reaching the size limit writes
// synchronously and returns the repository error.
func (w *BatchWriter) AddEvent(event *activity.Event, receipt Receipt) error {
	if event == nil {
		return errNilEvent
	}

	w.mu.Lock()
	ctx := w.base
	if ctx == nil {
		w.mu.Unlock()
		return errWriterStopped
	}
	if err := ctx.Err(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.pending = append(w.pending, queuedEvent{event: *event, receipt: receipt})
	var ready []queuedEvent
	switch {
	case len(w.pending) >= w.cfg.limit():
		ready = w.detachLocked()
	case w.deadline == nil && w.cfg.Timeout > 0:
		w.deadline = time.AfterFunc(w.cfg.Timeout, w.onDeadline)
	}
	w.mu.Unlock()

	return w.write(ctx, ready)
}

func (w *BatchWriter) bind(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	w.mu.Lock()
	w.base = ctx
	w.mu.Unlock()
}

func (w *BatchWriter) onDeadline() {
	w.mu.Lock()
	ctx := w.base
	ready := w.detachLocked()
	w.mu.Unlock()

	if err := w.write(ctx, ready); err != nil {
		w.logger.WithError(err).WithField("requeued", len(ready)).Warn("activity batch write failed")
	}
}

func (w *BatchWriter) detach() []queuedEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.detachLocked()
}

func (w *BatchWriter) detachLocked() []queuedEvent {
	if w.deadline != nil {
		w.deadline.Stop()
		w.deadline = nil
	}
	if len(w.pending) == 0 {
		return nil
	}
	ready := w.pending
	w.pending = make([]queuedEvent, 0, w.cfg.limit())
	return ready
}

func (w *BatchWriter) write(ctx context.Context, batch []queuedEvent) error {
	if len(batch) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	events := make([]activity.Event, len(batch))
	for i := range batch {
		events[i] = batch[i].event
	}

	started := time.Now()
	if err := w.repo.AddEvents(ctx, events); err != nil {
		w.settle(batch, func(r Receipt) error { return r.Nack(true) })
		return fmt.Errorf("%w: %w", errBatchWrite, err)
	}
	w.settle(batch, Receipt.Ack)
	w.logger.WithFields(logrus.Fields{
		"events":  len(events),
		"elapsed": time.Since(started).String(),
	}).Debug("activity batch written")
	return nil
}

func (w *BatchWriter) settle(batch []queuedEvent, fn func(Receipt) error) {
	for _, q := range batch {
		if q.receipt == nil {
			continue
		}
		if err := fn(q.receipt); err != nil {
			w.logger.WithError(err).WithField("event_id", q.event.ID).Warn("settle delivery failed")
		}
	}
}
