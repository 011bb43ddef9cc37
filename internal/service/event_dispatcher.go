package service

//go:generate mockgen -source=event_dispatcher.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/admission-api/internal/models"
	"github.com/noah-isme/admission-api/pkg/jobs"
)

// EventPublisher delivers a JSON payload to a named broker queue.
type EventPublisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

// DispatcherConfig tunes background event delivery.
type DispatcherConfig struct {
	Queue      string
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// EventDispatcher hands domain events to the publisher from a worker pool so
// request handlers never wait on the broker.
type EventDispatcher struct {
	publisher EventPublisher
	queue     *jobs.Queue
	target    string
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewEventDispatcher constructs a dispatcher. Call Start before Dispatch.
func NewEventDispatcher(publisher EventPublisher, metrics *MetricsService, cfg DispatcherConfig, logger *zap.Logger) *EventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Queue == "" {
		cfg.Queue = "admission.events"
	}
	d := &EventDispatcher{
		publisher: publisher,
		target:    cfg.Queue,
		metrics:   metrics,
		logger:    logger,
	}
	d.queue = jobs.NewQueue("events", d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnDrop: func(job jobs.Job, err error) {
			d.metrics.RecordEventPublished(job.Type, false)
			d.logger.Error("event dropped", zap.String("event_id", job.ID), zap.String("event", job.Type), zap.Error(err))
		},
	})
	return d
}

// Start launches the delivery workers.
func (d *EventDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop waits for the workers to exit. Buffered events are discarded.
func (d *EventDispatcher) Stop() {
	d.queue.Stop()
}

// Pending returns the number of buffered events.
func (d *EventDispatcher) Pending() int {
	return d.queue.Len()
}

// SeatConfirmed queues a seat.confirmed event.
func (d *EventDispatcher) SeatConfirmed(event models.SeatConfirmedEvent) error {
	err := d.queue.TryEnqueue(jobs.Job{ID: event.EventID, Type: models.EventSeatConfirmed, Payload: event})
	if err != nil {
		d.metrics.RecordEventPublished(models.EventSeatConfirmed, false)
		return fmt.Errorf("dispatch %s: %w", models.EventSeatConfirmed, err)
	}
	return nil
}

func (d *EventDispatcher) handle(ctx context.Context, job jobs.Job) error {
	if err := d.publisher.Publish(ctx, d.target, job.Payload); err != nil {
		return err
	}
	d.metrics.RecordEventPublished(job.Type, true)
	d.logger.Debug("event published", zap.String("event_id", job.ID), zap.String("event", job.Type), zap.Int("attempt", job.Attempt+1))
	return nil
}
