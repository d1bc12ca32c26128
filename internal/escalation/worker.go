package escalation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sinless777/helix-support/internal/config"
	"github.com/sinless777/helix-support/internal/events"
	"github.com/sinless777/helix-support/internal/observability"
)

// Worker delivers escalations from a bounded queue with retry and
// exponential backoff, decoupling the command path from tracker
// latency. Exhausted retries drop the escalation with a log line; the
// escalated status is already durable in the store.
type Worker struct {
	notifier    Notifier
	queue       chan Escalation
	logger      *zap.Logger
	metrics     *observability.Metrics
	maxAttempts int
	backoff     time.Duration
	wg          sync.WaitGroup
}

// NewWorker constructs a stopped worker.
func NewWorker(notifier Notifier, cfg config.EscalationConfig, metrics *observability.Metrics, logger *zap.Logger) *Worker {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Worker{
		notifier:    notifier,
		queue:       make(chan Escalation, queueSize),
		logger:      logger,
		metrics:     metrics,
		maxAttempts: maxAttempts,
		backoff:     cfg.Backoff(),
	}
}

// Start launches the delivery loop. It runs until the context is
// cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case esc := <-w.queue:
				w.deliver(ctx, esc)
			}
		}
	}()
}

// Wait blocks until the delivery loop has exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}

// HandleEvent is the dispatcher subscriber: it extracts the escalation
// payload and enqueues it. A full queue drops the escalation rather
// than blocking the command path.
func (w *Worker) HandleEvent(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketEscalatedPayload)
	if !ok {
		return nil
	}
	w.Enqueue(Escalation{
		TicketKey:   event.TicketKey,
		OwnerID:     payload.OwnerID,
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Status:      payload.Status,
	})
	return nil
}

// Enqueue adds an escalation without blocking.
func (w *Worker) Enqueue(esc Escalation) {
	select {
	case w.queue <- esc:
	default:
		w.metrics.RecordEscalationDropped()
		w.logger.Error("escalation queue full; dropping",
			zap.String("ticket_key", esc.TicketKey))
	}
}

func (w *Worker) deliver(ctx context.Context, esc Escalation) {
	delay := w.backoff
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.notifier.Notify(ctx, esc)
		if err == nil {
			w.metrics.RecordEscalationDelivered()
			return
		}
		w.logger.Warn("escalation delivery failed",
			zap.String("ticket_key", esc.TicketKey),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == w.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
	}
	w.metrics.RecordEscalationDropped()
	w.logger.Error("escalation abandoned after retries",
		zap.String("ticket_key", esc.TicketKey),
		zap.Int("attempts", w.maxAttempts))
}
