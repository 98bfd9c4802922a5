// Package broadcast fans committed order events out to sinks: the websocket hub
// and the optional message broker relays.
//
// Every sink owns a bounded FIFO queue drained by its own goroutine. Publish only
// enqueues, so a slow or failing sink never blocks the request that produced the
// event and never delays the other sinks. A full queue drops the event for that
// sink; the drop is logged and counted.
package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"kitchenpos/internal/core/domain/model/order"
)

const (
	DefaultQueueSize       = 256
	DefaultDeliveryTimeout = 5 * time.Second
)

// Sink is a destination of order events. Deliver is called from a single
// goroutine, in publish order.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event order.Event) error
}

type Options struct {
	QueueSize       int
	DeliveryTimeout time.Duration
}

// Broadcaster implements ports.EventPublisher.
type Broadcaster struct {
	logger  *slog.Logger
	metrics *Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queues []*queue

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type queue struct {
	sink   Sink
	events chan order.Event
}

// NewBroadcaster starts one delivery goroutine per sink. Call Close to stop them.
func NewBroadcaster(logger *slog.Logger, metrics *Metrics, opts Options, sinks ...Sink) *Broadcaster {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = DefaultDeliveryTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Broadcaster{
		logger:  logger.With("component", "Broadcaster"),
		metrics: metrics,
		timeout: opts.DeliveryTimeout,
		ctx:     ctx,
		cancel:  cancel,
	}

	for _, sink := range sinks {
		q := &queue{sink: sink, events: make(chan order.Event, opts.QueueSize)}
		b.queues = append(b.queues, q)
		b.wg.Add(1)
		go b.drain(q)
	}

	b.logger.Info("broadcaster started", "sinks", len(sinks), "queue_size", opts.QueueSize)
	return b
}

// Publish enqueues event for every sink without blocking.
func (b *Broadcaster) Publish(_ context.Context, event order.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, q := range b.queues {
		if b.closed {
			b.drop(q.sink, event, "broadcaster closed")
			continue
		}
		select {
		case q.events <- event:
			b.metrics.Enqueued.WithLabelValues(q.sink.Name(), string(event.Name)).Inc()
		default:
			b.drop(q.sink, event, "queue full")
		}
	}
}

// Close stops accepting events and waits until the queues are drained or ctx is
// done. Deliveries still running when ctx ends are cancelled.
func (b *Broadcaster) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, q := range b.queues {
		close(q.events)
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.cancel()
		b.logger.Info("broadcaster drained")
		return nil
	case <-ctx.Done():
		b.cancel()
		<-done
		b.logger.Warn("broadcaster closed before queues were drained")
		return ctx.Err()
	}
}

func (b *Broadcaster) drain(q *queue) {
	defer b.wg.Done()

	for event := range q.events {
		b.deliver(q.sink, event)
	}
}

func (b *Broadcaster) deliver(sink Sink, event order.Event) {
	if b.ctx.Err() != nil {
		b.drop(sink, event, "delivery cancelled")
		return
	}

	ctx, cancel := context.WithTimeout(b.ctx, b.timeout)
	defer cancel()

	start := time.Now()
	err := sink.Deliver(ctx, event)
	b.metrics.LatencyMS.WithLabelValues(sink.Name()).Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		b.metrics.Failed.WithLabelValues(sink.Name(), string(event.Name)).Inc()
		b.logger.Error("failed to deliver event",
			"sink", sink.Name(),
			"event", event.Name,
			"event_id", event.ID.String(),
			"order_id", int64(event.Order.ID()),
			"error", err)
	}
}

func (b *Broadcaster) drop(sink Sink, event order.Event, reason string) {
	b.metrics.Dropped.WithLabelValues(sink.Name(), string(event.Name)).Inc()
	b.logger.Warn("event dropped",
		"sink", sink.Name(),
		"event", event.Name,
		"event_id", event.ID.String(),
		"order_id", int64(event.Order.ID()),
		"reason", reason)
}
