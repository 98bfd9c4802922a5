package broadcast_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"kitchenpos/internal/adapters/out/broadcast"
	"kitchenpos/internal/core/domain/model/kernel"
	"kitchenpos/internal/core/domain/model/order"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name    string
	mu      sync.Mutex
	events  []order.Event
	block   chan struct{}
	failErr error
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(ctx context.Context, e order.Event) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	return s.failErr
}

func (s *recordingSink) Events() []order.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]order.Event(nil), s.events...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func event(t *testing.T, id order.ID) order.Event {
	t.Helper()
	at := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	number, err := order.NewNumber(at, int(id))
	require.NoError(t, err)
	o, err := order.RestoreOrder(id, number, nil, kernel.Zero(), order.Pending, "", at, at)
	require.NoError(t, err)
	return order.NewOrderCreatedEvent(o)
}

func TestBroadcaster_DeliversInPublishOrder(t *testing.T) {
	sink := &recordingSink{name: "first"}
	other := &recordingSink{name: "second"}
	metrics := broadcast.NewMetrics(prometheus.NewRegistry())
	b := broadcast.NewBroadcaster(discardLogger(), metrics, broadcast.Options{QueueSize: 100}, sink, other)

	for i := 1; i <= 50; i++ {
		b.Publish(t.Context(), event(t, order.ID(i)))
	}
	require.NoError(t, b.Close(t.Context()))

	for _, s := range []*recordingSink{sink, other} {
		events := s.Events()
		require.Len(t, events, 50)
		for i, e := range events {
			assert.Equal(t, order.ID(i+1), e.Order.ID())
		}
	}
	assert.InDelta(t, 50, testutil.ToFloat64(metrics.Enqueued.WithLabelValues("first", "new_order")), 0)
}

func TestBroadcaster_SlowSinkDoesNotBlockPublishOrOtherSinks(t *testing.T) {
	slow := &recordingSink{name: "slow", block: make(chan struct{})}
	fast := &recordingSink{name: "fast"}
	metrics := broadcast.NewMetrics(prometheus.NewRegistry())
	b := broadcast.NewBroadcaster(discardLogger(), metrics, broadcast.Options{QueueSize: 2}, slow, fast)

	published := make(chan struct{})
	go func() {
		for i := 1; i <= 10; i++ {
			b.Publish(context.Background(), event(t, order.ID(i)))
			time.Sleep(time.Millisecond)
		}
		close(published)
	}()

	select {
	case <-published:
	case <-time.After(2 * time.Second):
		require.Fail(t, "Publish blocked on a slow sink")
	}

	assert.Eventually(t, func() bool { return len(fast.Events()) == 10 }, time.Second, 5*time.Millisecond)
	assert.Positive(t, testutil.ToFloat64(metrics.Dropped.WithLabelValues("slow", "new_order")))

	close(slow.block)
	require.NoError(t, b.Close(t.Context()))
}

func TestBroadcaster_FailingSinkIsCountedAndIsolated(t *testing.T) {
	failing := &recordingSink{name: "failing", failErr: errors.New("broker down")}
	healthy := &recordingSink{name: "healthy"}
	metrics := broadcast.NewMetrics(prometheus.NewRegistry())
	b := broadcast.NewBroadcaster(discardLogger(), metrics, broadcast.Options{}, failing, healthy)

	b.Publish(t.Context(), event(t, 1))
	b.Publish(t.Context(), event(t, 2))
	require.NoError(t, b.Close(t.Context()))

	assert.Len(t, healthy.Events(), 2)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.Failed.WithLabelValues("failing", "new_order")), 0)
}

func TestBroadcaster_PublishAfterCloseIsDropped(t *testing.T) {
	sink := &recordingSink{name: "sink"}
	metrics := broadcast.NewMetrics(prometheus.NewRegistry())
	b := broadcast.NewBroadcaster(discardLogger(), metrics, broadcast.Options{}, sink)
	require.NoError(t, b.Close(t.Context()))

	b.Publish(t.Context(), event(t, 1))

	assert.Empty(t, sink.Events())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Dropped.WithLabelValues("sink", "new_order")), 0)
	assert.NoError(t, b.Close(t.Context()), "Close is idempotent")
}

func TestBroadcaster_CloseTimeoutCancelsDelivery(t *testing.T) {
	stuck := &recordingSink{name: "stuck", block: make(chan struct{})}
	metrics := broadcast.NewMetrics(prometheus.NewRegistry())
	b := broadcast.NewBroadcaster(discardLogger(), metrics, broadcast.Options{DeliveryTimeout: time.Minute}, stuck)
	b.Publish(t.Context(), event(t, 1))

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	err := b.Close(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}
