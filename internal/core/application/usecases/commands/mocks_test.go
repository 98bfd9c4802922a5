package commands_test

import (
	"context"
	"sync"
	"time"

	"kitchenpos/internal/core/application/usecases/commands"
	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/core/ports"
	"kitchenpos/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) NextOrderNumber(ctx context.Context, at time.Time) (order.Number, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(order.Number), args.Error(1)
}

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order, at time.Time) error {
	args := m.Called(ctx, o, at)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(
	ctx context.Context,
	id order.ID,
	to order.Status,
	allowedFrom []order.Status,
	at time.Time,
) (*order.Order, error) {
	args := m.Called(ctx, id, to, allowedFrom, at)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) Get(ctx context.Context, id order.ID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ListAll(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) ListActive(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, e order.Event) {
	m.Called(ctx, e)
}

// memoryStore is an in-memory order store whose counter and updates are
// serialized the way the database serializes them.
type memoryStore struct {
	mu       sync.Mutex
	counters map[string]int
	orders   map[order.ID]*order.Order
	lastID   order.ID
}

func newMemoryStore() *memoryStore {
	return &memoryStore{counters: map[string]int{}, orders: map[order.ID]*order.Order{}}
}

func (s *memoryStore) Create() commands.OrderUoW {
	return &memoryUoW{store: s}
}

type memoryUoW struct {
	store *memoryStore
}

func (u *memoryUoW) Begin(context.Context) error    { return nil }
func (u *memoryUoW) Commit(context.Context) error   { return nil }
func (u *memoryUoW) Rollback(context.Context) error { return nil }

func (u *memoryUoW) OrderRepository() ports.OrderRepository {
	return u
}

func (u *memoryUoW) NextOrderNumber(_ context.Context, at time.Time) (order.Number, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	day := order.DayKey(at)
	u.store.counters[day]++
	return order.NewNumber(at, u.store.counters[day])
}

func (u *memoryUoW) Add(_ context.Context, o *order.Order, at time.Time) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.lastID++
	if err := o.MarkPersisted(u.store.lastID, at); err != nil {
		return err
	}
	u.store.orders[o.ID()] = o
	return nil
}

func (u *memoryUoW) UpdateStatus(
	_ context.Context,
	id order.ID,
	to order.Status,
	allowedFrom []order.Status,
	at time.Time,
) (*order.Order, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	current, ok := u.store.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", int64(id))
	}
	if allowedFrom != nil && !containsStatus(allowedFrom, current.Status()) {
		return nil, order.NewTransitionError(current.Status(), to)
	}
	if !at.After(current.UpdatedAt()) {
		at = current.UpdatedAt().Add(time.Microsecond)
	}
	updated, err := order.RestoreOrder(
		current.ID(), current.Number(), current.Items(), current.Total(),
		to, current.Notes(), current.CreatedAt(), at,
	)
	if err != nil {
		return nil, err
	}
	u.store.orders[id] = updated
	return updated, nil
}

func (u *memoryUoW) Get(_ context.Context, id order.ID) (*order.Order, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	o, ok := u.store.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", int64(id))
	}
	return o, nil
}

func (u *memoryUoW) ListAll(context.Context) ([]*order.Order, error) {
	return nil, nil
}

func (u *memoryUoW) ListActive(context.Context) ([]*order.Order, error) {
	return nil, nil
}

func containsStatus(statuses []order.Status, s order.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// recordingPublisher keeps published events in arrival order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []order.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e order.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Events() []order.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]order.Event(nil), p.events...)
}
