package http_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"kitchenpos/internal/core/application/usecases/commands"
	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/core/ports"
	"kitchenpos/internal/pkg/errs"
)

// fakeStore is an in-memory Order Store. Each method is atomic, which is all
// the HTTP tests need from transactions.
type fakeStore struct {
	mu       sync.Mutex
	counters map[string]int
	orders   map[order.ID]*order.Order
	lastID   order.ID
}

func newFakeStore() *fakeStore {
	return &fakeStore{counters: map[string]int{}, orders: map[order.ID]*order.Order{}}
}

func (s *fakeStore) Create() commands.OrderUoW { return fakeUoW{s} }

type fakeUoW struct{ *fakeStore }

func (fakeUoW) Begin(context.Context) error              { return nil }
func (fakeUoW) Commit(context.Context) error             { return nil }
func (fakeUoW) Rollback(context.Context) error           { return nil }
func (u fakeUoW) OrderRepository() ports.OrderRepository { return u.fakeStore }

func (s *fakeStore) NextOrderNumber(_ context.Context, at time.Time) (order.Number, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := order.DayKey(at)
	s.counters[day]++
	return order.NewNumber(at, s.counters[day])
}

func (s *fakeStore) Add(_ context.Context, o *order.Order, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	if err := o.MarkPersisted(s.lastID, at.UTC().Truncate(time.Microsecond)); err != nil {
		return err
	}
	s.orders[o.ID()] = o
	return nil
}

func (s *fakeStore) UpdateStatus(
	_ context.Context,
	id order.ID,
	to order.Status,
	allowedFrom []order.Status,
	at time.Time,
) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", int64(id))
	}
	if allowedFrom != nil && !slices.Contains(allowedFrom, current.Status()) {
		return nil, order.NewTransitionError(current.Status(), to)
	}
	at = at.UTC().Truncate(time.Microsecond)
	if !at.After(current.UpdatedAt()) {
		at = current.UpdatedAt().Add(time.Microsecond)
	}
	updated, err := order.RestoreOrder(current.ID(), current.Number(), current.Items(), current.Total(),
		to, current.Notes(), current.CreatedAt(), at)
	if err != nil {
		return nil, err
	}
	s.orders[id] = updated
	return updated, nil
}

func (s *fakeStore) Get(_ context.Context, id order.ID) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", int64(id))
	}
	return o, nil
}

func (s *fakeStore) ListAll(context.Context) ([]*order.Order, error) {
	all := s.sorted()
	slices.Reverse(all)
	return all, nil
}

func (s *fakeStore) ListActive(context.Context) ([]*order.Order, error) {
	return slices.DeleteFunc(s.sorted(), func(o *order.Order) bool {
		return o.Status() == order.Completed
	}), nil
}

// sorted returns orders by id, which is creation order here.
func (s *fakeStore) sorted() []*order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *order.Order) int { return int(a.ID() - b.ID()) })
	return out
}

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
