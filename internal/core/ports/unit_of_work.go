package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Client code manages the
// transaction explicitly: Begin, then Commit, with a deferred Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// OrderRepository is bound to the transaction started by Begin, or to the
	// plain connection when no transaction is active.
	OrderRepository() OrderRepository
}
