// Package postgres provides the GORM-based Unit of Work and the database bootstrap
// of the Order Store.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, 5*time.Second)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	number, err := uow.OrderRepository().NextOrderNumber(ctx, now)
//	...
//	return uow.Commit(ctx)
//
// Each UnitOfWork owns one transaction; goroutines must not share an instance.
package postgres

import (
	"context"
	"time"

	"kitchenpos/internal/adapters/out/postgres/orderrepo"
	"kitchenpos/internal/core/ports"
	"kitchenpos/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormUnitOfWorkFactory creates a factory. timeout bounds each transaction
// as a whole and each statement inside it.
func NewGormUnitOfWorkFactory(db *gorm.DB, timeout time.Duration) *GormUnitOfWorkFactory {
	if timeout <= 0 {
		timeout = orderrepo.DefaultTimeout
	}
	return &GormUnitOfWorkFactory{db: db, timeout: timeout}
}

// Create produces a new UnitOfWork with no transaction started.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db, timeout: f.timeout}
}

// GormUnitOfWork coordinates one database transaction.
type GormUnitOfWork struct {
	db      *gorm.DB
	tx      *gorm.DB
	timeout time.Duration
	cancel  context.CancelFunc
}

// Begin starts a transaction bounded by the factory timeout. Calling Begin on a
// unit of work that already has a transaction is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}
	txCtx, cancel := context.WithTimeout(ctx, uow.timeout)
	tx := uow.db.WithContext(txCtx).Begin()
	if tx.Error != nil {
		cancel()
		return errs.NewStorageError("begin transaction", tx.Error)
	}
	uow.tx = tx
	uow.cancel = cancel
	return nil
}

// Commit finalizes the transaction. Returns gorm.ErrInvalidTransaction when no
// transaction is active.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}
	err := uow.tx.Commit().Error
	uow.finish()
	if err != nil {
		return errs.NewStorageError("commit transaction", err)
	}
	return nil
}

// Rollback discards the transaction. After Commit it returns
// gorm.ErrInvalidTransaction, which callers deferring Rollback ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}
	err := uow.tx.Rollback().Error
	uow.finish()
	return err
}

// OrderRepository is bound to the active transaction, or to the pool when none is.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	db := uow.db
	if uow.tx != nil {
		db = uow.tx
	}
	return orderrepo.NewGormOrderRepository(db, uow.timeout)
}

func (uow *GormUnitOfWork) finish() {
	uow.tx = nil
	if uow.cancel != nil {
		uow.cancel()
		uow.cancel = nil
	}
}
