package orderrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kitchenpos/internal/core/domain/model/order"
	"kitchenpos/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// DefaultTimeout bounds every statement when the caller did not configure one.
const DefaultTimeout = 5 * time.Second

const uniqueViolation = "23505"

// ErrDuplicateKey marks a unique constraint violation inside a StorageError.
var ErrDuplicateKey = errors.New("duplicate key")

const nextSequenceSQL = `
	INSERT INTO order_sequences (day, last_value)
	VALUES (?, 1)
	ON CONFLICT (day) DO UPDATE SET last_value = order_sequences.last_value + 1
	RETURNING last_value`

const updateStatusSQL = `
	UPDATE orders
	SET status = ?, updated_at = GREATEST(?::timestamptz, updated_at + interval '1 microsecond')
	WHERE id = ?`

const returningColumns = `
	RETURNING id, order_number, items, total_amount, status, notes, created_at, updated_at`

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormOrderRepository binds the repository to db, which may be a transaction.
// A non-positive timeout falls back to DefaultTimeout.
func NewGormOrderRepository(db *gorm.DB, timeout time.Duration) *GormOrderRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GormOrderRepository{db: db, timeout: timeout}
}

// NextOrderNumber increments the counter row of the day. The upsert takes a row
// lock that the surrounding transaction keeps until commit or rollback.
func (r *GormOrderRepository) NextOrderNumber(ctx context.Context, at time.Time) (order.Number, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var sequence int
	if err := r.db.WithContext(ctx).Raw(nextSequenceSQL, order.DayKey(at)).Scan(&sequence).Error; err != nil {
		return order.Number{}, storageError("reserve order number", err)
	}
	return order.NewNumber(at, sequence)
}

// Add inserts a pending order and assigns its identity.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order, at time.Time) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if aggregate.Status() != order.Pending {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("new orders must be %s, got %s", order.Pending, aggregate.Status()),
		)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	at = storeTime(at)
	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	dto.CreatedAt = at
	dto.UpdatedAt = at

	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return storageError("insert order", err)
	}
	return aggregate.MarkPersisted(order.ID(dto.ID), at)
}

// UpdateStatus runs a single UPDATE .. RETURNING, so there is no read-modify-write
// window between the policy check and the write.
func (r *GormOrderRepository) UpdateStatus(
	ctx context.Context,
	id order.ID,
	to order.Status,
	allowedFrom []order.Status,
	at time.Time,
) (*order.Order, error) {
	if err := to.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := updateStatusSQL
	args := []any{to.String(), storeTime(at), int64(id)}
	if allowedFrom != nil {
		query += ` AND status IN ?`
		args = append(args, statusNames(allowedFrom))
	}
	query += returningColumns

	var dto OrderDTO
	result := r.db.WithContext(ctx).Raw(query, args...).Scan(&dto)
	if result.Error != nil {
		return nil, storageError("update order status", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, r.explainMissedUpdate(ctx, id, to)
	}

	o, err := toDomain(dto)
	if err != nil {
		return nil, storageError("decode order", err)
	}
	return o, nil
}

// explainMissedUpdate tells an unknown id apart from a rejected transition.
func (r *GormOrderRepository) explainMissedUpdate(ctx context.Context, id order.ID, to order.Status) error {
	var dto OrderDTO
	err := r.db.WithContext(ctx).Select("id", "status").First(&dto, "id = ?", int64(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError("order", int64(id))
	}
	if err != nil {
		return storageError("load order status", err)
	}
	from, err := order.ParseStatus(dto.Status)
	if err != nil {
		return storageError("decode order", err)
	}
	return order.NewTransitionError(from, to)
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id order.ID) (*order.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", int64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", int64(id))
		}
		return nil, storageError("load order", err)
	}
	o, err := toDomain(dto)
	if err != nil {
		return nil, storageError("decode order", err)
	}
	return o, nil
}

// ListAll retrieves every order, newest first.
func (r *GormOrderRepository) ListAll(ctx context.Context) ([]*order.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&dtos).Error; err != nil {
		return nil, storageError("list orders", err)
	}
	orders, err := toDomainList(dtos)
	if err != nil {
		return nil, storageError("decode order", err)
	}
	return orders, nil
}

// ListActive retrieves orders that are not completed, oldest first.
func (r *GormOrderRepository) ListActive(ctx context.Context) ([]*order.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("status <> ?", order.Completed.String()).
		Order("created_at ASC, id ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, storageError("list active orders", err)
	}
	orders, err := toDomainList(dtos)
	if err != nil {
		return nil, storageError("decode order", err)
	}
	return orders, nil
}

// storeTime matches the microsecond precision of timestamptz so that what Add
// returns equals what a later read returns.
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func storageError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errs.NewStorageError(op, fmt.Errorf("%w on %s: %w", ErrDuplicateKey, pgErr.ConstraintName, err))
	}
	return errs.NewStorageError(op, err)
}
