package orderrepo

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// GormSequenceRepository maintains the order_sequences table.
type GormSequenceRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGormSequenceRepository(db *gorm.DB, timeout time.Duration) *GormSequenceRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GormSequenceRepository{db: db, timeout: timeout}
}

// PruneBefore removes counters of days before day. Day keys are YYYYMMDD, so
// string order is date order. Order numbers already issued are unaffected.
func (r *GormSequenceRepository) PruneBefore(ctx context.Context, day string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result := r.db.WithContext(ctx).Where("day < ?", day).Delete(&SequenceDTO{})
	if result.Error != nil {
		return 0, storageError("prune order sequences", result.Error)
	}
	return result.RowsAffected, nil
}
