package mysql

import (
	"context"
	"time"

	loanDomain "p2plending/internal/domain/loan"
	"p2plending/internal/domain/storage"

	"gorm.io/gorm"
)

type IndexRepository struct {
	db       *gorm.DB
	lifetime storage.Lifetime
}

func NewIndexRepository(db *gorm.DB, lt storage.Lifetime) *IndexRepository {
	return &IndexRepository{db: db, lifetime: lt}
}

func (r *IndexRepository) Add(ctx context.Context, user string, key uint64) error {
	db := r.db.WithContext(ctx)
	var n int64
	if err := db.Model(&loanDomain.IndexEntry{}).
		Where("owner = ? AND loan_key = ?", user, key).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		now := time.Now().UTC()
		entry := &loanDomain.IndexEntry{Owner: user, LoanKey: key, ExpiresAt: r.lifetime.Extend(time.Time{}, now)}
		if err := db.Create(entry).Error; err != nil {
			return err
		}
	}
	return r.touch(ctx, user)
}

func (r *IndexRepository) Remove(ctx context.Context, user string, key uint64) error {
	if err := r.db.WithContext(ctx).
		Where("owner = ? AND loan_key = ?", user, key).
		Delete(&loanDomain.IndexEntry{}).Error; err != nil {
		return err
	}
	return r.touch(ctx, user)
}

// List returns the user's loan keys, most recently added first.
func (r *IndexRepository) List(ctx context.Context, user string) ([]uint64, error) {
	keys := []uint64{}
	err := r.db.WithContext(ctx).Model(&loanDomain.IndexEntry{}).
		Where("owner = ?", user).
		Order("id DESC").
		Pluck("loan_key", &keys).Error
	return keys, err
}

// touch extends the lifetime of the user's whole list, as one record.
func (r *IndexRepository) touch(ctx context.Context, user string) error {
	if r.lifetime.Bump <= 0 {
		return nil
	}
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&loanDomain.IndexEntry{}).
		Where("owner = ? AND expires_at < ?", user, now.Add(r.lifetime.Threshold)).
		Update("expires_at", now.Add(r.lifetime.Bump)).Error
}
