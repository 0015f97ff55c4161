package mysql

import (
	"context"
	"errors"
	"time"

	escrowDomain "p2plending/internal/domain/escrow"
	"p2plending/internal/domain/storage"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EscrowRepository struct {
	db       *gorm.DB
	lifetime storage.Lifetime
}

func NewEscrowRepository(db *gorm.DB, lt storage.Lifetime) *EscrowRepository {
	return &EscrowRepository{db: db, lifetime: lt}
}

// Accumulate adds amount to the (user, asset) balance, creating it on first use.
func (r *EscrowRepository) Accumulate(ctx context.Context, user, asset string, amount decimal.Decimal) error {
	bal, err := r.GetForUpdate(ctx, user, asset)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if bal == nil {
		return r.db.WithContext(ctx).Create(&escrowDomain.Balance{
			User:      user,
			Asset:     asset,
			Amount:    amount,
			ExpiresAt: r.lifetime.Extend(time.Time{}, now),
		}).Error
	}
	bal.Amount = bal.Amount.Add(amount)
	bal.ExpiresAt = r.lifetime.Extend(bal.ExpiresAt, now)
	return r.db.WithContext(ctx).Save(bal).Error
}

// GetForUpdate returns nil when the user has never held the asset.
func (r *EscrowRepository) GetForUpdate(ctx context.Context, user, asset string) (*escrowDomain.Balance, error) {
	var out escrowDomain.Balance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner = ? AND asset = ?", user, asset).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *EscrowRepository) Clear(ctx context.Context, user, asset string) error {
	return r.db.WithContext(ctx).
		Where("owner = ? AND asset = ?", user, asset).
		Delete(&escrowDomain.Balance{}).Error
}

func (r *EscrowRepository) List(ctx context.Context, user string) ([]escrowDomain.Balance, error) {
	out := []escrowDomain.Balance{}
	err := r.db.WithContext(ctx).
		Where("owner = ?", user).
		Order("asset ASC").
		Find(&out).Error
	return out, err
}
