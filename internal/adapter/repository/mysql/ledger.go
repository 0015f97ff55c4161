package mysql

import (
	"context"
	"errors"

	"p2plending/internal/domain/ledger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository keeps host asset balances in the same database as loans,
// so a transfer commits or rolls back with the loan update.
type LedgerRepository struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) *LedgerRepository { return &LedgerRepository{db: db} }

func (r *LedgerRepository) Transfer(ctx context.Context, asset, from, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	src, err := r.lock(ctx, from, asset)
	if err != nil {
		return err
	}
	if src == nil || src.Balance.LessThan(amount) {
		return ledger.ErrInsufficientBalance
	}
	src.Balance = src.Balance.Sub(amount)
	if err := r.db.WithContext(ctx).Save(src).Error; err != nil {
		return err
	}
	return r.Credit(ctx, to, asset, amount)
}

func (r *LedgerRepository) BalanceOf(ctx context.Context, owner, asset string) (decimal.Decimal, error) {
	var acc ledger.Account
	err := r.db.WithContext(ctx).Where("owner = ? AND asset = ?", owner, asset).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

func (r *LedgerRepository) Credit(ctx context.Context, owner, asset string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	acc, err := r.lock(ctx, owner, asset)
	if err != nil {
		return err
	}
	if acc == nil {
		return r.db.WithContext(ctx).Create(&ledger.Account{Owner: owner, Asset: asset, Balance: amount}).Error
	}
	acc.Balance = acc.Balance.Add(amount)
	return r.db.WithContext(ctx).Save(acc).Error
}

func (r *LedgerRepository) lock(ctx context.Context, owner, asset string) (*ledger.Account, error) {
	var acc ledger.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner = ? AND asset = ?", owner, asset).
		First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}
