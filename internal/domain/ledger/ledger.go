// Package ledger models the host asset ledger the protocol settles against:
// per-owner, per-asset balances moved by atomic transfers.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("ledger: amount must be positive")
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
)

type Account struct {
	ID        uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	Owner     string          `gorm:"column:owner;size:64;not null;uniqueIndex:ux_ledger_accounts_owner_asset"`
	Asset     string          `gorm:"column:asset;size:64;not null;uniqueIndex:ux_ledger_accounts_owner_asset"`
	Balance   decimal.Decimal `gorm:"column:balance;type:decimal(39,0);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Account) TableName() string { return "ledger_accounts" }

type Repository interface {
	// Transfer moves amount of asset from one owner to another. It fails with
	// ErrInvalidAmount for non-positive amounts and ErrInsufficientBalance
	// when the sender cannot cover it.
	Transfer(ctx context.Context, asset, from, to string, amount decimal.Decimal) error

	BalanceOf(ctx context.Context, owner, asset string) (decimal.Decimal, error)

	// Credit books an inbound amount from outside the protocol.
	Credit(ctx context.Context, owner, asset string, amount decimal.Decimal) error
}
