package ledgermock

import (
	"context"

	"p2plending/internal/domain/ledger"

	"github.com/shopspring/decimal"
)

var _ ledger.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies ledger.Repository.
type Repo struct {
	TransferFn  func(ctx context.Context, asset, from, to string, amount decimal.Decimal) error
	BalanceOfFn func(ctx context.Context, owner, asset string) (decimal.Decimal, error)
	CreditFn    func(ctx context.Context, owner, asset string, amount decimal.Decimal) error
}

func (m *Repo) Transfer(ctx context.Context, asset, from, to string, amount decimal.Decimal) error {
	if m.TransferFn != nil {
		return m.TransferFn(ctx, asset, from, to, amount)
	}
	return nil
}

func (m *Repo) BalanceOf(ctx context.Context, owner, asset string) (decimal.Decimal, error) {
	if m.BalanceOfFn != nil {
		return m.BalanceOfFn(ctx, owner, asset)
	}
	return decimal.Zero, nil
}

func (m *Repo) Credit(ctx context.Context, owner, asset string, amount decimal.Decimal) error {
	if m.CreditFn != nil {
		return m.CreditFn(ctx, owner, asset, amount)
	}
	return nil
}
