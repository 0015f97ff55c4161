package escrowmock

import (
	"context"

	domain "p2plending/internal/domain/escrow"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	AccumulateFn   func(ctx context.Context, user, asset string, amount decimal.Decimal) error
	GetForUpdateFn func(ctx context.Context, user, asset string) (*domain.Balance, error)
	ClearFn        func(ctx context.Context, user, asset string) error
	ListFn         func(ctx context.Context, user string) ([]domain.Balance, error)
}

func (m *Repo) Accumulate(ctx context.Context, user, asset string, amount decimal.Decimal) error {
	if m.AccumulateFn != nil {
		return m.AccumulateFn(ctx, user, asset, amount)
	}
	return nil
}

func (m *Repo) GetForUpdate(ctx context.Context, user, asset string) (*domain.Balance, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, user, asset)
	}
	return nil, nil
}

func (m *Repo) Clear(ctx context.Context, user, asset string) error {
	if m.ClearFn != nil {
		return m.ClearFn(ctx, user, asset)
	}
	return nil
}

func (m *Repo) List(ctx context.Context, user string) ([]domain.Balance, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, user)
	}
	return []domain.Balance{}, nil
}
