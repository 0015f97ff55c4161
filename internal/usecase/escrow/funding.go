package escrow

import (
	"context"
	"errors"
	"fmt"

	"p2plending/internal/domain/ledger"
	"p2plending/internal/domain/loan"
	"p2plending/internal/domain/uow"

	"github.com/shopspring/decimal"
)

var ErrReservedAccount = errors.New("custody account cannot be funded directly")

// Fund books an inbound deposit into owner's wallet and returns the new
// balance. It is an operator action and bypasses caller authorization.
func (u *Usecase) Fund(ctx context.Context, owner, asset string, amount decimal.Decimal) (bal decimal.Decimal, err error) {
	if owner == u.ledger.Custody() {
		return decimal.Zero, ErrReservedAccount
	}
	if !amount.IsPositive() || !loan.FitsInt128(amount) {
		return decimal.Zero, fmt.Errorf("%w: %s", ledger.ErrInvalidAmount, amount)
	}
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Ledger.Credit(ctx, owner, asset, amount); err != nil {
			return err
		}
		bal, err = r.Ledger.BalanceOf(ctx, owner, asset)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	u.log.InfoContext(ctx, "wallet funded", "owner", owner, "asset", asset, "amount", amount.String())
	return bal, nil
}

// WalletBalance reads owner's spendable ledger balance, zero when unknown.
func (u *Usecase) WalletBalance(ctx context.Context, owner, asset string) (bal decimal.Decimal, err error) {
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		bal, err = r.Ledger.BalanceOf(ctx, owner, asset)
		return err
	})
	return bal, err
}
