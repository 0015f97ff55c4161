package escrow

import (
	"context"
	"fmt"

	"p2plending/internal/domain/uow"

	"github.com/shopspring/decimal"
)

// Authorizer fails unless the current caller controls identity.
type Authorizer interface {
	RequireAuth(ctx context.Context, identity string) error
}

// Ledger moves assets between parties and the custody account inside a unit
// of work. Any movement out of an account other than custody re-asserts that
// account's authorization, the way a token transfer would.
type Ledger struct {
	custody string
	auth    Authorizer
}

func NewLedger(custody string, auth Authorizer) *Ledger {
	return &Ledger{custody: custody, auth: auth}
}

func (l *Ledger) Custody() string { return l.custody }

func (l *Ledger) Transfer(ctx context.Context, r uow.Repos, asset, from, to string, amount decimal.Decimal) error {
	if from != l.custody {
		if err := l.auth.RequireAuth(ctx, from); err != nil {
			return err
		}
	}
	if err := r.Ledger.Transfer(ctx, asset, from, to, amount); err != nil {
		return fmt.Errorf("transfer %s %s from %s to %s: %w", amount, asset, from, to, err)
	}
	return nil
}

// Deposit credits recipient's claimable balance. Funds from any payer other
// than custody are first pulled into custody.
func (l *Ledger) Deposit(ctx context.Context, r uow.Repos, asset, payer, recipient string, amount decimal.Decimal) error {
	if payer != l.custody {
		if err := l.Transfer(ctx, r, asset, payer, l.custody, amount); err != nil {
			return err
		}
	}
	return r.Escrow.Accumulate(ctx, recipient, asset, amount)
}
