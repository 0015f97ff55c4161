package escrow

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// Accumulate adds amount to the user's balance for asset, creating it if absent.
	Accumulate(ctx context.Context, user, asset string, amount decimal.Decimal) error

	// GetForUpdate returns the user's balance for asset, or nil when none is held.
	GetForUpdate(ctx context.Context, user, asset string) (*Balance, error)

	// Clear removes the user's entry for asset.
	Clear(ctx context.Context, user, asset string) error

	// List returns every positive balance the user holds.
	List(ctx context.Context, user string) ([]Balance, error)
}
