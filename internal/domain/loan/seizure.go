package loan

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// PriceStalenessSeconds is the oracle sampling period (5 minutes) plus a
// 10 second grace.
const PriceStalenessSeconds = 310

var (
	maxInt128 = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)), 0)
	minInt128 = decimal.NewFromBigInt(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127)), 0)
)

// PriceOracle resolves the last known price of an oracle asset. A nil
// PriceData with a nil error means the oracle has no data.
type PriceOracle interface {
	LastPrice(ctx context.Context, asset OracleAsset) (*PriceData, error)
}

// Seizable evaluates every condition and reports whether any holds. All
// conditions are evaluated so an oracle failure anywhere aborts the check.
func (c *Collateral) Seizable(ctx context.Context, l *Loan, now time.Time, oracle PriceOracle) (bool, error) {
	if c == nil {
		return false, ErrInvalidCollateral
	}
	seizable := false
	for _, cond := range c.SeizeConditions {
		ok, err := evaluate(ctx, cond, l, now, oracle)
		if err != nil {
			return false, err
		}
		if ok {
			seizable = true
		}
	}
	return seizable, nil
}

func evaluate(ctx context.Context, cond SeizeCondition, l *Loan, now time.Time, oracle PriceOracle) (bool, error) {
	switch cond := cond.(type) {
	case LoanDefault:
		return ElapsedDays(l.Timestamp, now) > uint64(l.MaxLoanTerm), nil
	case OraclePriceComparison:
		return cond.holds(ctx, now, oracle)
	default:
		return false, fmt.Errorf("seize condition %T: %w", cond, ErrInvalidCollateral)
	}
}

func (c OraclePriceComparison) holds(ctx context.Context, now time.Time, oracle PriceOracle) (bool, error) {
	priceA, err := freshPrice(ctx, oracle, c.AssetA, now)
	if err != nil {
		return false, err
	}
	priceB, err := freshPrice(ctx, oracle, c.AssetB, now)
	if err != nil {
		return false, err
	}
	if priceB.IsZero() || c.AmountB.IsZero() {
		return false, nil
	}

	valueA := priceA.Mul(c.AmountA)
	valueB := priceB.Mul(c.AmountB)
	ratio, _ := valueA.QuoRem(valueB, 0)
	if !FitsInt128(ratio) {
		ratio = decimal.Zero
	}
	if c.Greater {
		return ratio.Sign() > 0, nil
	}
	return ratio.IsZero(), nil
}

func freshPrice(ctx context.Context, oracle PriceOracle, asset OracleAsset, now time.Time) (decimal.Decimal, error) {
	if oracle == nil {
		return decimal.Zero, fmt.Errorf("%w: no oracle configured", ErrOracle)
	}
	if _, ok := asset.Ref(); !ok {
		return decimal.Zero, fmt.Errorf("%w: oracle asset %q names neither symbol nor asset", ErrOracle, asset.Oracle)
	}
	data, err := oracle.LastPrice(ctx, asset)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrOracle, asset, err)
	}
	if data == nil {
		return decimal.Zero, fmt.Errorf("%w: no price for %s", ErrOracle, asset)
	}
	if now.Unix()-PriceStalenessSeconds > int64(data.Timestamp) {
		return decimal.Zero, fmt.Errorf("%w: stale price for %s at %d", ErrOracle, asset, data.Timestamp)
	}
	return data.Price, nil
}

// FitsInt128 reports whether d is an integer inside the signed 128-bit range.
func FitsInt128(d decimal.Decimal) bool {
	if !d.Equal(d.Truncate(0)) {
		return false
	}
	return d.Cmp(maxInt128) <= 0 && d.Cmp(minInt128) >= 0
}
