package loan

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	conditionLoanDefault = "loan_default"
	conditionOraclePrice = "oracle_price"
)

// SeizeCondition is a closed set: LoanDefault and OraclePriceComparison are
// the only implementations.
type SeizeCondition interface {
	seizeCondition()
}

// LoanDefault holds once the loan outlives its MaxLoanTerm.
type LoanDefault struct{}

func (LoanDefault) seizeCondition() {}

func (LoanDefault) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
	}{conditionLoanDefault})
}

// OraclePriceComparison compares the oracle value of AmountA of AssetA with
// AmountB of AssetB. Greater selects ratio > 0, otherwise ratio == 0.
type OraclePriceComparison struct {
	AssetA  OracleAsset     `json:"asset_a"`
	AmountA decimal.Decimal `json:"amount_a"`
	AssetB  OracleAsset     `json:"asset_b"`
	AmountB decimal.Decimal `json:"amount_b"`
	Greater bool            `json:"greater"`
}

func (OraclePriceComparison) seizeCondition() {}

func (c OraclePriceComparison) MarshalJSON() ([]byte, error) {
	type plain OraclePriceComparison
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{conditionOraclePrice, plain(c)})
}

// Conditions is the ordered condition list of a collateral, tagged by "type"
// on the wire.
type Conditions []SeizeCondition

func (cs *Conditions) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Conditions, 0, len(raw))
	for i, item := range raw {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(item, &head); err != nil {
			return fmt.Errorf("seize condition %d: %w", i, err)
		}
		switch head.Type {
		case conditionLoanDefault:
			out = append(out, LoanDefault{})
		case conditionOraclePrice:
			type plain OraclePriceComparison
			var c plain
			if err := json.Unmarshal(item, &c); err != nil {
				return fmt.Errorf("seize condition %d: %w", i, err)
			}
			out = append(out, OraclePriceComparison(c))
		default:
			return fmt.Errorf("seize condition %d: unknown type %q", i, head.Type)
		}
	}
	*cs = out
	return nil
}

// Validate checks a collateral offered at loan creation. It needs at least
// one condition, and every price comparison must name exactly one reference
// per asset with non-negative integer amounts in the i128 range. A nil
// collateral is valid.
func (c *Collateral) Validate() error {
	if c == nil {
		return nil
	}
	if !FitsInt128(c.Amount) {
		return fmt.Errorf("%w: amount %s", ErrInvalidCollateral, c.Amount)
	}
	if len(c.SeizeConditions) == 0 {
		return ErrInvalidCollateral
	}
	for i, cond := range c.SeizeConditions {
		switch cond := cond.(type) {
		case LoanDefault:
		case OraclePriceComparison:
			if err := cond.validate(); err != nil {
				return fmt.Errorf("seize condition %d: %w", i, err)
			}
		default:
			return fmt.Errorf("seize condition %d: %T: %w", i, cond, ErrInvalidCollateral)
		}
	}
	return nil
}

func (c OraclePriceComparison) validate() error {
	for _, a := range []OracleAsset{c.AssetA, c.AssetB} {
		if err := a.validate(); err != nil {
			return err
		}
	}
	for _, amt := range []decimal.Decimal{c.AmountA, c.AmountB} {
		if amt.IsNegative() || !FitsInt128(amt) {
			return fmt.Errorf("%w: amount %s", ErrInvalidCollateral, amt)
		}
	}
	return nil
}

func (a OracleAsset) validate() error {
	if a.Oracle == "" {
		return fmt.Errorf("%w: oracle asset without oracle", ErrInvalidCollateral)
	}
	if (a.Symbol == nil) == (a.Asset == nil) {
		return fmt.Errorf("%w: %s needs exactly one of symbol or asset", ErrInvalidCollateral, a.Oracle)
	}
	return nil
}
