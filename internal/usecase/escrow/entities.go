package escrow

import "github.com/shopspring/decimal"

type WithdrawInput struct {
	User  string
	Asset string
}

type WithdrawalDTO struct {
	User   string          `json:"user"`
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}
