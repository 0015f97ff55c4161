package lending

import (
	"github.com/shopspring/decimal"

	"p2plending/internal/domain/loan"
)

type LoanDTO struct {
	LoanKey           uint64           `json:"loan_key,string"`
	Borrower          *string          `json:"borrower,omitempty"`
	Lender            *string          `json:"lender,omitempty"`
	Collateral        *loan.Collateral `json:"collateral,omitempty"`
	Status            loan.Status      `json:"status"`
	LoanAsset         string           `json:"loan_asset"`
	LoanAmount        decimal.Decimal  `json:"loan_amount"`
	DailyInterestRate uint32           `json:"daily_interest_rate"`
	MaxLoanTerm       uint32           `json:"max_loan_term"`
	Timestamp         uint64           `json:"timestamp"`
}

// RepaymentDTO reports what was escrowed for the lender.
type RepaymentDTO struct {
	LoanKey   uint64          `json:"loan_key,string"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Total     decimal.Decimal `json:"total"`
}

type InterestDTO struct {
	LoanKey  uint64          `json:"loan_key,string"`
	Interest decimal.Decimal `json:"interest"`
}

func toDTO(l *loan.Loan) *LoanDTO {
	c := l.Clone()
	return &LoanDTO{
		LoanKey:           c.LoanKey,
		Borrower:          c.Borrower,
		Lender:            c.Lender,
		Collateral:        c.Collateral,
		Status:            c.Status,
		LoanAsset:         c.LoanAsset,
		LoanAmount:        c.LoanAmount,
		DailyInterestRate: c.DailyInterestRate,
		MaxLoanTerm:       c.MaxLoanTerm,
		Timestamp:         c.Timestamp,
	}
}
