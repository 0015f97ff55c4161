package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusWaitingForLender   Status = "waiting_for_lender"
	StatusWaitingForBorrower Status = "waiting_for_borrower"
	StatusInProgress         Status = "in_progress"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWaitingForLender, StatusWaitingForBorrower, StatusInProgress:
		return true
	default:
		return false
	}
}

// Loan is the canonical loan record. Borrower and Lender are optional: a
// creator may pre-fill the counterpart slot to reserve it for one identity.
type Loan struct {
	LoanKey           uint64          `gorm:"primaryKey;autoIncrement:false;column:loan_key" json:"-"`
	Borrower          *string         `gorm:"size:64;column:borrower" json:"borrower,omitempty"`
	Lender            *string         `gorm:"size:64;column:lender" json:"lender,omitempty"`
	Collateral        *Collateral     `gorm:"column:collateral;type:json;serializer:json" json:"collateral,omitempty"`
	Status            Status          `gorm:"size:32;not null;column:status" json:"status"`
	LoanAsset         string          `gorm:"size:64;column:loan_asset" json:"loan_asset"`
	LoanAmount        decimal.Decimal `gorm:"type:decimal(39,0);column:loan_amount" json:"loan_amount"`
	DailyInterestRate uint32          `gorm:"column:daily_interest_rate" json:"daily_interest_rate"`
	MaxLoanTerm       uint32          `gorm:"column:max_loan_term" json:"max_loan_term"`
	Timestamp         uint64          `gorm:"column:timestamp" json:"timestamp"`
	ExpiresAt         time.Time       `gorm:"column:expires_at;index" json:"-"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Clone returns a deep copy so callers never share optional fields.
func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	out := *l
	out.Borrower = cloneString(l.Borrower)
	out.Lender = cloneString(l.Lender)
	out.Collateral = l.Collateral.Clone()
	return &out
}

// Collateral is a single asset+amount pledge. Its conditions are evaluated
// disjunctively.
type Collateral struct {
	Asset           string          `json:"asset"`
	Amount          decimal.Decimal `json:"amount"`
	SeizeConditions Conditions      `json:"seize_conditions"`
}

func (c *Collateral) Clone() *Collateral {
	if c == nil {
		return nil
	}
	out := *c
	out.SeizeConditions = append(Conditions(nil), c.SeizeConditions...)
	return &out
}

// OracleAsset names an oracle endpoint and the asset it prices, either by a
// foreign symbol or by a native asset identifier.
type OracleAsset struct {
	Oracle string  `json:"oracle"`
	Asset  *string `json:"asset,omitempty"`
	Symbol *string `json:"symbol,omitempty"`
}

// Ref returns the symbol when set, else the native asset id.
func (a OracleAsset) Ref() (string, bool) {
	if a.Symbol != nil {
		return *a.Symbol, true
	}
	if a.Asset != nil {
		return *a.Asset, true
	}
	return "", false
}

func (a OracleAsset) String() string {
	ref, _ := a.Ref()
	return a.Oracle + "/" + ref
}

// PriceData is one oracle observation; Timestamp is unix seconds.
type PriceData struct {
	Price     decimal.Decimal `json:"price"`
	Timestamp uint64          `json:"timestamp"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr is a small helper for optional identities.
func StringPtr(s string) *string { return &s }

// IndexEntry is one (user, loan) membership row of the loan index.
type IndexEntry struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Owner     string    `gorm:"column:owner;size:64;not null;uniqueIndex:ux_loan_index_owner_key"`
	LoanKey   uint64    `gorm:"column:loan_key;not null;uniqueIndex:ux_loan_index_owner_key"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (IndexEntry) TableName() string { return "loan_index" }
