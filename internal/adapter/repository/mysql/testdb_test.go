package mysql

import (
	"testing"
	"time"

	"p2plending/internal/domain/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- SQLite-friendly schemas only for tests (no ENUM, amounts as text) ---

type loanSQLite struct {
	LoanKey           uint64    `gorm:"primaryKey;autoIncrement:false;column:loan_key"`
	Borrower          *string   `gorm:"column:borrower"`
	Lender            *string   `gorm:"column:lender"`
	Collateral        *string   `gorm:"type:text;column:collateral"`
	Status            string    `gorm:"type:text;column:status"`
	LoanAsset         string    `gorm:"column:loan_asset"`
	LoanAmount        string    `gorm:"type:text;column:loan_amount"`
	DailyInterestRate uint32    `gorm:"column:daily_interest_rate"`
	MaxLoanTerm       uint32    `gorm:"column:max_loan_term"`
	Timestamp         uint64    `gorm:"column:timestamp"`
	ExpiresAt         time.Time `gorm:"column:expires_at"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (loanSQLite) TableName() string { return "loans" }

type indexSQLite struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	Owner     string    `gorm:"column:owner;uniqueIndex:ux_loan_index_owner_key"`
	LoanKey   uint64    `gorm:"column:loan_key;uniqueIndex:ux_loan_index_owner_key"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (indexSQLite) TableName() string { return "loan_index" }

type escrowSQLite struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	Owner     string    `gorm:"column:owner;uniqueIndex:ux_escrow_balances_user_asset"`
	Asset     string    `gorm:"column:asset;uniqueIndex:ux_escrow_balances_user_asset"`
	Amount    string    `gorm:"type:text;column:amount"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (escrowSQLite) TableName() string { return "escrow_balances" }

type ledgerSQLite struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;column:id"`
	Owner     string    `gorm:"column:owner;uniqueIndex:ux_ledger_accounts_owner_asset"`
	Asset     string    `gorm:"column:asset;uniqueIndex:ux_ledger_accounts_owner_asset"`
	Balance   string    `gorm:"type:text;column:balance"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ledgerSQLite) TableName() string { return "ledger_accounts" }

var testLifetime = storage.Lifetime{Threshold: time.Hour, Bump: 2 * time.Hour}

// openTestDB creates an in-memory sqlite DB and migrates ONLY the sqlite-safe schemas.
// A single connection keeps every query on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&loanSQLite{}, &indexSQLite{}, &escrowSQLite{}, &ledgerSQLite{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
