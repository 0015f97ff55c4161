package mysql

import (
	"context"

	"p2plending/internal/domain/escrow"
	"p2plending/internal/domain/ledger"
	"p2plending/internal/domain/loan"
	"p2plending/internal/domain/storage"
	"p2plending/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct {
	db       *gorm.DB
	lifetime storage.Lifetime
}

func NewGormUoW(db *gorm.DB, lt storage.Lifetime) *GormUoW { return &GormUoW{db: db, lifetime: lt} }

func (u *GormUoW) repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:  &LoanRepository{db: tx, lifetime: u.lifetime},
		Index:  &IndexRepository{db: tx, lifetime: u.lifetime},
		Escrow: &EscrowRepository{db: tx, lifetime: u.lifetime},
		Ledger: &LedgerRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(u.repos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, key uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := u.repos(tx)
		// lock the loan row up-front so concurrent transitions serialize
		l, err := r.Loans.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

// Models lists every table the repositories persist, for AutoMigrate.
func Models() []any {
	return []any{&loan.Loan{}, &loan.IndexEntry{}, &escrow.Balance{}, &ledger.Account{}}
}
