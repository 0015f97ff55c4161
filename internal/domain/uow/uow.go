package uow

import (
	"context"

	"p2plending/internal/domain/escrow"
	"p2plending/internal/domain/ledger"
	"p2plending/internal/domain/loan"
)

// Repos are bound to a single transaction.
type Repos struct {
	Loans  loan.Repository
	Index  loan.IndexRepository
	Escrow escrow.Repository
	Ledger ledger.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, key uint64, fn func(r Repos, l *loan.Loan) error) error
}
