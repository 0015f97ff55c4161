package uowmock

import (
	"context"
	"errors"
	"testing"

	"p2plending/internal/domain/loan"
	"p2plending/internal/domain/uow"
	"p2plending/internal/testutil/escrowmock"
	"p2plending/internal/testutil/ledgermock"
	"p2plending/internal/testutil/loanmock"
)

func mockRepos() (uow.Repos, *loanmock.Repo) {
	loans := &loanmock.Repo{}
	return uow.Repos{
		Loans:  loans,
		Index:  &loanmock.Index{},
		Escrow: &escrowmock.Repo{},
		Ledger: &ledgermock.Repo{},
	}, loans
}

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()
	repos, loans := mockRepos()

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			// simulate transaction body
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Loans != loans {
			t.Fatalf("WithinTx: repos not forwarded")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{} // no funcs set
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinLoanTx(ctx, 1, func(uow.Repos, *loan.Loan) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinLoanTx default: want errUnimplemented, got %v", err)
	}
}

func TestUoW_WithinLoanTx_PropagatesError(t *testing.T) {
	sentinel := errors.New("stop")
	m := &UoW{
		WithinLoanTxFn: func(context.Context, uint64, func(uow.Repos, *loan.Loan) error) error {
			return sentinel
		},
	}
	if err := m.WithinLoanTx(context.Background(), 1, func(uow.Repos, *loan.Loan) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinLoanTx: want %v, got %v", sentinel, err)
	}
}

func TestPassthrough(t *testing.T) {
	ctx := context.Background()
	repos, loans := mockRepos()
	lock := &loan.Loan{LoanKey: 7}
	loans.GetForUpdateFn = func(_ context.Context, key uint64) (*loan.Loan, error) {
		if key != 7 {
			return nil, loan.ErrLoanNotFound
		}
		return lock, nil
	}
	m := Passthrough(repos)

	innerCalled := false
	err := m.WithinLoanTx(ctx, 7, func(r uow.Repos, l *loan.Loan) error {
		innerCalled = true
		if l != lock {
			t.Fatalf("WithinLoanTx: loan not forwarded: %+v", l)
		}
		return nil
	})
	if err != nil || !innerCalled {
		t.Fatalf("WithinLoanTx: err=%v called=%v", err, innerCalled)
	}

	if err := m.WithinLoanTx(ctx, 8, func(uow.Repos, *loan.Loan) error {
		t.Fatalf("body must not run for a missing loan")
		return nil
	}); !errors.Is(err, loan.ErrLoanNotFound) {
		t.Fatalf("WithinLoanTx missing: want ErrLoanNotFound, got %v", err)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	if m.WithinTxFn != nil || m.WithinLoanTxFn != nil {
		t.Fatalf("New should start with nil funcs")
	}

	// set via fluent setters
	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinLoanTx(func(context.Context, uint64, func(uow.Repos, *loan.Loan) error) error { return nil })

	if m.WithinTxFn == nil || m.WithinLoanTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}

	// reset clears funcs
	m.Reset()
	if m.WithinTxFn != nil || m.WithinLoanTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
