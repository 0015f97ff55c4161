package mysql

import (
	"context"
	"errors"
	"testing"

	"p2plending/internal/domain/ledger"

	"github.com/shopspring/decimal"
)

func TestLedgerCreditAndTransfer(t *testing.T) {
	db := openTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	if err := repo.Credit(ctx, "alice", "USDC", decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if err := repo.Transfer(ctx, "USDC", "alice", "bob", decimal.NewFromInt(400)); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	a, _ := repo.BalanceOf(ctx, "alice", "USDC")
	b, _ := repo.BalanceOf(ctx, "bob", "USDC")
	if !a.Equal(decimal.NewFromInt(600)) || !b.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("balances = %s / %s", a, b)
	}
	if z, err := repo.BalanceOf(ctx, "carol", "USDC"); err != nil || !z.IsZero() {
		t.Fatalf("unknown account = %s, %v", z, err)
	}
}

func TestLedgerTransferErrors(t *testing.T) {
	db := openTestDB(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	if err := repo.Credit(ctx, "alice", "USDC", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("Credit: %v", err)
	}

	cases := []struct {
		name   string
		from   string
		amount int64
		want   error
	}{
		{"overdraw", "alice", 11, ledger.ErrInsufficientBalance},
		{"no account", "dave", 1, ledger.ErrInsufficientBalance},
		{"zero", "alice", 0, ledger.ErrInvalidAmount},
		{"negative", "alice", -1, ledger.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := repo.Transfer(ctx, "USDC", tc.from, "bob", decimal.NewFromInt(tc.amount))
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
	if err := repo.Credit(ctx, "alice", "USDC", decimal.Zero); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("Credit zero: %v", err)
	}

	a, _ := repo.BalanceOf(ctx, "alice", "USDC")
	if !a.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("failed transfers moved funds: %s", a)
	}
}
