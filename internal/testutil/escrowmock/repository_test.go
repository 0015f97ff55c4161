package escrowmock

import (
	"context"
	"errors"
	"testing"

	domain "p2plending/internal/domain/escrow"

	"github.com/shopspring/decimal"
)

func TestRepo_Accumulate(t *testing.T) {
	ctx := context.Background()
	wantErr := errors.New("boom")
	called := false
	m := &Repo{
		AccumulateFn: func(_ context.Context, user, asset string, amount decimal.Decimal) error {
			called = true
			if user != "alice" || asset != "USDC" || !amount.Equal(decimal.NewFromInt(5)) {
				t.Fatalf("Accumulate args mismatch: %s %s %s", user, asset, amount)
			}
			return wantErr
		},
	}
	if err := m.Accumulate(ctx, "alice", "USDC", decimal.NewFromInt(5)); !errors.Is(err, wantErr) {
		t.Fatalf("Accumulate: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("AccumulateFn not called")
	}
}

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	if err := m.Accumulate(ctx, "a", "b", decimal.NewFromInt(1)); err != nil {
		t.Fatalf("Accumulate default: %v", err)
	}
	if bal, err := m.GetForUpdate(ctx, "a", "b"); bal != nil || err != nil {
		t.Fatalf("GetForUpdate default: %+v, %v", bal, err)
	}
	if err := m.Clear(ctx, "a", "b"); err != nil {
		t.Fatalf("Clear default: %v", err)
	}
	if list, err := m.List(ctx, "a"); err != nil || len(list) != 0 {
		t.Fatalf("List default: %v, %v", list, err)
	}
}

func TestRepo_GetForUpdate(t *testing.T) {
	want := &domain.Balance{User: "alice", Asset: "XLM", Amount: decimal.NewFromInt(9)}
	m := &Repo{GetForUpdateFn: func(context.Context, string, string) (*domain.Balance, error) { return want, nil }}
	got, err := m.GetForUpdate(context.Background(), "alice", "XLM")
	if err != nil || got != want {
		t.Fatalf("GetForUpdate: %+v, %v", got, err)
	}
}
