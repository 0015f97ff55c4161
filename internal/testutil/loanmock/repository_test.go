package loanmock

import (
	"context"
	"errors"
	"testing"

	domain "p2plending/internal/domain/loan"
)

func TestRepo_Create(t *testing.T) {
	ctx := context.Background()
	l := &domain.Loan{LoanKey: 1}

	// Uses provided func
	called := false
	wantErr := errors.New("boom")
	m := &Repo{
		CreateFn: func(gotCtx context.Context, got *domain.Loan) error {
			called = true
			if gotCtx != ctx {
				t.Fatalf("Create ctx mismatch")
			}
			if got != l {
				t.Fatalf("Create arg mismatch")
			}
			return wantErr
		},
	}
	if err := m.Create(ctx, l); !errors.Is(err, wantErr) {
		t.Fatalf("Create: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("CreateFn not called")
	}

	// Default (nil func) → no-op, nil error
	m = &Repo{}
	if err := m.Create(ctx, l); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
}

func TestRepo_Get(t *testing.T) {
	ctx := context.Background()
	want := &domain.Loan{LoanKey: 2}

	m := &Repo{
		GetFn: func(_ context.Context, key uint64) (*domain.Loan, error) {
			if key != 2 {
				t.Fatalf("Get key mismatch: got %d", key)
			}
			return want, nil
		},
	}
	got, err := m.Get(ctx, 2)
	if err != nil || got != want {
		t.Fatalf("Get: want %+v, got %+v, %v", want, got, err)
	}

	// Defaults report a missing loan
	m = &Repo{}
	if _, err := m.Get(ctx, 2); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("Get default: want ErrLoanNotFound, got %v", err)
	}
	if _, err := m.GetForUpdate(ctx, 2); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("GetForUpdate default: want ErrLoanNotFound, got %v", err)
	}
	if ok, err := m.Exists(ctx, 2); ok || err != nil {
		t.Fatalf("Exists default: got %v, %v", ok, err)
	}
}

func TestRepo_SaveDelete(t *testing.T) {
	ctx := context.Background()
	var saved *domain.Loan
	var deleted uint64
	m := &Repo{
		SaveFn:   func(_ context.Context, l *domain.Loan) error { saved = l; return nil },
		DeleteFn: func(_ context.Context, key uint64) error { deleted = key; return nil },
	}
	l := &domain.Loan{LoanKey: 3}
	if err := m.Save(ctx, l); err != nil || saved != l {
		t.Fatalf("Save: %v, saved=%v", err, saved)
	}
	if err := m.Delete(ctx, 3); err != nil || deleted != 3 {
		t.Fatalf("Delete: %v, deleted=%d", err, deleted)
	}
}

func TestIndex(t *testing.T) {
	ctx := context.Background()
	m := &Index{}
	if keys, err := m.List(ctx, "alice"); err != nil || len(keys) != 0 {
		t.Fatalf("List default: %v, %v", keys, err)
	}

	var added []uint64
	m = &Index{
		AddFn:  func(_ context.Context, user string, key uint64) error { added = append(added, key); return nil },
		ListFn: func(context.Context, string) ([]uint64, error) { return added, nil },
	}
	_ = m.Add(ctx, "alice", 4)
	keys, _ := m.List(ctx, "alice")
	if len(keys) != 1 || keys[0] != 4 {
		t.Fatalf("List: %v", keys)
	}
	if err := m.Remove(ctx, "alice", 4); err != nil {
		t.Fatalf("Remove default: %v", err)
	}
}
