package loanmock

import (
	"context"

	domain "p2plending/internal/domain/loan"
)

var (
	_ domain.Repository      = (*Repo)(nil)
	_ domain.IndexRepository = (*Index)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset reads report ErrLoanNotFound; unset writes succeed.
type Repo struct {
	ExistsFn       func(ctx context.Context, key uint64) (bool, error)
	GetFn          func(ctx context.Context, key uint64) (*domain.Loan, error)
	GetForUpdateFn func(ctx context.Context, key uint64) (*domain.Loan, error)
	CreateFn       func(ctx context.Context, l *domain.Loan) error
	SaveFn         func(ctx context.Context, l *domain.Loan) error
	DeleteFn       func(ctx context.Context, key uint64) error
}

func (m *Repo) Exists(ctx context.Context, key uint64) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, key)
	}
	return false, nil
}

func (m *Repo) Get(ctx context.Context, key uint64) (*domain.Loan, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, domain.ErrLoanNotFound
}

func (m *Repo) GetForUpdate(ctx context.Context, key uint64) (*domain.Loan, error) {
	if m.GetForUpdateFn != nil {
		return m.GetForUpdateFn(ctx, key)
	}
	return nil, domain.ErrLoanNotFound
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, key uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}

// Index is a function-backed mock of domain.IndexRepository.
type Index struct {
	AddFn    func(ctx context.Context, user string, key uint64) error
	RemoveFn func(ctx context.Context, user string, key uint64) error
	ListFn   func(ctx context.Context, user string) ([]uint64, error)
}

func (m *Index) Add(ctx context.Context, user string, key uint64) error {
	if m.AddFn != nil {
		return m.AddFn(ctx, user, key)
	}
	return nil
}

func (m *Index) Remove(ctx context.Context, user string, key uint64) error {
	if m.RemoveFn != nil {
		return m.RemoveFn(ctx, user, key)
	}
	return nil
}

func (m *Index) List(ctx context.Context, user string) ([]uint64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, user)
	}
	return []uint64{}, nil
}
