// Package memstore is an in-memory implementation of every repository and
// of uow.UnitOfWork. A failed transaction body restores the state it started
// from, which makes it a faithful stand-in for the gorm stack in usecase tests.
package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"

	"p2plending/internal/domain/escrow"
	"p2plending/internal/domain/ledger"
	"p2plending/internal/domain/loan"
	"p2plending/internal/domain/uow"

	"github.com/shopspring/decimal"
)

var _ uow.UnitOfWork = (*Store)(nil)

type balances map[string]map[string]decimal.Decimal

type state struct {
	loans  map[uint64]*loan.Loan
	index  map[string][]uint64
	escrow balances
	ledger balances
}

type Store struct {
	mu sync.Mutex
	st state
}

func New() *Store {
	return &Store{st: state{
		loans:  map[uint64]*loan.Loan{},
		index:  map[string][]uint64{},
		escrow: balances{},
		ledger: balances{},
	}}
}

func (s *Store) repos() uow.Repos {
	return uow.Repos{
		Loans:  loanRepo{s},
		Index:  indexRepo{s},
		Escrow: escrowRepo{s},
		Ledger: ledgerRepo{s},
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.st.clone()
	if err := fn(s.repos()); err != nil {
		s.st = snap
		return err
	}
	return nil
}

func (s *Store) WithinLoanTx(ctx context.Context, key uint64, fn func(r uow.Repos, l *loan.Loan) error) error {
	return s.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

// Fund credits a host ledger account outside of any transaction.
func (s *Store) Fund(owner, asset string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.ledger.add(owner, asset, amount)
}

// Balance reads a host ledger account.
func (s *Store) Balance(owner, asset string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ledger.get(owner, asset)
}

// Escrowed reads a claimable balance.
func (s *Store) Escrowed(user, asset string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.escrow.get(user, asset)
}

// Loan returns a copy of the stored loan, or nil.
func (s *Store) Loan(key uint64) *loan.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.loans[key].Clone()
}

// Index returns a copy of the user's loan list.
func (s *Store) Index(user string) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.st.index[user])
}

func (st state) clone() state {
	out := state{
		loans:  make(map[uint64]*loan.Loan, len(st.loans)),
		index:  make(map[string][]uint64, len(st.index)),
		escrow: st.escrow.clone(),
		ledger: st.ledger.clone(),
	}
	for k, l := range st.loans {
		out.loans[k] = l.Clone()
	}
	for u, keys := range st.index {
		out.index[u] = slices.Clone(keys)
	}
	return out
}

func (b balances) clone() balances {
	out := make(balances, len(b))
	for owner, assets := range b {
		m := make(map[string]decimal.Decimal, len(assets))
		for a, v := range assets {
			m[a] = v
		}
		out[owner] = m
	}
	return out
}

func (b balances) get(owner, asset string) decimal.Decimal {
	if v, ok := b[owner][asset]; ok {
		return v
	}
	return decimal.Zero
}

func (b balances) add(owner, asset string, amount decimal.Decimal) {
	if b[owner] == nil {
		b[owner] = map[string]decimal.Decimal{}
	}
	b[owner][asset] = b.get(owner, asset).Add(amount)
}

// --- loans ---

type loanRepo struct{ s *Store }

func (r loanRepo) Exists(_ context.Context, key uint64) (bool, error) {
	_, ok := r.s.st.loans[key]
	return ok, nil
}

func (r loanRepo) Get(_ context.Context, key uint64) (*loan.Loan, error) {
	l, ok := r.s.st.loans[key]
	if !ok {
		return nil, loan.ErrLoanNotFound
	}
	return l.Clone(), nil
}

func (r loanRepo) GetForUpdate(ctx context.Context, key uint64) (*loan.Loan, error) {
	return r.Get(ctx, key)
}

func (r loanRepo) Create(_ context.Context, l *loan.Loan) error {
	if _, ok := r.s.st.loans[l.LoanKey]; ok {
		return loan.ErrLoanAlreadyExists
	}
	r.s.st.loans[l.LoanKey] = l.Clone()
	return nil
}

func (r loanRepo) Save(_ context.Context, l *loan.Loan) error {
	if _, ok := r.s.st.loans[l.LoanKey]; !ok {
		return loan.ErrLoanNotFound
	}
	r.s.st.loans[l.LoanKey] = l.Clone()
	return nil
}

func (r loanRepo) Delete(_ context.Context, key uint64) error {
	delete(r.s.st.loans, key)
	return nil
}

// --- index ---

type indexRepo struct{ s *Store }

func (r indexRepo) Add(_ context.Context, user string, key uint64) error {
	if slices.Contains(r.s.st.index[user], key) {
		return nil
	}
	r.s.st.index[user] = append([]uint64{key}, r.s.st.index[user]...)
	return nil
}

func (r indexRepo) Remove(_ context.Context, user string, key uint64) error {
	r.s.st.index[user] = slices.DeleteFunc(r.s.st.index[user], func(k uint64) bool { return k == key })
	return nil
}

func (r indexRepo) List(_ context.Context, user string) ([]uint64, error) {
	out := slices.Clone(r.s.st.index[user])
	if out == nil {
		out = []uint64{}
	}
	return out, nil
}

// --- escrow ---

type escrowRepo struct{ s *Store }

func (r escrowRepo) Accumulate(_ context.Context, user, asset string, amount decimal.Decimal) error {
	r.s.st.escrow.add(user, asset, amount)
	return nil
}

func (r escrowRepo) GetForUpdate(_ context.Context, user, asset string) (*escrow.Balance, error) {
	v, ok := r.s.st.escrow[user][asset]
	if !ok {
		return nil, nil
	}
	return &escrow.Balance{User: user, Asset: asset, Amount: v}, nil
}

func (r escrowRepo) Clear(_ context.Context, user, asset string) error {
	delete(r.s.st.escrow[user], asset)
	return nil
}

func (r escrowRepo) List(_ context.Context, user string) ([]escrow.Balance, error) {
	out := []escrow.Balance{}
	for asset, v := range r.s.st.escrow[user] {
		out = append(out, escrow.Balance{User: user, Asset: asset, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset < out[j].Asset })
	return out, nil
}

// --- host ledger ---

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) Transfer(_ context.Context, asset, from, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	if r.s.st.ledger.get(from, asset).LessThan(amount) {
		return ledger.ErrInsufficientBalance
	}
	r.s.st.ledger.add(from, asset, amount.Neg())
	r.s.st.ledger.add(to, asset, amount)
	return nil
}

func (r ledgerRepo) BalanceOf(_ context.Context, owner, asset string) (decimal.Decimal, error) {
	return r.s.st.ledger.get(owner, asset), nil
}

func (r ledgerRepo) Credit(_ context.Context, owner, asset string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	r.s.st.ledger.add(owner, asset, amount)
	return nil
}
