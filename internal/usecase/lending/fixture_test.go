package lending

import (
	"context"
	"sync"
	"testing"
	"time"

	"p2plending/internal/domain/loan"
	"p2plending/internal/testutil/authmock"
	"p2plending/internal/testutil/eventmock"
	"p2plending/internal/testutil/memstore"
	"p2plending/internal/usecase/escrow"

	"github.com/shopspring/decimal"
)

const (
	custody  = "custody"
	borrower = "alice"
	lender   = "bob"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type oracle struct {
	prices map[string]*loan.PriceData
}

func (o *oracle) LastPrice(_ context.Context, a loan.OracleAsset) (*loan.PriceData, error) {
	ref, _ := a.Ref()
	return o.prices[ref], nil
}

type fixture struct {
	store  *memstore.Store
	auth   *authmock.Authorizer
	events *eventmock.Recorder
	oracle *oracle
	clock  *clock
	uc     *Usecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memstore.New(),
		auth:   authmock.Allow(borrower, lender),
		events: &eventmock.Recorder{},
		oracle: &oracle{prices: map[string]*loan.PriceData{}},
		clock:  &clock{t: t0},
	}
	f.uc = NewUsecase(f.store, escrow.NewLedger(custody, f.auth), f.auth, f.oracle, f.events, WithClock(f.clock.Now))
	return f
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func eq(t *testing.T, what string, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Fatalf("%s = %s, want %d", what, got, want)
	}
}

func withCollateral(asset string, amount int64, conds ...loan.SeizeCondition) *loan.Collateral {
	return &loan.Collateral{Asset: asset, Amount: d(amount), SeizeConditions: conds}
}

func waitingForLender(amount int64, rate uint32, c *loan.Collateral) *loan.Loan {
	return &loan.Loan{
		Borrower:          loan.StringPtr(borrower),
		Collateral:        c,
		Status:            loan.StatusWaitingForLender,
		LoanAsset:         "USDC",
		LoanAmount:        d(amount),
		DailyInterestRate: rate,
		MaxLoanTerm:       10,
	}
}

func waitingForBorrower(amount int64, c *loan.Collateral) *loan.Loan {
	return &loan.Loan{
		Lender:            loan.StringPtr(lender),
		Collateral:        c,
		Status:            loan.StatusWaitingForBorrower,
		LoanAsset:         "USDC",
		LoanAmount:        d(amount),
		DailyInterestRate: 100,
		MaxLoanTerm:       10,
	}
}

// startedLoan creates key as waiting for a lender and funds it at t0.
func (f *fixture) startedLoan(t *testing.T, key uint64, c *loan.Collateral) {
	t.Helper()
	ctx := context.Background()
	if c != nil {
		f.store.Fund(borrower, c.Asset, c.Amount)
	}
	f.store.Fund(lender, "USDC", d(1000))
	if _, err := f.uc.NewLoan(ctx, key, waitingForLender(1000, 500, c)); err != nil {
		t.Fatalf("NewLoan: %v", err)
	}
	if _, err := f.uc.Lend(ctx, key, lender); err != nil {
		t.Fatalf("Lend: %v", err)
	}
}
