// Package lending drives the loan lifecycle: creation, funding by either
// side, cancellation, repayment and collateral seizure. Every operation runs
// in one unit of work and publishes its event only after commit.
package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"p2plending/internal/domain/loan"
	"p2plending/internal/domain/uow"
	"p2plending/internal/observability/metrics"
	"p2plending/internal/usecase/escrow"
)

var ErrInvalidStatus = errors.New("invalid loan status")

// Authorizer fails with loan.ErrNotAuthorized unless the current caller
// controls identity.
type Authorizer interface {
	RequireAuth(ctx context.Context, identity string) error
}

type Publisher interface {
	Publish(ctx context.Context, e loan.Event) error
}

type Usecase struct {
	uow     uow.UnitOfWork
	ledger  *escrow.Ledger
	auth    Authorizer
	oracle  loan.PriceOracle
	events  Publisher
	now     func() time.Time
	log     *slog.Logger
	metrics *metrics.LendingMetrics
}

type Option func(*Usecase)

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func WithLogger(l *slog.Logger) Option { return func(u *Usecase) { u.log = l } }

func WithMetrics(m *metrics.LendingMetrics) Option { return func(u *Usecase) { u.metrics = m } }

// NewUsecase: oracle may be nil when no loan uses price conditions; pub may
// be nil to drop events.
func NewUsecase(tx uow.UnitOfWork, ledger *escrow.Ledger, auth Authorizer, oracle loan.PriceOracle, pub Publisher, opts ...Option) *Usecase {
	u := &Usecase{
		uow:    tx,
		ledger: ledger,
		auth:   auth,
		oracle: oracle,
		events: pub,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// NewLoan registers a loan under key on behalf of its creator, pulling the
// creator's stake (collateral or principal) into custody.
func (u *Usecase) NewLoan(ctx context.Context, key uint64, in *loan.Loan) (*LoanDTO, error) {
	if in == nil {
		return nil, ErrInvalidStatus
	}
	l := in.Clone()
	l.LoanKey = key

	err := u.run(ctx, "new_loan", key, loan.TopicNewLoan, func(r uow.Repos) error {
		exists, err := r.Loans.Exists(ctx, key)
		if err != nil {
			return err
		}
		if exists {
			return loan.ErrLoanAlreadyExists
		}
		if err := l.Collateral.Validate(); err != nil {
			return err
		}
		if !l.Status.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, l.Status)
		}

		switch l.Status {
		case loan.StatusWaitingForLender:
			borrower, err := party(l.Borrower, loan.ErrInvalidBorrower)
			if err != nil {
				return err
			}
			if err := u.auth.RequireAuth(ctx, borrower); err != nil {
				return err
			}
			if c := l.Collateral; c != nil {
				if err := u.ledger.Transfer(ctx, r, c.Asset, borrower, u.ledger.Custody(), c.Amount); err != nil {
					return err
				}
			}
			if err := r.Index.Add(ctx, borrower, key); err != nil {
				return err
			}
		case loan.StatusWaitingForBorrower:
			lender, err := party(l.Lender, loan.ErrInvalidLender)
			if err != nil {
				return err
			}
			if err := u.auth.RequireAuth(ctx, lender); err != nil {
				return err
			}
			if err := u.ledger.Transfer(ctx, r, l.LoanAsset, lender, u.ledger.Custody(), l.LoanAmount); err != nil {
				return err
			}
			if err := r.Index.Add(ctx, lender, key); err != nil {
				return err
			}
		default:
			return loan.ErrLoanInProgress
		}

		return r.Loans.Create(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// CancelLoan refunds the creator's stake and deletes a loan nobody funded yet.
func (u *Usecase) CancelLoan(ctx context.Context, key uint64) error {
	return u.runLoan(ctx, "cancel_loan", key, loan.TopicLoanCanceled, func(r uow.Repos, l *loan.Loan) error {
		switch l.Status {
		case loan.StatusWaitingForLender:
			borrower, err := party(l.Borrower, loan.ErrInvalidBorrower)
			if err != nil {
				return err
			}
			if err := u.auth.RequireAuth(ctx, borrower); err != nil {
				return err
			}
			if c := l.Collateral; c != nil {
				if err := u.ledger.Transfer(ctx, r, c.Asset, u.ledger.Custody(), borrower, c.Amount); err != nil {
					return err
				}
			}
			if err := r.Index.Remove(ctx, borrower, key); err != nil {
				return err
			}
		case loan.StatusWaitingForBorrower:
			lender, err := party(l.Lender, loan.ErrInvalidLender)
			if err != nil {
				return err
			}
			if err := u.auth.RequireAuth(ctx, lender); err != nil {
				return err
			}
			if err := u.ledger.Transfer(ctx, r, l.LoanAsset, u.ledger.Custody(), lender, l.LoanAmount); err != nil {
				return err
			}
			if err := r.Index.Remove(ctx, lender, key); err != nil {
				return err
			}
		default:
			return loan.ErrLoanInProgress
		}
		return r.Loans.Delete(ctx, key)
	})
}

// Lend funds a loan waiting for a lender; principal goes straight to the
// borrower.
func (u *Usecase) Lend(ctx context.Context, key uint64, lender string) (*LoanDTO, error) {
	var out *LoanDTO
	err := u.runLoan(ctx, "lend", key, loan.TopicNewLoan, func(r uow.Repos, l *loan.Loan) error {
		if err := u.auth.RequireAuth(ctx, lender); err != nil {
			return err
		}
		if l.Status != loan.StatusWaitingForLender {
			return loan.ErrLending
		}
		if err := claim(l.Lender, lender, loan.ErrInvalidLender); err != nil {
			return err
		}
		borrower, err := party(l.Borrower, loan.ErrInvalidBorrower)
		if err != nil {
			return err
		}
		if borrower == lender {
			return loan.ErrLending
		}

		if err := u.ledger.Transfer(ctx, r, l.LoanAsset, lender, borrower, l.LoanAmount); err != nil {
			return err
		}

		l.Lender = loan.StringPtr(lender)
		u.start(l)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Index.Add(ctx, lender, key); err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	return out, err
}

// Borrow takes a loan waiting for a borrower: principal leaves custody for
// the borrower and the borrower's collateral enters it.
func (u *Usecase) Borrow(ctx context.Context, key uint64, borrower string) (*LoanDTO, error) {
	var out *LoanDTO
	err := u.runLoan(ctx, "borrow", key, loan.TopicNewLoan, func(r uow.Repos, l *loan.Loan) error {
		if err := u.auth.RequireAuth(ctx, borrower); err != nil {
			return err
		}
		if l.Status != loan.StatusWaitingForBorrower {
			return loan.ErrBorrowing
		}
		if err := claim(l.Borrower, borrower, loan.ErrInvalidBorrower); err != nil {
			return err
		}
		lender, err := party(l.Lender, loan.ErrInvalidLender)
		if err != nil {
			return err
		}
		if lender == borrower {
			return loan.ErrBorrowing
		}

		if err := u.ledger.Transfer(ctx, r, l.LoanAsset, u.ledger.Custody(), borrower, l.LoanAmount); err != nil {
			return err
		}
		if c := l.Collateral; c != nil {
			if err := u.ledger.Transfer(ctx, r, c.Asset, borrower, u.ledger.Custody(), c.Amount); err != nil {
				return err
			}
		}

		l.Borrower = loan.StringPtr(borrower)
		u.start(l)
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Index.Add(ctx, borrower, key); err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	return out, err
}

// Repay settles an active loan. Any authorized user may pay; principal plus
// interest is escrowed for the lender and collateral for the borrower.
func (u *Usecase) Repay(ctx context.Context, key uint64, user string) (*RepaymentDTO, error) {
	var out *RepaymentDTO
	err := u.runLoan(ctx, "repay", key, loan.TopicLoanRepaid, func(r uow.Repos, l *loan.Loan) error {
		if err := u.auth.RequireAuth(ctx, user); err != nil {
			return err
		}
		if l.Status != loan.StatusInProgress {
			return loan.ErrLoanNotInProgress
		}

		interest := loan.Interest(l, u.now())
		total := l.LoanAmount.Add(interest)

		lender, err := party(l.Lender, loan.ErrInvalidLender)
		if err != nil {
			return err
		}
		if err := u.ledger.Deposit(ctx, r, l.LoanAsset, user, lender, total); err != nil {
			return err
		}
		borrower, err := party(l.Borrower, loan.ErrInvalidBorrower)
		if err != nil {
			return err
		}
		if c := l.Collateral; c != nil {
			if err := u.ledger.Deposit(ctx, r, c.Asset, u.ledger.Custody(), borrower, c.Amount); err != nil {
				return err
			}
		}

		if err := u.close(ctx, r, l, lender, borrower); err != nil {
			return err
		}
		out = &RepaymentDTO{LoanKey: key, Principal: l.LoanAmount, Interest: interest, Total: total}
		return nil
	})
	return out, err
}

// Seize hands the collateral of an active loan to its lender once any seize
// condition holds.
func (u *Usecase) Seize(ctx context.Context, key uint64) error {
	return u.runLoan(ctx, "seize", key, loan.TopicCollateralSeized, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusInProgress {
			return loan.ErrLoanNotInProgress
		}
		c := l.Collateral
		if c == nil {
			return loan.ErrInvalidCollateral
		}
		lender, err := party(l.Lender, loan.ErrInvalidLender)
		if err != nil {
			return err
		}
		borrower, err := party(l.Borrower, loan.ErrInvalidBorrower)
		if err != nil {
			return err
		}
		if err := u.auth.RequireAuth(ctx, lender); err != nil {
			return err
		}

		ok, err := c.Seizable(ctx, l, u.now(), u.oracle)
		if err != nil {
			return err
		}
		if !ok {
			return loan.ErrCollateralNotSeizable
		}

		if err := u.ledger.Deposit(ctx, r, c.Asset, u.ledger.Custody(), lender, c.Amount); err != nil {
			return err
		}
		return u.close(ctx, r, l, lender, borrower)
	})
}

func (u *Usecase) GetLoan(ctx context.Context, key uint64) (*LoanDTO, error) {
	var out *LoanDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.Get(ctx, key)
		if err != nil {
			return err
		}
		out = toDTO(l)
		return nil
	})
	return out, err
}

// GetLoans lists the keys of the user's open loans, newest first.
func (u *Usecase) GetLoans(ctx context.Context, user string) ([]uint64, error) {
	var out []uint64
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		keys, err := r.Index.List(ctx, user)
		out = keys
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []uint64{}
	}
	return out, nil
}

// GetInterest is the interest owed if the loan were repaid now; zero for a
// loan that has not started.
func (u *Usecase) GetInterest(ctx context.Context, key uint64) (*InterestDTO, error) {
	var out *InterestDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.Get(ctx, key)
		if err != nil {
			return err
		}
		out = &InterestDTO{LoanKey: key, Interest: loan.Interest(l, u.now())}
		return nil
	})
	return out, err
}

// start moves a funded loan into progress.
func (u *Usecase) start(l *loan.Loan) {
	l.Timestamp = loan.UnixSeconds(u.now())
	l.Status = loan.StatusInProgress
}

func (u *Usecase) close(ctx context.Context, r uow.Repos, l *loan.Loan, lender, borrower string) error {
	if err := r.Index.Remove(ctx, lender, l.LoanKey); err != nil {
		return err
	}
	if err := r.Index.Remove(ctx, borrower, l.LoanKey); err != nil {
		return err
	}
	return r.Loans.Delete(ctx, l.LoanKey)
}

// party returns the identity in a role slot, or missing when it is unset.
func party(slot *string, missing error) (string, error) {
	if slot == nil || *slot == "" {
		return "", missing
	}
	return *slot, nil
}

// claim checks actor against a reserved role slot. An open slot accepts
// anyone.
func claim(reserved *string, actor string, mismatch error) error {
	if reserved != nil && *reserved != actor {
		return mismatch
	}
	return nil
}

func (u *Usecase) run(ctx context.Context, op string, key uint64, topic loan.Topic, fn func(r uow.Repos) error) error {
	start := time.Now()
	err := u.uow.WithinTx(ctx, fn)
	u.finish(ctx, op, key, topic, start, err)
	return err
}

func (u *Usecase) runLoan(ctx context.Context, op string, key uint64, topic loan.Topic, fn func(r uow.Repos, l *loan.Loan) error) error {
	start := time.Now()
	err := u.uow.WithinLoanTx(ctx, key, fn)
	u.finish(ctx, op, key, topic, start, err)
	return err
}

func (u *Usecase) finish(ctx context.Context, op string, key uint64, topic loan.Topic, start time.Time, err error) {
	u.metrics.ObserveOperation(op, outcome(err), time.Since(start))
	if err != nil {
		u.log.DebugContext(ctx, "loan operation rejected", "op", op, "loan_key", key, "error", err)
		return
	}
	u.log.InfoContext(ctx, "loan operation committed", "op", op, "loan_key", key)
	u.publish(ctx, topic, key)
}

func (u *Usecase) publish(ctx context.Context, topic loan.Topic, key uint64) {
	if u.events == nil {
		return
	}
	err := u.events.Publish(ctx, loan.Event{Topic: topic, LoanKey: key, OccurredAt: u.now().UTC()})
	u.metrics.RecordPublish(string(topic), err)
	if err != nil {
		u.log.WarnContext(ctx, "publish event failed", "topic", topic, "loan_key", key, "error", err)
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if _, ok := loan.Code(err); ok {
		return "rejected"
	}
	return "error"
}
