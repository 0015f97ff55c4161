package escrow

import (
	"context"
	"log/slog"
	"time"

	"p2plending/internal/domain/loan"
	"p2plending/internal/domain/uow"
	"p2plending/internal/observability/metrics"

	"github.com/shopspring/decimal"
)

type Usecase struct {
	uow     uow.UnitOfWork
	ledger  *Ledger
	auth    Authorizer
	log     *slog.Logger
	metrics *metrics.LendingMetrics
}

// NewUsecase: ledger and auth are shared with the lending usecase.
func NewUsecase(tx uow.UnitOfWork, ledger *Ledger, auth Authorizer, log *slog.Logger, m *metrics.LendingMetrics) *Usecase {
	if log == nil {
		log = slog.Default()
	}
	return &Usecase{uow: tx, ledger: ledger, auth: auth, log: log, metrics: m}
}

// Withdraw pays out the user's entire balance of one asset.
func (u *Usecase) Withdraw(ctx context.Context, in WithdrawInput) (dto *WithdrawalDTO, err error) {
	start := time.Now()
	defer func() { u.metrics.ObserveOperation("withdraw", outcome(err), time.Since(start)) }()

	if err := u.auth.RequireAuth(ctx, in.User); err != nil {
		return nil, err
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		bal, err := r.Escrow.GetForUpdate(ctx, in.User, in.Asset)
		if err != nil {
			return err
		}
		if bal == nil || !bal.Amount.IsPositive() {
			return loan.ErrNotAuthorized
		}
		if err := u.ledger.Transfer(ctx, r, in.Asset, u.ledger.Custody(), in.User, bal.Amount); err != nil {
			return err
		}
		if err := r.Escrow.Clear(ctx, in.User, in.Asset); err != nil {
			return err
		}
		dto = &WithdrawalDTO{User: in.User, Asset: in.Asset, Amount: bal.Amount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.metrics.RecordWithdrawal(in.Asset)
	u.log.InfoContext(ctx, "escrow withdrawn", "user", in.User, "asset", in.Asset, "amount", dto.Amount.String())
	return dto, nil
}

// Balances is empty, never nil, for a user with nothing to claim.
func (u *Usecase) Balances(ctx context.Context, user string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		list, err := r.Escrow.List(ctx, user)
		if err != nil {
			return err
		}
		for _, b := range list {
			if b.Amount.IsPositive() {
				out[b.Asset] = b.Amount
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
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
