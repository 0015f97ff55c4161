package http

import (
	"context"
	"net/http"
	"strconv"

	"p2plending/internal/domain/loan"
	"p2plending/internal/usecase/lending"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LendingService interface {
	NewLoan(ctx context.Context, key uint64, in *loan.Loan) (*lending.LoanDTO, error)
	CancelLoan(ctx context.Context, key uint64) error
	Lend(ctx context.Context, key uint64, lender string) (*lending.LoanDTO, error)
	Borrow(ctx context.Context, key uint64, borrower string) (*lending.LoanDTO, error)
	Repay(ctx context.Context, key uint64, user string) (*lending.RepaymentDTO, error)
	Seize(ctx context.Context, key uint64) error
	GetLoan(ctx context.Context, key uint64) (*lending.LoanDTO, error)
	GetLoans(ctx context.Context, user string) ([]uint64, error)
	GetInterest(ctx context.Context, key uint64) (*lending.InterestDTO, error)
}

type LoanHandler struct{ uc LendingService }

func NewLoanHandler(uc LendingService) *LoanHandler { return &LoanHandler{uc: uc} }

type collateralReq struct {
	Asset           string          `json:"asset"            validate:"required,identity"`
	Amount          string          `json:"amount"           validate:"required,intstr"`
	SeizeConditions loan.Conditions `json:"seize_conditions"`
}

type newLoanReq struct {
	Borrower          *string        `json:"borrower"            validate:"omitempty,identity"`
	Lender            *string        `json:"lender"              validate:"omitempty,identity"`
	Collateral        *collateralReq `json:"collateral"`
	Status            string         `json:"status"              validate:"required,oneof=waiting_for_lender waiting_for_borrower in_progress"`
	LoanAsset         string         `json:"loan_asset"          validate:"required,identity"`
	LoanAmount        string         `json:"loan_amount"         validate:"required,intstr"`
	DailyInterestRate uint32         `json:"daily_interest_rate"`
	MaxLoanTerm       uint32         `json:"max_loan_term"`
}

// toLoan converts a validated request; amounts already match intstr.
func (r newLoanReq) toLoan() *loan.Loan {
	l := &loan.Loan{
		Borrower:          r.Borrower,
		Lender:            r.Lender,
		Status:            loan.Status(r.Status),
		LoanAsset:         r.LoanAsset,
		LoanAmount:        decimal.RequireFromString(r.LoanAmount),
		DailyInterestRate: r.DailyInterestRate,
		MaxLoanTerm:       r.MaxLoanTerm,
	}
	if c := r.Collateral; c != nil {
		l.Collateral = &loan.Collateral{
			Asset:           c.Asset,
			Amount:          decimal.RequireFromString(c.Amount),
			SeizeConditions: c.SeizeConditions,
		}
	}
	return l
}

type lendReq struct {
	Lender string `json:"lender" validate:"required,identity"`
}

type borrowReq struct {
	Borrower string `json:"borrower" validate:"required,identity"`
}

type repayReq struct {
	User string `json:"user" validate:"required,identity"`
}

type loanStatusResp struct {
	LoanKey uint64 `json:"loan_key,string"`
	Status  string `json:"status"`
}

type userLoansResp struct {
	User     string   `json:"user"`
	LoanKeys []string `json:"loan_keys"`
}

func (h *LoanHandler) NewLoan(c echo.Context) error {
	key, ok := loanKeyParam(c)
	if !ok {
		return badLoanKey(c)
	}
	var req newLoanReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.NewLoan(c.Request().Context(), key, req.toLoan())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) CancelLoan(c echo.Context) error {
	key, ok := loanKeyParam(c)
	if !ok {
		return badLoanKey(c)
	}
	if err := h.uc.CancelLoan(c.Request().Context(), key); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loanStatusResp{LoanKey: key, Status: "canceled"})
}

func (h *LoanHandler) Lend(c echo.Context) error {
	key, ok := loanKeyParam(c)
	if !ok {
		return badLoanKey(c)
	}
	var req lendReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Lend(c.Request().Context(), key, req.Lender)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Borrow(c echo.Context) error {
	key, ok := loanKeyParam(c)
	if !ok {
		return badLoanKey(c)
	}
	var req borrowReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Borrow(c.Request().Context(), key, req.Borrower)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	key, ok := loanKeyParam(c)
	if !ok {
		return badLoanKey(c)
	}
	var req repayReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Repay(c.Request().Context(), key, req.User)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Seize(c echo.Context) error {
	key, ok := loanKeyParam(c)
	if !ok {
		return badLoanKey(c)
	}
	if err := h.uc.Seize(c.Request().Context(), key); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loanStatusResp{LoanKey: key, Status: "seized"})
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	key, ok := loanKeyParam(c)
	if !ok {
		return badLoanKey(c)
	}
	dto, err := h.uc.GetLoan(c.Request().Context(), key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetInterest(c echo.Context) error {
	key, ok := loanKeyParam(c)
	if !ok {
		return badLoanKey(c)
	}
	dto, err := h.uc.GetInterest(c.Request().Context(), key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetLoans(c echo.Context) error {
	user := c.Param("user")
	keys, err := h.uc.GetLoans(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}
	resp := userLoansResp{User: user, LoanKeys: make([]string, 0, len(keys))}
	for _, k := range keys {
		resp.LoanKeys = append(resp.LoanKeys, strconv.FormatUint(k, 10))
	}
	return c.JSON(http.StatusOK, resp)
}
