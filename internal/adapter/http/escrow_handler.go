package http

import (
	"context"
	"net/http"

	ucEscrow "p2plending/internal/usecase/escrow"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type EscrowService interface {
	Withdraw(ctx context.Context, in ucEscrow.WithdrawInput) (*ucEscrow.WithdrawalDTO, error)
	Balances(ctx context.Context, user string) (map[string]decimal.Decimal, error)
}

type EscrowHandler struct{ uc EscrowService }

func NewEscrowHandler(uc EscrowService) *EscrowHandler { return &EscrowHandler{uc: uc} }

type withdrawReq struct {
	Asset string `json:"asset" validate:"required,identity"`
}

type balancesResp struct {
	User     string                     `json:"user"`
	Balances map[string]decimal.Decimal `json:"balances"`
}

func (h *EscrowHandler) Withdraw(c echo.Context) error {
	var req withdrawReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Withdraw(c.Request().Context(), ucEscrow.WithdrawInput{User: c.Param("user"), Asset: req.Asset})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *EscrowHandler) Balances(c echo.Context) error {
	user := c.Param("user")
	bals, err := h.uc.Balances(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, balancesResp{User: user, Balances: bals})
}
