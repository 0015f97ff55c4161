package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"p2plending/internal/domain/ledger"
	"p2plending/internal/domain/loan"
	"p2plending/internal/usecase/lending"

	"github.com/labstack/echo/v4"
)

// statusFor maps domain errors to HTTP statuses; anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotAuthorized):
		return http.StatusUnauthorized
	case errors.Is(err, loan.ErrLoanNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrLoanAlreadyExists),
		errors.Is(err, loan.ErrLoanInProgress),
		errors.Is(err, loan.ErrLoanNotInProgress),
		errors.Is(err, loan.ErrLending),
		errors.Is(err, loan.ErrBorrowing):
		return http.StatusConflict
	case errors.Is(err, loan.ErrInvalidCollateral),
		errors.Is(err, loan.ErrInvalidBorrower),
		errors.Is(err, loan.ErrInvalidLender),
		errors.Is(err, loan.ErrCollateralNotSeizable),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loan.ErrOracle):
		return http.StatusBadGateway
	case errors.Is(err, lending.ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
		return c.JSON(status, ErrorResponse{Error: "internal error"})
	}
	resp := ErrorResponse{Error: err.Error()}
	if code, ok := loan.Code(err); ok {
		resp.Code = &code
	}
	return c.JSON(status, resp)
}

// bindValid binds the body into req and runs the validator. When it reports
// false the error response has already been written.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

func loanKeyParam(c echo.Context) (uint64, bool) {
	key, err := strconv.ParseUint(c.Param("loan_key"), 10, 64)
	return key, err == nil
}

func badLoanKey(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "loan_key must be an unsigned 64-bit integer"})
}
