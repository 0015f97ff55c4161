package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck probes one backing dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handler struct{ checks []HealthCheck }

func NewHandler(checks ...HealthCheck) *Handler { return &Handler{checks: checks} }

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, hc := range h.checks {
		if err := hc.Check(ctx); err != nil {
			deps[hc.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[hc.Name] = "ok"
	}

	body := map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(deps) > 0 {
		body["deps"] = deps
	}
	return c.JSON(code, body)
}

// Register mounts the lending API. mutating wraps every state-changing route
// (authentication and idempotency in production).
func Register(e *echo.Echo, h *Handler, loans *LoanHandler, escrow *EscrowHandler, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health)

	e.GET("/loans/:loan_key", loans.GetLoan)
	e.GET("/loans/:loan_key/interest", loans.GetInterest)
	e.GET("/users/:user/loans", loans.GetLoans)
	e.GET("/users/:user/balances", escrow.Balances)

	e.POST("/loans/:loan_key", loans.NewLoan, mutating...)
	e.DELETE("/loans/:loan_key", loans.CancelLoan, mutating...)
	e.POST("/loans/:loan_key/lend", loans.Lend, mutating...)
	e.POST("/loans/:loan_key/borrow", loans.Borrow, mutating...)
	e.POST("/loans/:loan_key/repay", loans.Repay, mutating...)
	e.POST("/loans/:loan_key/seize", loans.Seize, mutating...)
	e.POST("/users/:user/withdraw", escrow.Withdraw, mutating...)
}
