package http

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"p2plending/internal/domain/loan"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Reusable error payload. Code carries the protocol error code when the
// failure is a domain error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    *uint32      `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

var (
	reIntStr   = regexp.MustCompile(`^[0-9]{1,39}$`)
	reIdentity = regexp.MustCompile(`^[A-Za-z0-9_.:\-]{1,64}$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()
	// report json names in field errors
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// amounts travel as decimal strings: non-negative integers that fit i128
	_ = v.RegisterValidation("intstr", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if !reIntStr.MatchString(s) {
			return false
		}
		d, err := decimal.NewFromString(s)
		return err == nil && loan.FitsInt128(d)
	})
	// account and asset identifiers
	_ = v.RegisterValidation("identity", func(fl validator.FieldLevel) bool {
		return reIdentity.MatchString(fl.Field().String())
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "intstr":
			out = append(out, FieldError{Field: field, Message: "must be a non-negative integer string below 2^127"})
		case "identity":
			out = append(out, FieldError{Field: field, Message: "must be 1-64 chars of [A-Za-z0-9_.:-]"})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of: " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
