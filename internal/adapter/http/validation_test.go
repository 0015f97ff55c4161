package http

import (
	"errors"
	"strings"
	"testing"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestIntStrValidation(t *testing.T) {
	type P struct {
		Amount string `json:"amount" validate:"intstr"`
	}
	cv := NewValidator()

	for _, s := range []string{"0", "1000", "170141183460469231731687303715884105727", strings.Repeat("9", 38)} {
		if err := cv.Validate(P{Amount: s}); err != nil {
			t.Fatalf("expected %q valid, got %v", s, err)
		}
	}
	for _, s := range []string{"", "-1", "1.5", "1e3", " 10", "0x10", strings.Repeat("9", 40),
		"170141183460469231731687303715884105728", strings.Repeat("9", 39)} {
		err := cv.Validate(P{Amount: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "amount", "non-negative integer string") {
			t.Fatalf("expected intstr message for %q, got: %+v", s, fe)
		}
	}
}

func TestIdentityValidation(t *testing.T) {
	type P struct {
		User string `json:"user" validate:"identity"`
	}
	cv := NewValidator()

	for _, s := range []string{"alice", "GABC123", "usdc:issuer", "acct-1.main_2", strings.Repeat("a", 64)} {
		if err := cv.Validate(P{User: s}); err != nil {
			t.Fatalf("expected %q valid, got %v", s, err)
		}
	}
	for _, s := range []string{"", "has space", "semi;colon", strings.Repeat("a", 65)} {
		err := cv.Validate(P{User: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		if fe := ToFieldErrors(err); !containsFieldMsg(fe, "user", "1-64 chars") {
			t.Fatalf("expected identity message for %q, got: %+v", s, fe)
		}
	}
}

func TestToFieldErrors_Mappings(t *testing.T) {
	type P struct {
		Status string `json:"status" validate:"required,oneof=a b"`
		Min    int    `json:"min"    validate:"gte=10"`
		Max    int    `json:"max"    validate:"lte=5"`
		Email  string `json:"email"  validate:"email"`
	}
	cv := NewValidator()

	fe := ToFieldErrors(cv.Validate(P{Min: 1, Max: 9, Email: "x"}))
	if !containsFieldMsg(fe, "status", "is required") {
		t.Fatalf("missing required message: %+v", fe)
	}
	if !containsFieldMsg(fe, "min", "greater than or equal to 10") {
		t.Fatalf("missing gte message: %+v", fe)
	}
	if !containsFieldMsg(fe, "max", "less than or equal to 5") {
		t.Fatalf("missing lte message: %+v", fe)
	}
	if !containsFieldMsg(fe, "email", "email validation failed") {
		t.Fatalf("missing default message: %+v", fe)
	}

	fe = ToFieldErrors(cv.Validate(P{Status: "c", Min: 10, Email: "a@b.co"}))
	if !containsFieldMsg(fe, "status", "must be one of: a b") {
		t.Fatalf("missing oneof message: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	fe := ToFieldErrors(errors.New("boom"))
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}
