package loan

import "errors"

var (
	ErrNotAuthorized         = errors.New("not authorized")
	ErrLoanNotFound          = errors.New("loan not found")
	ErrLoanAlreadyExists     = errors.New("loan already exists")
	ErrInvalidCollateral     = errors.New("invalid collateral")
	ErrInvalidBorrower       = errors.New("invalid borrower")
	ErrInvalidLender         = errors.New("invalid lender")
	ErrLoanInProgress        = errors.New("loan in progress")
	ErrLoanNotInProgress     = errors.New("loan not in progress")
	ErrLending               = errors.New("lending error")
	ErrBorrowing             = errors.New("borrowing error")
	ErrCollateralNotSeizable = errors.New("collateral not seizable")
	ErrOracle                = errors.New("oracle error")
)

// Numeric codes as published by the protocol's clients.
var errorCodes = []struct {
	err  error
	code uint32
}{
	{ErrNotAuthorized, 0},
	{ErrLoanNotFound, 100},
	{ErrLoanAlreadyExists, 101},
	{ErrInvalidCollateral, 102},
	{ErrInvalidBorrower, 103},
	{ErrInvalidLender, 104},
	{ErrLoanInProgress, 105},
	{ErrLoanNotInProgress, 106},
	{ErrLending, 107},
	{ErrBorrowing, 108},
	{ErrCollateralNotSeizable, 109},
	{ErrOracle, 500},
}

// Code reports the protocol error code carried by err, if any.
func Code(err error) (uint32, bool) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code, true
		}
	}
	return 0, false
}
