package loan

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

const SecondsPerDay = 86_400

var basisPoints = decimal.NewFromInt(10_000)

// ElapsedDays counts the day the loan is in, starting at 1 on the day it was
// funded.
func ElapsedDays(since uint64, now time.Time) uint64 {
	cur := UnixSeconds(now)
	if cur < since {
		return 1
	}
	return (cur-since)/SecondsPerDay + 1
}

// Interest returns amount * days * rate / 10000, truncated, for an in-progress
// loan and zero otherwise.
func Interest(l *Loan, now time.Time) decimal.Decimal {
	if l == nil || l.Status != StatusInProgress {
		return decimal.Zero
	}
	days := decimal.NewFromBigInt(new(big.Int).SetUint64(ElapsedDays(l.Timestamp, now)), 0)
	rate := decimal.NewFromInt(int64(l.DailyInterestRate))
	q, _ := l.LoanAmount.Mul(days).Mul(rate).QuoRem(basisPoints, 0)
	return q
}

func UnixSeconds(t time.Time) uint64 {
	s := t.Unix()
	if s < 0 {
		return 0
	}
	return uint64(s)
}
