package loan

import "time"

type Topic string

const (
	TopicNewLoan          Topic = "new_loan"
	TopicLoanCanceled     Topic = "loan_canceled"
	TopicLoanRepaid       Topic = "loan_repaid"
	TopicCollateralSeized Topic = "collateral_seized"
)

// Event is emitted after a lifecycle transition commits.
type Event struct {
	Topic      Topic     `json:"topic"`
	LoanKey    uint64    `json:"loan_key"`
	OccurredAt time.Time `json:"occurred_at"`
}
