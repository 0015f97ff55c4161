// Package events ships committed loan events to an external sink.
package events

import (
	"encoding/json"
	"strconv"
	"time"

	"p2plending/internal/domain/loan"
	"p2plending/pkg/id"
)

// Envelope is the wire form of a loan event on every sink.
type Envelope struct {
	ID         string     `json:"id"`
	Topic      loan.Topic `json:"topic"`
	LoanKey    uint64     `json:"loan_key,string"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func NewEnvelope(e loan.Event) Envelope {
	at := e.OccurredAt.UTC()
	if e.OccurredAt.IsZero() {
		at = time.Now().UTC()
	}
	return Envelope{ID: id.New(at), Topic: e.Topic, LoanKey: e.LoanKey, OccurredAt: at}
}

func (e Envelope) key() string { return strconv.FormatUint(e.LoanKey, 10) }

func (e Envelope) marshal() ([]byte, error) { return json.Marshal(e) }
