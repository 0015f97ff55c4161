package events

import (
	"context"
	"log/slog"

	"p2plending/internal/domain/loan"
)

// LogPublisher records events in the service log only.
type LogPublisher struct{ log *slog.Logger }

func NewLogPublisher(l *slog.Logger) *LogPublisher {
	if l == nil {
		l = slog.Default()
	}
	return &LogPublisher{log: l}
}

func (p *LogPublisher) Publish(ctx context.Context, e loan.Event) error {
	env := NewEnvelope(e)
	p.log.InfoContext(ctx, "loan event",
		"event_id", env.ID, "topic", string(env.Topic), "loan_key", env.LoanKey, "occurred_at", env.OccurredAt)
	return nil
}
