package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"p2plending/internal/domain/loan"
	"p2plending/pkg/id"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func repaid() loan.Event {
	return loan.Event{Topic: loan.TopicLoanRepaid, LoanKey: 18446744073709551615, OccurredAt: at}
}

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope(repaid())

	assert.Equal(t, loan.TopicLoanRepaid, env.Topic)
	assert.Equal(t, at, env.OccurredAt)
	ts, ok := id.Time(env.ID)
	require.True(t, ok)
	assert.Equal(t, at, ts)

	raw, err := env.marshal()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"loan_key":"18446744073709551615"`)
	assert.Contains(t, string(raw), `"topic":"loan_repaid"`)
}

func TestNewEnvelope_StampsMissingTime(t *testing.T) {
	env := NewEnvelope(loan.Event{Topic: loan.TopicNewLoan, LoanKey: 1})
	assert.WithinDuration(t, time.Now(), env.OccurredAt, 2*time.Second)
}

func TestRedisPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, "lending.events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, NewRedisPublisher(rdb, "lending.events").Publish(ctx, repaid()))

	select {
	case msg := <-sub.Channel():
		var env Envelope
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
		assert.Equal(t, loan.TopicLoanRepaid, env.Topic)
		assert.Equal(t, uint64(18446744073709551615), env.LoanKey)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisPublisher_Unavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	err := NewRedisPublisher(rdb, "lending.events").Publish(context.Background(), repaid())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loan_repaid")
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { w.closed = true; return nil }

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}

	require.NoError(t, p.Publish(context.Background(), repaid()))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "18446744073709551615", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, loan.TopicLoanRepaid, env.Topic)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "loan_repaid", headers["topic"])
	assert.Equal(t, env.ID, headers["event_id"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{w: &fakeWriter{err: errors.New("leader not available")}}
	err := p.Publish(context.Background(), repaid())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestNewKafkaPublisher_ConfiguresWriter(t *testing.T) {
	p := NewKafkaPublisher([]string{"k1:9092"}, "lending.events")
	w, ok := p.w.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "lending.events", w.Topic)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, p.Publish(context.Background(), repaid()))
	assert.Contains(t, buf.String(), `"msg":"loan event"`)
	assert.Contains(t, buf.String(), `"topic":"loan_repaid"`)
}
