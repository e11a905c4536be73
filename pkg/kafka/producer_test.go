package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/tracing"
)

type recordingWriter struct {
	batches [][]kafka.Message
	err     error
	closed  bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, msgs)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestPublish_Batches(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "pairs", 2, testLogger())

	err := p.Publish(context.Background(),
		Event{Key: "a", EventType: "candidate.scored", Payload: map[string]int{"n": 1}},
		Event{Key: "b", EventType: "candidate.scored", Payload: map[string]int{"n": 2}},
		Event{Key: "c", EventType: "candidate.scored", Payload: map[string]int{"n": 3}},
	)
	require.NoError(t, err)

	require.Len(t, w.batches, 2)
	assert.Len(t, w.batches[0], 2)
	assert.Len(t, w.batches[1], 1)

	msg := w.batches[1][0]
	assert.Equal(t, "pairs", msg.Topic)
	assert.Equal(t, []byte("c"), msg.Key)
	assert.JSONEq(t, `{"n":3}`, string(msg.Value))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("candidate.scored"), msg.Headers[0].Value)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublish_Empty(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, NewProducerWithWriter(w, "pairs", 10, testLogger()).Publish(context.Background()))
	assert.Empty(t, w.batches)
}

func TestPublish_Errors(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(w, "pairs", 10, testLogger())

	err := p.Publish(context.Background(), Event{Key: "a", Payload: 1})
	assert.EqualError(t, err, "broker down")

	err = p.Publish(context.Background(), Event{Key: "a", Payload: func() {}})
	assert.Error(t, err)
}

func TestPublish_PropagatesTraceParent(t *testing.T) {
	tp := tracing.NewProvider("fern-test", nil)
	defer func() {
		_ = tp.Shutdown(context.Background())
		tracing.SetTracer(nil)
	}()

	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "pairs", 10, testLogger())

	ctx, span := tracing.StartSpan(context.Background(), "match.run")
	defer span.End()
	require.NoError(t, p.Publish(ctx, Event{Key: "a", EventType: "candidate.scored", Payload: 1}))

	require.Len(t, w.batches, 1)
	headers := map[string]string{}
	for _, h := range w.batches[0][0].Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "1.0", headers["schema_version"])
	assert.Contains(t, headers["traceparent"], tracing.GetTraceID(ctx))
}

func TestPublish_NoTraceParentWithoutTracer(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "pairs", 10, testLogger())
	require.NoError(t, p.Publish(context.Background(), Event{Key: "a", Payload: 1}))

	for _, h := range w.batches[0][0].Headers {
		assert.NotEqual(t, "traceparent", h.Key)
	}
}
