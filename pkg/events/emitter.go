// Package events emits scored candidate pairs to the event stream
package events

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Publisher publishes keyed events
type Publisher interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

// Emitter handles event emission for fern
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
	now       func() time.Time
}

// NewEmitter creates a new event emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// EmitCandidatesScored emits one candidate.scored event per pair of the
// training set. vendors maps product ids to their vendor and may be nil.
// It returns the run id shared by the events.
func (e *Emitter) EmitCandidatesScored(ctx context.Context, ts matching.TrainingSet, vendors map[string]string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCandidatesScored", tracing.AttrEventCount.Int(len(ts.Pairs)))
	defer span.End()

	runID := uuid.NewString()
	now := e.now()

	out := make([]kafka.Event, len(ts.Pairs))
	for i, p := range ts.Pairs {
		event := &CandidateScoredEvent{
			BaseEvent: BaseEvent{
				EventID:       uuid.NewString(),
				EventType:     EventTypeCandidateScored,
				SchemaVersion: kafka.SchemaVersion,
				RunID:         runID,
				Timestamp:     now,
			},
			ProductA:       p.AID,
			ProductB:       p.BID,
			VendorA:        vendors[p.AID],
			VendorB:        vendors[p.BID],
			CandidateScore: p.CandidateScore,
			OverallScore:   p.OverallScore,
			Label:          ts.Labels[i],
			LabelPolicy:    ts.Policy,
			Features:       ts.Scored[i].ToMap(),
		}
		out[i] = kafka.Event{
			Key:       p.AID,
			EventType: string(EventTypeCandidateScored),
			Payload:   event,
		}
	}

	if err := e.publisher.Publish(ctx, out...); err != nil {
		metrics.EventsPublished.WithLabelValues(string(EventTypeCandidateScored), "error").Add(float64(len(out)))
		e.logger.WithContext(ctx).WithError(err).WithField("run_id", runID).Error("Failed to emit candidate.scored events")
		return runID, err
	}
	metrics.EventsPublished.WithLabelValues(string(EventTypeCandidateScored), "success").Add(float64(len(out)))

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"run_id": runID,
		"count":  len(out),
	}).Info("Emitted candidate.scored events")

	return runID, nil
}
