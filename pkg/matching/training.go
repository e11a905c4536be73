package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/Ramsey-B/fern/pkg/features"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/profile"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Pair identifies a scored candidate pair.
type Pair struct {
	AID            string  `json:"a_id"`
	BID            string  `json:"b_id"`
	CandidateScore float64 `json:"candidate_score"`
	OverallScore   float64 `json:"overall_score"`
}

// TrainingSet is the feature table of a candidate set with one row per pair.
// Rows follow features.FeatureNames column order.
type TrainingSet struct {
	Policy  string                  `json:"policy"`
	Columns []string                `json:"columns"`
	Rows    [][]float64             `json:"rows"`
	Labels  []int                   `json:"labels"`
	Pairs   []Pair                  `json:"pairs"`
	Scored  []features.PairFeatures `json:"-"`
}

// Positives returns the number of positively labeled pairs.
func (t TrainingSet) Positives() int {
	n := 0
	for _, l := range t.Labels {
		n += l
	}
	return n
}

type pairRef struct {
	a, b  int
	score float64
}

// MakeTrainingPairs computes features and labels for every candidate pair.
// Candidate ordinals must refer to catalogs a and b.
func (e *Engine) MakeTrainingPairs(ctx context.Context, a, b []models.ProductRecord, candidates CandidateSet) (TrainingSet, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.MakeTrainingPairs")
	defer span.End()

	start := time.Now()

	var refs []pairRef
	for _, item := range candidates.Items {
		if item.Index < 0 || item.Index >= len(a) {
			return TrainingSet{}, fmt.Errorf("candidate item %d out of range for catalog of %d", item.Index, len(a))
		}
		for _, c := range item.Candidates {
			if c.Ordinal < 0 || c.Ordinal >= len(b) {
				return TrainingSet{}, fmt.Errorf("candidate ordinal %d out of range for catalog of %d", c.Ordinal, len(b))
			}
			refs = append(refs, pairRef{a: item.Index, b: c.Ordinal, score: c.Score})
		}
	}

	profilesA, err := e.profileAll(ctx, a)
	if err != nil {
		return TrainingSet{}, err
	}
	profilesB, err := e.profileAll(ctx, b)
	if err != nil {
		return TrainingSet{}, err
	}

	set := TrainingSet{
		Policy:  e.policy.Name(),
		Columns: features.FeatureNames(),
		Rows:    make([][]float64, len(refs)),
		Labels:  make([]int, len(refs)),
		Pairs:   make([]Pair, len(refs)),
		Scored:  make([]features.PairFeatures, len(refs)),
	}

	err = forEachChunk(ctx, len(refs), e.config.workers(), func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			ref := refs[i]
			f := e.builder.Build(profilesA[ref.a], profilesB[ref.b])
			set.Scored[i] = f
			set.Rows[i] = f.Vector()
			if e.policy.Label(f) {
				set.Labels[i] = 1
			}
			set.Pairs[i] = Pair{
				AID:            a[ref.a].SourceID,
				BID:            b[ref.b].SourceID,
				CandidateScore: ref.score,
				OverallScore:   f.OverallScore(),
			}
		}
		return nil
	})
	if err != nil {
		return TrainingSet{}, fmt.Errorf("build training pairs: %w", err)
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"pairs":       len(refs),
		"positives":   set.Positives(),
		"policy":      set.Policy,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Built training pairs")

	return set, nil
}

func (e *Engine) profileAll(ctx context.Context, records []models.ProductRecord) ([]profile.Profile, error) {
	out := make([]profile.Profile, len(records))
	err := forEachChunk(ctx, len(records), e.config.workers(), func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = e.profiler.Profile(records[i])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("profile catalog: %w", err)
	}
	return out, nil
}
