// Package matching generates candidate pairs between two product catalogs and
// scores them for training and linking.
package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"golang.org/x/sync/errgroup"

	"github.com/Ramsey-B/fern/pkg/aliases"
	"github.com/Ramsey-B/fern/pkg/blocking"
	"github.com/Ramsey-B/fern/pkg/features"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/partnumber"
	"github.com/Ramsey-B/fern/pkg/profile"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Engine matches catalogs against each other. It holds no per-run state and
// is safe for concurrent use.
type Engine struct {
	logger   ectologger.Logger
	config   Config
	profiler *profile.Profiler
	builder  *features.Builder
	policy   features.LabelPolicy
}

// NewEngine creates a new matching engine over registry. A nil registry
// matches without manufacturer aliases.
func NewEngine(config Config, registry *aliases.Registry, logger ectologger.Logger) *Engine {
	profiler := profile.NewProfiler(registry, partnumber.NewGenerator(config.PrefixCacheSize), config.FilterShortVariants)
	return &Engine{
		logger:   logger,
		config:   config,
		profiler: profiler,
		builder:  features.NewBuilder(profiler),
		policy:   features.DefaultLabelPolicy(),
	}
}

// WithLabelPolicy returns a copy of the engine that labels training pairs with policy.
func (e *Engine) WithLabelPolicy(policy features.LabelPolicy) *Engine {
	cp := *e
	cp.policy = policy
	return &cp
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Profiler returns the profiler shared by the engine's index and features.
func (e *Engine) Profiler() *profile.Profiler {
	return e.profiler
}

// ItemCandidates holds the ranked candidates of one catalog A item.
type ItemCandidates struct {
	Index      int                  `json:"index"`
	ID         string               `json:"id"`
	Candidates []blocking.Candidate `json:"candidates"`
}

// CandidateSet is the result of a candidate generation run, in catalog A order.
type CandidateSet struct {
	Items []ItemCandidates `json:"items"`
}

// IDs returns the candidate catalog B ids of every catalog A item, keyed by
// item id. Items without candidates map to an empty list. When catalog A
// repeats an id, the first occurrence is kept.
func (c CandidateSet) IDs() map[string][]string {
	out := make(map[string][]string, len(c.Items))
	for _, item := range c.Items {
		if _, ok := out[item.ID]; ok {
			continue
		}
		ids := make([]string, len(item.Candidates))
		for i, cand := range item.Candidates {
			ids[i] = cand.ID
		}
		out[item.ID] = ids
	}
	return out
}

// Pairs returns the total number of candidate pairs.
func (c CandidateSet) Pairs() int {
	n := 0
	for _, item := range c.Items {
		n += len(item.Candidates)
	}
	return n
}

// BuildIndex builds the blocking index over catalog b.
func (e *Engine) BuildIndex(ctx context.Context, b []models.ProductRecord) (*blocking.Index, error) {
	return blocking.Build(ctx, b, e.profiler, e.config.BlockingOptions(), e.logger)
}

// GenerateCandidates indexes catalog b and returns the ranked candidates in b
// of every item of catalog a.
func (e *Engine) GenerateCandidates(ctx context.Context, a, b []models.ProductRecord) (CandidateSet, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.GenerateCandidates")
	defer span.End()

	idx, err := e.BuildIndex(ctx, b)
	if err != nil {
		return CandidateSet{}, err
	}
	return e.Candidates(ctx, idx, a)
}

// Candidates searches idx for every item of catalog a. Queries are profiled
// with the index's own profiler so both sides share one alias registry and
// variant generator. Each worker owns a searcher and a contiguous slice of a,
// so results do not depend on the worker count.
func (e *Engine) Candidates(ctx context.Context, idx *blocking.Index, a []models.ProductRecord) (CandidateSet, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.Candidates",
		tracing.AttrCatalogSize.Int(len(a)),
		tracing.AttrIndexSize.Int(idx.Len()),
	)
	defer span.End()

	start := time.Now()
	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"catalog_a": len(a),
		"catalog_b": idx.Len(),
		"workers":   e.config.workers(),
	})
	log.Debug("Generating candidates")

	profiler := idx.Profiler()
	items := make([]ItemCandidates, len(a))
	err := forEachChunk(ctx, len(a), e.config.workers(), func(ctx context.Context, lo, hi int) error {
		searcher := idx.NewSearcher()
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i] = ItemCandidates{
				Index:      i,
				ID:         a[i].SourceID,
				Candidates: searcher.Search(profiler.Profile(a[i])),
			}
		}
		return nil
	})
	if err != nil {
		tracing.Fail(span, err)
		return CandidateSet{}, fmt.Errorf("generate candidates: %w", err)
	}

	set := CandidateSet{Items: items}
	pairs := set.Pairs()
	span.SetAttributes(tracing.AttrCandidatePairs.Int(pairs))
	elapsed := time.Since(start)
	metrics.CandidatesGenerated.Add(float64(pairs))
	metrics.CandidateRunDuration.Observe(elapsed.Seconds())

	log.WithFields(map[string]any{
		"pairs":       pairs,
		"duration_ms": elapsed.Milliseconds(),
	}).Info("Generated candidates")

	return set, nil
}

// BuildPairFeatures computes the features of a single pair of records.
func (e *Engine) BuildPairFeatures(a, b models.ProductRecord) features.PairFeatures {
	return e.builder.BuildRecords(a, b)
}

// forEachChunk splits [0, n) into at most workers contiguous chunks and runs
// fn on each chunk concurrently.
func forEachChunk(ctx context.Context, n, workers int, fn func(ctx context.Context, lo, hi int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	workers = min(max(1, workers), n)
	size := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		g.Go(func() error {
			return fn(gctx, lo, hi)
		})
	}
	return g.Wait()
}
