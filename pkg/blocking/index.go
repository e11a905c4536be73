// Package blocking builds the candidate-generation index over one catalog and
// scores the catalog's items against query records.
package blocking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Ramsey-B/fern/pkg/bktree"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/profile"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Options configures index construction and candidate scoring.
type Options struct {
	ManufacturerFuzzyThreshold float64
	MaxEditDistance            int
	MaxCandidates              int
	RareTokenMinDF             int
	RareTokenMaxDFRatio        float64
	Workers                    int
}

// DefaultOptions returns the standard blocking configuration.
func DefaultOptions() Options {
	return Options{
		ManufacturerFuzzyThreshold: 0.90,
		MaxEditDistance:            1,
		MaxCandidates:              200,
		RareTokenMinDF:             1,
		RareTokenMaxDFRatio:        0.15,
		Workers:                    4,
	}
}

// category granularities, finest first
var categoryLevels = [4]int{8, 6, 4, 2}

type manufacturerEntry struct {
	name    string
	aliases []string
	items   *roaring.Bitmap
}

// Index is the read-only blocking index over catalog B. Items are addressed
// by their ordinal position in the catalog.
type Index struct {
	opts     Options
	profiler *profile.Profiler
	profiles []profile.Profile

	byManufacturer map[string]*roaring.Bitmap
	manufacturers  []manufacturerEntry
	byCategory     [4]map[string]*roaring.Bitmap
	byGTIN         map[string]*roaring.Bitmap
	byVariant      map[string]*roaring.Bitmap
	variantTree    *bktree.Tree
	byToken        map[string]*roaring.Bitmap
	rarity         map[string]float64
}

func addTo(m map[string]*roaring.Bitmap, key string, ordinal uint32) {
	if key == "" {
		return
	}
	b, ok := m[key]
	if !ok {
		b = roaring.New()
		m[key] = b
	}
	b.Add(ordinal)
}

// Build profiles every item of catalog on a bounded worker pool and indexes
// the profiles in catalog order.
func Build(ctx context.Context, catalog []models.ProductRecord, profiler *profile.Profiler, opts Options, logger ectologger.Logger) (*Index, error) {
	ctx, span := tracing.StartSpan(ctx, "blocking.Build", tracing.AttrIndexSize.Int(len(catalog)))
	defer span.End()

	start := time.Now()

	profiles := make([]profile.Profile, len(catalog))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Workers))
	for i := range catalog {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			profiles[i] = profiler.Profile(catalog[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("profile catalog: %w", err)
	}

	idx := &Index{
		opts:           opts,
		profiler:       profiler,
		profiles:       profiles,
		byManufacturer: map[string]*roaring.Bitmap{},
		byGTIN:         map[string]*roaring.Bitmap{},
		byVariant:      map[string]*roaring.Bitmap{},
		variantTree:    bktree.New(nil),
		byToken:        map[string]*roaring.Bitmap{},
		rarity:         map[string]float64{},
	}
	for i := range idx.byCategory {
		idx.byCategory[i] = map[string]*roaring.Bitmap{}
	}

	byName := map[string]*roaring.Bitmap{}
	names := map[string][]string{}
	df := map[string]int{}

	for i, p := range profiles {
		ordinal := uint32(i)

		if p.Manufacturer != "" {
			addTo(byName, p.Manufacturer, ordinal)
			if _, ok := names[p.Manufacturer]; !ok {
				names[p.Manufacturer] = p.Aliases
			}
			addTo(idx.byManufacturer, p.Manufacturer, ordinal)
			addTo(idx.byManufacturer, p.Canonical, ordinal)
			for _, alias := range p.Aliases {
				addTo(idx.byManufacturer, alias, ordinal)
			}
		}

		if p.Category != "" {
			for level, n := range categoryLevels {
				addTo(idx.byCategory[level], p.Category[:n], ordinal)
			}
		}

		addTo(idx.byGTIN, p.GTIN, ordinal)

		for _, v := range p.Variants {
			if _, ok := idx.byVariant[v]; !ok {
				idx.variantTree.Add(v)
			}
			addTo(idx.byVariant, v, ordinal)
		}

		for _, tok := range p.Tokens {
			df[tok]++
		}
	}

	sortedNames := make([]string, 0, len(byName))
	for name := range byName {
		sortedNames = append(sortedNames, name)
	}
	sort.Strings(sortedNames)
	idx.manufacturers = make([]manufacturerEntry, len(sortedNames))
	for i, name := range sortedNames {
		idx.manufacturers[i] = manufacturerEntry{name: name, aliases: names[name], items: byName[name]}
	}

	n := len(profiles)
	maxDF := max(1, int(opts.RareTokenMaxDFRatio*float64(n)))
	for tok, c := range df {
		if c >= opts.RareTokenMinDF && c <= maxDF {
			idx.rarity[tok] = rarityWeight(n, c)
		}
	}
	for i, p := range profiles {
		for _, tok := range p.Tokens {
			if _, ok := idx.rarity[tok]; ok {
				addTo(idx.byToken, tok, uint32(i))
			}
		}
	}

	for _, m := range []map[string]*roaring.Bitmap{idx.byManufacturer, idx.byGTIN, idx.byVariant, idx.byToken} {
		for _, b := range m {
			b.RunOptimize()
		}
	}

	elapsed := time.Since(start)
	metrics.IndexBuildDuration.Observe(elapsed.Seconds())
	metrics.IndexedItems.Set(float64(n))

	logger.WithContext(ctx).WithFields(map[string]any{
		"items":         n,
		"manufacturers": len(idx.manufacturers),
		"variants":      idx.variantTree.Len(),
		"rare_tokens":   len(idx.rarity),
		"duration_ms":   elapsed.Milliseconds(),
	}).Info("built blocking index")

	return idx, nil
}

// Len returns the number of indexed items.
func (idx *Index) Len() int {
	return len(idx.profiles)
}

// Profiler returns the profiler the index was built with.
func (idx *Index) Profiler() *profile.Profiler {
	return idx.profiler
}
