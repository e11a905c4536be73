package blocking

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Ramsey-B/fern/pkg/profile"
	"github.com/Ramsey-B/fern/pkg/similarity"
)

// candidate signal weights
const (
	gtinWeight          = 10.0
	manufacturerWeight  = 1.0
	aliasWeight         = 0.8
	aliasFuzzyFactor    = 0.9
	variantExactWeight  = 3.0
	variantFuzzyBase    = 2.0
	variantFuzzyPerEdit = 0.5
	rareTokenWeight     = 0.5
	synergyWeight       = 5.0
)

var categoryWeights = [4]float64{3.0, 2.0, 1.5, 1.0}

// Candidate is an indexed item scored against a query record.
type Candidate struct {
	Ordinal int     `json:"ordinal"`
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
}

func rarityWeight(n, df int) float64 {
	return math.Log(float64(n+1)/float64(df+1)) + 1.0
}

type fuzzyHit struct {
	entry int
	score float64
}

// Searcher scores query profiles against an index. A Searcher keeps
// per-query scratch state and memoized fuzzy manufacturer matches, so each
// worker needs its own; the index itself is shared.
type Searcher struct {
	idx    *Index
	scores map[uint32]float64
	memo   map[string][]fuzzyHit
}

// NewSearcher creates a Searcher over idx.
func (idx *Index) NewSearcher() *Searcher {
	return &Searcher{
		idx:    idx,
		scores: map[uint32]float64{},
		memo:   map[string][]fuzzyHit{},
	}
}

func (s *Searcher) addAll(b *roaring.Bitmap, w float64, matched *roaring.Bitmap) {
	if b == nil {
		return
	}
	it := b.Iterator()
	for it.HasNext() {
		ordinal := it.Next()
		s.scores[ordinal] += w
		if matched != nil {
			matched.Add(ordinal)
		}
	}
}

// Search returns the top candidates for q ordered by descending score and
// then by ordinal. Items with no positive score are omitted.
func (s *Searcher) Search(q profile.Profile) []Candidate {
	idx := s.idx
	clear(s.scores)
	mfrMatched := roaring.New()
	pnMatched := roaring.New()

	if q.GTIN != "" {
		s.addAll(idx.byGTIN[q.GTIN], gtinWeight, nil)
	}

	if q.Manufacturer != "" {
		s.addAll(idx.byManufacturer[q.Manufacturer], manufacturerWeight, mfrMatched)
		if q.Canonical != "" && q.Canonical != q.Manufacturer {
			s.addAll(idx.byManufacturer[q.Canonical], manufacturerWeight, mfrMatched)
		}
		for _, alias := range q.Aliases {
			if alias != q.Manufacturer {
				s.addAll(idx.byManufacturer[alias], aliasWeight, mfrMatched)
			}
		}
	}

	if q.Category != "" {
		for level, n := range categoryLevels {
			s.addAll(idx.byCategory[level][q.Category[:n]], categoryWeights[level], nil)
		}
	}

	if q.Manufacturer != "" {
		for _, hit := range s.fuzzyManufacturer(q) {
			s.addAll(idx.manufacturers[hit.entry].items, hit.score, mfrMatched)
		}
	}

	for _, v := range q.Variants {
		s.addAll(idx.byVariant[v], variantExactWeight, pnMatched)
		for _, m := range idx.variantTree.Search(v, idx.opts.MaxEditDistance) {
			w := math.Max(0, variantFuzzyBase-variantFuzzyPerEdit*float64(m.Distance))
			s.addAll(idx.byVariant[m.Term], w, pnMatched)
		}
	}

	for _, tok := range q.Tokens {
		if _, ok := idx.rarity[tok]; ok {
			s.addAll(idx.byToken[tok], rareTokenWeight, nil)
		}
	}

	s.addAll(roaring.And(mfrMatched, pnMatched), synergyWeight, nil)

	out := make([]Candidate, 0, len(s.scores))
	for ordinal, score := range s.scores {
		if score <= 0 {
			continue
		}
		out = append(out, Candidate{Ordinal: int(ordinal), ID: idx.profiles[ordinal].Record.SourceID, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	if limit := idx.opts.MaxCandidates; limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// fuzzyManufacturer compares q's manufacturer with every distinct indexed
// manufacturer name. A direct Jaro-Winkler at or above the threshold scores
// its similarity; when an alias registry is loaded the best alias-pair
// similarity at or above the threshold scores 0.9 of itself. Results are
// memoized per query manufacturer.
func (s *Searcher) fuzzyManufacturer(q profile.Profile) []fuzzyHit {
	if hits, ok := s.memo[q.Manufacturer]; ok {
		return hits
	}

	threshold := s.idx.opts.ManufacturerFuzzyThreshold
	useAliases := s.idx.profiler.Registry().Len() > 0

	var queryAliases map[string]struct{}
	if useAliases {
		queryAliases = make(map[string]struct{}, len(q.Aliases))
		for _, a := range q.Aliases {
			queryAliases[a] = struct{}{}
		}
	}

	var hits []fuzzyHit
	for i, entry := range s.idx.manufacturers {
		if jw := similarity.JaroWinkler(q.Manufacturer, entry.name); jw >= threshold {
			hits = append(hits, fuzzyHit{entry: i, score: jw})
		}
		if !useAliases {
			continue
		}
		if best := bestAliasSimilarity(queryAliases, q.Aliases, entry.aliases); best >= threshold {
			hits = append(hits, fuzzyHit{entry: i, score: best * aliasFuzzyFactor})
		}
	}

	s.memo[q.Manufacturer] = hits
	return hits
}

// bestAliasSimilarity returns the best Jaro-Winkler similarity between any
// pair of aliases, short-circuiting to 1.0 when the sets intersect.
func bestAliasSimilarity(set map[string]struct{}, a, b []string) float64 {
	for _, alias := range b {
		if _, ok := set[alias]; ok {
			return 1.0
		}
	}
	best := 0.0
	for _, x := range a {
		for _, y := range b {
			if jw := similarity.JaroWinkler(x, y); jw > best {
				best = jw
			}
		}
	}
	return best
}
