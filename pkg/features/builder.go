package features

import (
	"math"
	"strings"

	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/partnumber"
	"github.com/Ramsey-B/fern/pkg/profile"
	"github.com/Ramsey-B/fern/pkg/similarity"
)

const (
	suffixOnlyScore   = 0.9
	suffixOnlyMaxEdit = 5
	suffixOnlyMinJW   = 0.95
)

// Builder computes pair features from record profiles. It is safe for concurrent use.
type Builder struct {
	profiler *profile.Profiler
}

// NewBuilder creates a Builder that profiles raw records with profiler.
func NewBuilder(profiler *profile.Profiler) *Builder {
	return &Builder{profiler: profiler}
}

// BuildRecords profiles both records and computes their features.
func (b *Builder) BuildRecords(a, r models.ProductRecord) PairFeatures {
	return b.Build(b.profiler.Profile(a), b.profiler.Profile(r))
}

// Build computes the features of an already profiled pair.
func (b *Builder) Build(a, r profile.Profile) PairFeatures {
	var f PairFeatures
	b.manufacturer(&f, a, r)
	category(&f, a.Category, r.Category)
	gtin(&f, a.GTIN, r.GTIN)
	partNumber(&f, a, r)
	text(&f, a.Text, r.Text)
	metrics.PairsScored.Inc()
	return f
}

func (b *Builder) manufacturer(f *PairFeatures, a, r profile.Profile) {
	if a.Manufacturer == "" || r.Manufacturer == "" {
		return
	}

	aliasExact := a.Canonical != "" && a.Canonical == r.Canonical
	if aliasExact {
		f.MfrAliasExact = 1
	}

	if a.Manufacturer == r.Manufacturer {
		f.MfrExact = 1
		f.MfrJW = 1
		f.MfrCanonicalJW = 1
		f.MfrBestAliasJW = 1
		return
	}

	f.MfrJW = similarity.JaroWinkler(a.Manufacturer, r.Manufacturer)
	if aliasExact {
		f.MfrCanonicalJW = 1
		f.MfrBestAliasJW = 1
		return
	}

	if a.Canonical != "" && r.Canonical != "" {
		f.MfrCanonicalJW = similarity.JaroWinkler(a.Canonical, r.Canonical)
	}
	if b.profiler.Registry().Len() > 0 {
		f.MfrBestAliasJW = bestAliasJW(a.Aliases, r.Aliases)
	}
}

// bestAliasJW checks for a shared alias before comparing every alias pair.
func bestAliasJW(a, b []string) float64 {
	set := make(map[string]struct{}, len(a))
	for _, x := range a {
		set[x] = struct{}{}
	}
	for _, y := range b {
		if _, ok := set[y]; ok {
			return 1
		}
	}
	best := 0.0
	for _, x := range a {
		for _, y := range b {
			best = math.Max(best, similarity.JaroWinkler(x, y))
		}
	}
	return best
}

// category expects codes already validated as eight digits, or empty.
func category(f *PairFeatures, a, b string) {
	if a == "" || b == "" {
		return
	}
	if a == b {
		f.CategoryExact = 1
	}
	if a[:6] == b[:6] {
		f.CategoryClassMatch = 1
	}
	if a[:4] == b[:4] {
		f.CategoryFamilyMatch = 1
	}
	if a[:2] == b[:2] {
		f.CategorySegmentMatch = 1
	}
}

// gtin expects validated identifiers, or empty.
func gtin(f *PairFeatures, a, b string) {
	if a != "" || b != "" {
		f.GTINAvailable = 1
	}
	if a == "" || b == "" {
		return
	}
	if a == b {
		f.GTINExact = 1
	} else {
		f.GTINMismatch = 1
	}
}

func partNumber(f *PairFeatures, a, b profile.Profile) {
	f.PNEdit = 1
	if len(a.Variants) == 0 || len(b.Variants) == 0 {
		return
	}

	inB := make(map[string]struct{}, len(b.Variants))
	for _, v := range b.Variants {
		inB[v] = struct{}{}
	}
	var matching []string
	for _, v := range a.Variants {
		if _, ok := inB[v]; ok {
			matching = append(matching, v)
		}
	}
	if len(matching) > 0 {
		f.PNExactAny = 1
	}
	f.PNMatchWeight = partnumber.MatchWeight(a.PartNumber, b.PartNumber, matching)

	bestEdit := math.MaxInt
	bestJW := 0.0
	prefix, suffix := 0, 0
	for _, x := range a.Variants {
		for _, y := range b.Variants {
			d := similarity.LevenshteinDistance(x, y)
			jw := similarity.JaroWinkler(x, y)
			if partnumber.IsSuffixOnlyDifference(x, y) {
				f.PNSuffixOnlyMatch = suffixOnlyScore
				if d <= suffixOnlyMaxEdit {
					d = 0
					jw = math.Max(jw, suffixOnlyMinJW)
				}
			}
			bestEdit = min(bestEdit, d)
			bestJW = math.Max(bestJW, jw)
			prefix = max(prefix, similarity.CommonPrefixLen(x, y))
			suffix = max(suffix, similarity.CommonSuffixLen(x, y))
		}
	}
	f.PNEdit = float64(bestEdit)
	f.PNJW = bestJW
	f.PNCommonPrefix = float64(prefix)
	f.PNCommonSuffix = float64(suffix)
}

func text(f *PairFeatures, a, b string) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return
	}
	f.TextJaccard = similarity.Jaccard(similarity.CharTrigrams(a), similarity.CharTrigrams(b))
	f.TextTFIDFCos = similarity.TFIDFCosine(a, b)
	f.NumberOverlap = float64(similarity.Overlap(similarity.NumberTokens(a), similarity.NumberTokens(b)))
	f.UnitOverlap = float64(similarity.Overlap(similarity.UnitTokens(a), similarity.UnitTokens(b)))
}
