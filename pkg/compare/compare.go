// Package compare explains how two identified products score against each
// other, field by field.
package compare

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/cache"
	"github.com/Ramsey-B/fern/pkg/features"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/profile"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// PartNumberComparison compares part numbers through their variant sets.
type PartNumberComparison struct {
	A            string   `json:"a_value"`
	B            string   `json:"b_value"`
	AVariants    []string `json:"a_variants"`
	BVariants    []string `json:"b_variants"`
	Matching     []string `json:"matching_variants"`
	ExactMatch   bool     `json:"exact_match"`
	SuffixOnly   bool     `json:"suffix_only"`
	JaroWinkler  float64  `json:"jaro_winkler"`
	MatchWeight  float64  `json:"match_weight"`
	Contribution float64  `json:"score_contribution"`
}

// ManufacturerComparison compares manufacturer names.
type ManufacturerComparison struct {
	A            string  `json:"a_value"`
	B            string  `json:"b_value"`
	ANormalized  string  `json:"a_normalized"`
	BNormalized  string  `json:"b_normalized"`
	ACanonical   string  `json:"a_canonical,omitempty"`
	BCanonical   string  `json:"b_canonical,omitempty"`
	ExactMatch   bool    `json:"exact_match"`
	AliasMatch   bool    `json:"alias_match"`
	Similarity   float64 `json:"similarity"`
	Contribution float64 `json:"score_contribution"`
}

// TextComparison compares titles and descriptions.
type TextComparison struct {
	ATitle        string  `json:"a_title"`
	BTitle        string  `json:"b_title"`
	ADescription  string  `json:"a_description"`
	BDescription  string  `json:"b_description"`
	Jaccard       float64 `json:"jaccard"`
	TFIDFCosine   float64 `json:"tfidf_cosine"`
	NumberOverlap float64 `json:"number_overlap"`
	UnitOverlap   float64 `json:"unit_overlap"`
	Contribution  float64 `json:"score_contribution"`
}

// CategoryComparison compares category codes.
type CategoryComparison struct {
	A            string  `json:"a_value"`
	B            string  `json:"b_value"`
	Level        string  `json:"level"`
	Contribution float64 `json:"score_contribution"`
}

// GTINComparison compares trade identifiers. It is present only when both
// products carry a valid GTIN.
type GTINComparison struct {
	A            string  `json:"a_value"`
	B            string  `json:"b_value"`
	ExactMatch   bool    `json:"exact_match"`
	Mismatch     bool    `json:"mismatch"`
	Contribution float64 `json:"score_contribution"`
}

// Comparison is the full explanation of a product pair.
type Comparison struct {
	ProductA     models.ProductRecord   `json:"product_a"`
	ProductB     models.ProductRecord   `json:"product_b"`
	PartNumber   PartNumberComparison   `json:"part_number"`
	Manufacturer ManufacturerComparison `json:"manufacturer"`
	Text         TextComparison         `json:"text"`
	Category     CategoryComparison     `json:"category"`
	GTIN         *GTINComparison        `json:"gtin,omitempty"`
	Synergy      float64                `json:"synergy_boost"`
	Breakdown    features.Breakdown     `json:"breakdown"`
	Features     map[string]float64     `json:"features"`
	OverallScore float64                `json:"overall_score"`
}

// Service compares products resolved from a RecordSource
type Service struct {
	source   RecordSource
	profiler *profile.Profiler
	builder  *features.Builder
	cache    cache.Cache
	logger   ectologger.Logger
}

// NewService creates a comparison service. cache may be nil.
func NewService(source RecordSource, profiler *profile.Profiler, c cache.Cache, logger ectologger.Logger) *Service {
	return &Service{
		source:   source,
		profiler: profiler,
		builder:  features.NewBuilder(profiler),
		cache:    c,
		logger:   logger,
	}
}

func cacheKey(idA, idB string) string {
	return fmt.Sprintf("compare:%d:%s:%s", len(idA), idA, idB)
}

// Compare resolves both ids and explains their comparison
func (s *Service) Compare(ctx context.Context, idA, idB string) (*Comparison, error) {
	ctx, span := tracing.StartSpan(ctx, "compare.Service.Compare",
		tracing.AttrProductA.String(idA),
		tracing.AttrProductB.String(idB),
	)
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"product_a": idA,
		"product_b": idB,
	})

	key := cacheKey(idA, idB)
	if s.cache != nil {
		if b, ok, err := s.cache.Get(ctx, key); err != nil {
			log.WithError(err).Warn("Comparison cache read failed")
		} else if ok {
			var c Comparison
			if err := json.Unmarshal(b, &c); err == nil {
				metrics.ComparisonsTotal.WithLabelValues("cached").Inc()
				return &c, nil
			}
			log.Warn("Discarding unreadable cached comparison")
		}
	}

	a, err := s.source.GetProduct(ctx, idA)
	if err != nil {
		metrics.ComparisonsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}
	b, err := s.source.GetProduct(ctx, idB)
	if err != nil {
		metrics.ComparisonsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	c := s.ComparePair(*a, *b)

	if s.cache != nil {
		if payload, err := json.Marshal(c); err != nil {
			log.WithError(err).Warn("Failed to encode comparison for cache")
		} else if err := s.cache.Set(ctx, key, payload); err != nil {
			log.WithError(err).Warn("Comparison cache write failed")
		}
	}

	metrics.ComparisonsTotal.WithLabelValues("ok").Inc()
	log.WithField("overall_score", c.OverallScore).Debug("Compared products")
	return c, nil
}

// ComparePair explains the comparison of two records.
func (s *Service) ComparePair(a, b models.ProductRecord) *Comparison {
	pa, pb := s.profiler.Profile(a), s.profiler.Profile(b)
	f := s.builder.Build(pa, pb)
	bd := f.Breakdown()

	c := &Comparison{
		ProductA: a,
		ProductB: b,
		PartNumber: PartNumberComparison{
			A:            a.PartNumber,
			B:            b.PartNumber,
			AVariants:    pa.Variants,
			BVariants:    pb.Variants,
			Matching:     intersect(pa.Variants, pb.Variants),
			ExactMatch:   f.PNExactAny == 1,
			SuffixOnly:   f.PNSuffixOnlyMatch > 0,
			JaroWinkler:  f.PNJW,
			MatchWeight:  f.PNMatchWeight,
			Contribution: bd.PartNumber,
		},
		Manufacturer: ManufacturerComparison{
			A:            a.Manufacturer,
			B:            b.Manufacturer,
			ANormalized:  pa.Manufacturer,
			BNormalized:  pb.Manufacturer,
			ACanonical:   pa.Canonical,
			BCanonical:   pb.Canonical,
			ExactMatch:   f.MfrExact == 1,
			AliasMatch:   f.MfrAliasExact == 1,
			Similarity:   f.MfrJW,
			Contribution: bd.Manufacturer,
		},
		Text: TextComparison{
			ATitle:        a.Title,
			BTitle:        b.Title,
			ADescription:  a.Description,
			BDescription:  b.Description,
			Jaccard:       f.TextJaccard,
			TFIDFCosine:   f.TextTFIDFCos,
			NumberOverlap: f.NumberOverlap,
			UnitOverlap:   f.UnitOverlap,
			Contribution:  bd.Text,
		},
		Category: CategoryComparison{
			A:            a.CategoryCode,
			B:            b.CategoryCode,
			Level:        categoryLevel(f),
			Contribution: bd.Category,
		},
		Synergy:      bd.Synergy,
		Breakdown:    bd,
		Features:     f.ToMap(),
		OverallScore: bd.Total,
	}
	if c.Manufacturer.ExactMatch || c.Manufacturer.AliasMatch {
		c.Manufacturer.Similarity = 1
	}
	if pa.GTIN != "" && pb.GTIN != "" {
		c.GTIN = &GTINComparison{
			A:            a.GTIN,
			B:            b.GTIN,
			ExactMatch:   f.GTINExact == 1,
			Mismatch:     f.GTINMismatch == 1,
			Contribution: bd.GTIN,
		}
	}
	return c
}

func categoryLevel(f features.PairFeatures) string {
	switch {
	case f.CategoryExact == 1:
		return "commodity"
	case f.CategoryClassMatch == 1:
		return "class"
	case f.CategoryFamilyMatch == 1:
		return "family"
	case f.CategorySegmentMatch == 1:
		return "segment"
	}
	return "none"
}

// intersect returns the common elements of two sorted slices.
func intersect(a, b []string) []string {
	out := []string{}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
