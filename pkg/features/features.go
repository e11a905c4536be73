// Package features computes the fixed-schema similarity features of a product
// pair and the overall confidence score derived from them.
package features

// PairFeatures is the feature vector of one product pair. Flags are 0 or 1.
type PairFeatures struct {
	MfrExact       float64 `json:"mfr_exact"`
	MfrJW          float64 `json:"mfr_jw"`
	MfrAliasExact  float64 `json:"mfr_alias_exact"`
	MfrCanonicalJW float64 `json:"mfr_canonical_jw"`
	MfrBestAliasJW float64 `json:"mfr_best_alias_jw"`

	CategoryExact        float64 `json:"category_exact"`
	CategoryClassMatch   float64 `json:"category_class_match"`
	CategoryFamilyMatch  float64 `json:"category_family_match"`
	CategorySegmentMatch float64 `json:"category_segment_match"`

	GTINExact     float64 `json:"gtin_exact"`
	GTINAvailable float64 `json:"gtin_available"`
	GTINMismatch  float64 `json:"gtin_mismatch"`

	PNExactAny        float64 `json:"pn_exact_any"`
	PNEdit            float64 `json:"pn_edit"`
	PNJW              float64 `json:"pn_jw"`
	PNCommonPrefix    float64 `json:"pn_common_prefix"`
	PNCommonSuffix    float64 `json:"pn_common_suffix"`
	PNSuffixOnlyMatch float64 `json:"pn_suffix_only_match"`
	PNMatchWeight     float64 `json:"pn_match_weight"`

	TextJaccard   float64 `json:"text_jaccard"`
	TextTFIDFCos  float64 `json:"text_tfidf_cos"`
	NumberOverlap float64 `json:"number_overlap"`
	UnitOverlap   float64 `json:"unit_overlap"`
}

var featureNames = []string{
	"mfr_exact", "mfr_jw", "mfr_alias_exact", "mfr_canonical_jw", "mfr_best_alias_jw",
	"category_exact", "category_class_match", "category_family_match", "category_segment_match",
	"gtin_exact", "gtin_available", "gtin_mismatch",
	"pn_exact_any", "pn_edit", "pn_jw", "pn_common_prefix", "pn_common_suffix",
	"pn_suffix_only_match", "pn_match_weight",
	"text_jaccard", "text_tfidf_cos", "number_overlap", "unit_overlap",
}

// FeatureNames returns the feature names in vector order.
func FeatureNames() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames)
	return out
}

// Vector returns the features in FeatureNames order.
func (f PairFeatures) Vector() []float64 {
	return []float64{
		f.MfrExact, f.MfrJW, f.MfrAliasExact, f.MfrCanonicalJW, f.MfrBestAliasJW,
		f.CategoryExact, f.CategoryClassMatch, f.CategoryFamilyMatch, f.CategorySegmentMatch,
		f.GTINExact, f.GTINAvailable, f.GTINMismatch,
		f.PNExactAny, f.PNEdit, f.PNJW, f.PNCommonPrefix, f.PNCommonSuffix,
		f.PNSuffixOnlyMatch, f.PNMatchWeight,
		f.TextJaccard, f.TextTFIDFCos, f.NumberOverlap, f.UnitOverlap,
	}
}

// ToMap returns the features keyed by name.
func (f PairFeatures) ToMap() map[string]float64 {
	v := f.Vector()
	out := make(map[string]float64, len(v))
	for i, name := range featureNames {
		out[name] = v[i]
	}
	return out
}

// Breakdown is the per-signal contribution to the overall score.
type Breakdown struct {
	GTIN         float64 `json:"gtin"`
	PartNumber   float64 `json:"part_number"`
	Manufacturer float64 `json:"manufacturer"`
	Text         float64 `json:"text"`
	Category     float64 `json:"category"`
	Synergy      float64 `json:"synergy"`
	Total        float64 `json:"total"`
}

// Breakdown computes each signal's contribution. GTIN agreement contributes
// 0.6, part number 0.4 when exact or 0.3 x Jaro-Winkler, manufacturer 0.25
// when exact or alias-exact or 0.2 x Jaro-Winkler, text 0.15 x TF-IDF cosine
// plus 0.10 x trigram Jaccard, category 0.10/0.08/0.06/0.04 by the deepest
// level matched, and 0.30 when both part number and manufacturer agree. The
// total is capped at 1.0.
func (f PairFeatures) Breakdown() Breakdown {
	var b Breakdown

	if f.GTINExact == 1 {
		b.GTIN = 0.6
	}

	if f.PNExactAny > 0 {
		b.PartNumber = 0.4
	} else {
		b.PartNumber = f.PNJW * 0.3
	}

	mfrExact := f.MfrExact == 1 || f.MfrAliasExact == 1
	if mfrExact {
		b.Manufacturer = 0.25
	} else {
		b.Manufacturer = f.MfrJW * 0.2
	}

	b.Text = f.TextTFIDFCos*0.15 + f.TextJaccard*0.10

	switch {
	case f.CategoryExact == 1:
		b.Category = 0.10
	case f.CategoryClassMatch == 1:
		b.Category = 0.08
	case f.CategoryFamilyMatch == 1:
		b.Category = 0.06
	case f.CategorySegmentMatch == 1:
		b.Category = 0.04
	}

	pnExact := f.PNExactAny == 1 || f.PNMatchWeight >= 0.4
	if pnExact && mfrExact {
		b.Synergy = 0.30
	}

	b.Total = min(b.GTIN+b.PartNumber+b.Manufacturer+b.Text+b.Category+b.Synergy, 1.0)
	return b
}

// OverallScore returns the capped overall confidence score in [0, 1].
func (f PairFeatures) OverallScore() float64 {
	return f.Breakdown().Total
}
