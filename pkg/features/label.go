package features

// LabelPolicy decides the training label of a scored pair.
type LabelPolicy interface {
	Name() string
	Label(f PairFeatures) bool
}

// HeuristicLabelPolicy labels a pair positive when the part number matches
// exactly and either the category matches or the manufacturers are nearly
// identical, when the texts are very similar within the same category class,
// or when the category matches and the manufacturers are similar.
//
// The thresholds were tuned by hand and have not been validated against
// labeled data. Treat its output as weak supervision.
type HeuristicLabelPolicy struct {
	StrictManufacturerJW float64
	TextCosine           float64
	LooseManufacturerJW  float64
}

// DefaultLabelPolicy returns the heuristic policy with its standard thresholds.
func DefaultLabelPolicy() HeuristicLabelPolicy {
	return HeuristicLabelPolicy{
		StrictManufacturerJW: 0.95,
		TextCosine:           0.8,
		LooseManufacturerJW:  0.8,
	}
}

func (p HeuristicLabelPolicy) Name() string {
	return "heuristic"
}

func (p HeuristicLabelPolicy) Label(f PairFeatures) bool {
	categoryExact := f.CategoryExact == 1
	return (f.PNExactAny == 1 && (categoryExact || f.MfrJW > p.StrictManufacturerJW)) ||
		(f.TextTFIDFCos > p.TextCosine && f.CategoryClassMatch == 1) ||
		(categoryExact && f.MfrJW > p.LooseManufacturerJW)
}
