// Package partnumber decomposes part numbers into manufacturer prefix, core
// and unit/version suffixes and expands them into OCR-tolerant variants.
package partnumber

import (
	"sort"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Ramsey-B/fern/pkg/canonical"
)

// DefaultPrefixCacheSize bounds the number of manufacturers whose prefixes are memoized.
const DefaultPrefixCacheSize = 512

// Decomposition is the structural reading of a part number.
type Decomposition struct {
	Prefix   string   `json:"prefix,omitempty"`
	Core     string   `json:"core"`
	Suffixes []string `json:"suffixes,omitempty"`
	// GenericCore is the core found behind an unrecognised letter prefix when
	// a manufacturer was supplied. It is empty otherwise.
	GenericCore string `json:"generic_core,omitempty"`
}

// Generator produces part-number variants. Its only state is the bounded
// prefix cache, which does not change results, so it is safe for concurrent use.
type Generator struct {
	prefixCache *lru.Cache[string, map[string]struct{}]
}

// NewGenerator creates a Generator whose prefix cache holds up to cacheSize
// manufacturers. Non-positive sizes use DefaultPrefixCacheSize.
func NewGenerator(cacheSize int) *Generator {
	if cacheSize <= 0 {
		cacheSize = DefaultPrefixCacheSize
	}
	cache, err := lru.New[string, map[string]struct{}](cacheSize)
	if err != nil {
		// only returned for non-positive sizes
		panic(err)
	}
	return &Generator{prefixCache: cache}
}

// Decompose splits pn into prefix, core and suffixes. manufacturer is any
// spelling of the manufacturer name; it is normalized here.
func (g *Generator) Decompose(pn, manufacturer string) Decomposition {
	pn = foldCase(pn)
	if pn == "" {
		return Decomposition{}
	}
	mfr := canonical.NormalizeManufacturer(manufacturer)

	var d Decomposition
	remaining := pn
	if mfr == "" {
		if m, ok := genericPrefix(pn); ok {
			d.Prefix, remaining = m.prefix, m.remaining
		}
	} else if m, ok := manufacturerPrefix(pn, g.knownPrefixes(mfr)); ok {
		d.Prefix, remaining = m.prefix, m.remaining
	} else if m, ok := genericPrefix(pn); ok {
		core, _ := splitSuffixes(m.remaining)
		if core != "" && !IsShortVariant(pn, core) {
			d.GenericCore = core
		}
	}

	d.Core, d.Suffixes = splitSuffixes(remaining)
	return d
}

// Variants returns the sorted, deduplicated variant set of pn. The result
// depends only on pn and manufacturer and is identical for any casing of pn.
func (g *Generator) Variants(pn, manufacturer string) []string {
	original := foldCase(pn)
	if original == "" {
		return nil
	}

	d := g.Decompose(original, manufacturer)
	raw := map[string]struct{}{original: {}}
	add := func(v string) {
		if v != "" {
			raw[v] = struct{}{}
		}
	}

	if d.Core != "" {
		add(d.Core)
		if d.Prefix != "" {
			add(d.Prefix + d.Core)
		}
		for _, s := range d.Suffixes {
			add(d.Core + s)
		}
		if len(d.Suffixes) > 1 {
			add(d.Core + strings.Join(d.Suffixes, ""))
		}
	}
	add(d.GenericCore)

	if d.Prefix == "" && len(d.Suffixes) == 0 {
		current := original
		for changed := true; changed; {
			changed = false
			for _, p := range fallbackSuffixPatterns {
				cleaned := p.ReplaceAllString(current, "")
				if cleaned != current && strings.TrimSpace(cleaned) != "" {
					add(cleaned)
					current = cleaned
					changed = true
					break
				}
			}
		}
	}

	out := map[string]struct{}{}
	for v := range raw {
		for _, form := range normalizedForms(v) {
			if form != "" {
				out[form] = struct{}{}
			}
		}
	}

	variants := make([]string, 0, len(out))
	for v := range out {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	return variants
}

// foldCase trims and uppercases s through its lowercase form so that every
// casing of s, including letters without a reversible case mapping, folds
// to the same string.
func foldCase(s string) string {
	return strings.ToUpper(strings.ToLower(strings.TrimSpace(s)))
}

func removeSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

var (
	separatorRemover = strings.NewReplacer("-", "", "_", "", "/", "", ".", "")
	ocrZero          = strings.NewReplacer("O", "0")
	ocrOne           = strings.NewReplacer("I", "1")
)

// normalizedForms returns v as-is, without whitespace, without separators,
// with O read as 0, and with O read as 0 and I read as 1.
func normalizedForms(v string) []string {
	v = foldCase(v)
	base := removeSpace(v)
	noSep := separatorRemover.Replace(base)
	zero := ocrZero.Replace(noSep)
	one := ocrOne.Replace(zero)
	return []string{v, base, noSep, zero, one}
}

// IsShortVariant reports whether variant is too short, relative to the
// original part number, to be trusted for exact matching.
func IsShortVariant(original, variant string) bool {
	origLen := len([]rune(original))
	varLen := len([]rune(variant))
	switch {
	case origLen <= 5:
		return false
	case origLen <= 8:
		return varLen <= 3
	case origLen <= 12:
		return varLen <= 4
	default:
		return float64(varLen) < float64(origLen)*0.4
	}
}

// MatchWeight grades a part-number match by the longest matching variant
// relative to the average length of the two originals.
func MatchWeight(pnA, pnB string, matching []string) float64 {
	if len(matching) == 0 {
		return 0
	}
	longest := 0
	for _, v := range matching {
		longest = max(longest, len([]rune(v)))
	}
	avg := float64(len([]rune(pnA))+len([]rune(pnB))) / 2
	if avg == 0 {
		return 0
	}

	ratio := float64(longest) / avg
	switch {
	case ratio >= 0.8:
		return 0.4
	case ratio >= 0.6:
		return 0.3
	case ratio >= 0.4:
		return 0.2
	default:
		return 0.1
	}
}
