// Package profile derives the normalized matching keys of a product record.
// The same derivation feeds the blocking index and the pair feature builder.
package profile

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Ramsey-B/fern/pkg/aliases"
	"github.com/Ramsey-B/fern/pkg/canonical"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/partnumber"
)

// textToken matches rare-token candidates: runs of letters, digits and the
// part-number punctuation + - _ / . of at least two characters.
var textToken = regexp.MustCompile(`[a-z0-9+\-_/.]{2,}`)

// Profile holds the derived keys of one record.
type Profile struct {
	Record models.ProductRecord

	// Manufacturer is the normalized manufacturer name.
	Manufacturer string
	// Canonical is the registry's canonical key, empty when unknown.
	Canonical string
	// Aliases are all normalized names of the manufacturer, sorted.
	Aliases []string

	// Category is the category code when it is exactly 8 digits, else empty.
	Category string
	// GTIN is the upper-cased trade identifier when it is not a placeholder, else empty.
	GTIN string

	// PartNumber is the trimmed original part number.
	PartNumber string
	// Variants is the sorted variant set, without short variants when filtering is on.
	Variants []string

	// Text is the lower-cased title and description.
	Text string
	// Tokens are the distinct textToken matches of Text, sorted.
	Tokens []string
}

// Profiler derives profiles. It is safe for concurrent use.
type Profiler struct {
	registry            *aliases.Registry
	generator           *partnumber.Generator
	filterShortVariants bool
}

// NewProfiler creates a Profiler. A nil registry behaves as an empty one.
func NewProfiler(registry *aliases.Registry, generator *partnumber.Generator, filterShortVariants bool) *Profiler {
	if registry == nil {
		registry = aliases.Empty()
	}
	if generator == nil {
		generator = partnumber.NewGenerator(0)
	}
	return &Profiler{registry: registry, generator: generator, filterShortVariants: filterShortVariants}
}

// Registry returns the alias registry used for manufacturer resolution.
func (p *Profiler) Registry() *aliases.Registry {
	return p.registry
}

// Generator returns the part-number variant generator.
func (p *Profiler) Generator() *partnumber.Generator {
	return p.generator
}

// Profile derives the matching keys of r.
func (p *Profiler) Profile(r models.ProductRecord) Profile {
	out := Profile{
		Record:       r,
		Manufacturer: canonical.NormalizeManufacturer(r.Manufacturer),
		Category:     ValidCategory(r.CategoryCode),
		GTIN:         ValidGTIN(r.GTIN),
		PartNumber:   strings.TrimSpace(r.PartNumber),
		Text:         strings.ToLower(r.Title + " " + r.Description),
	}

	if out.Manufacturer != "" {
		if c, ok := p.registry.CanonicalFor(r.Manufacturer); ok {
			out.Canonical = c
		}
		out.Aliases = p.registry.AllAliasesFor(r.Manufacturer)
	}

	for _, v := range p.generator.Variants(out.PartNumber, out.Manufacturer) {
		if p.filterShortVariants && partnumber.IsShortVariant(out.PartNumber, v) {
			continue
		}
		out.Variants = append(out.Variants, v)
	}

	out.Tokens = distinctSorted(textToken.FindAllString(out.Text, -1))
	return out
}

// ValidCategory returns the trimmed code when it is exactly eight ASCII digits.
func ValidCategory(code string) string {
	code = strings.TrimSpace(code)
	if len(code) != 8 {
		return ""
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ""
		}
	}
	return code
}

// ValidGTIN returns the trimmed, upper-cased GTIN unless it is empty or a
// placeholder ("0", "NAN", "NONE").
func ValidGTIN(gtin string) string {
	gtin = strings.ToUpper(strings.TrimSpace(gtin))
	switch gtin {
	case "", "0", "NAN", "NONE":
		return ""
	}
	return gtin
}

func distinctSorted(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := set[s]; ok {
			continue
		}
		set[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
