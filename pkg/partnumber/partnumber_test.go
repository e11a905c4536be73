package partnumber

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intersect(a, b []string) []string {
	set := map[string]struct{}{}
	for _, v := range a {
		set[v] = struct{}{}
	}
	var out []string
	for _, v := range b {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func TestVariants_CaseInvariant(t *testing.T) {
	g := NewGenerator(16)

	for _, pn := range []string{"abc-123-ea", "Hp.CF226x", "agm14nv4123414111", "x"} {
		upper := g.Variants(strings.ToUpper(pn), "Hewlett Packard")
		lower := g.Variants(strings.ToLower(pn), "Hewlett Packard")
		assert.Equal(t, upper, lower, pn)
	}
}

func TestVariants_CaseInvariantIrreversibleLetters(t *testing.T) {
	g := NewGenerator(16)

	for _, pn := range []string{"AİılyazP ǅOl", "ǅ-1234-ea", "straße-9"} {
		variants := g.Variants(pn, "")
		assert.Equal(t, variants, g.Variants(strings.ToLower(pn), ""), pn)
		assert.Equal(t, variants, g.Variants(strings.ToUpper(pn), ""), pn)
		assert.Equal(t, variants, g.Variants(strings.ToTitle(pn), ""), pn)
	}
}

func TestVariants_StripsUnicodeWhitespace(t *testing.T) {
	g := NewGenerator(16)

	variants := g.Variants("14NV\u00a041\v23\f4", "")
	assert.Contains(t, variants, "14NV41234")
}

func TestVariants_ContainsNormalizedForm(t *testing.T) {
	g := NewGenerator(16)

	variants := g.Variants("ab-c/1 O.I", "")
	assert.Contains(t, variants, "ABC1OI")
	assert.Contains(t, variants, "ABC10I")
	assert.Contains(t, variants, "ABC101")
	assert.Contains(t, variants, "AB-C/1 O.I")
}

func TestVariants_SortedAndDeterministic(t *testing.T) {
	g := NewGenerator(16)

	first := g.Variants("AGM-14NV4123414111-EA", "3M")
	second := NewGenerator(1).Variants("AGM-14NV4123414111-EA", "3M")
	assert.Equal(t, first, second)
	assert.IsNonDecreasing(t, first)
}

func TestVariants_Empty(t *testing.T) {
	assert.Nil(t, NewGenerator(0).Variants("   ", "3M"))
}

func TestVariants_ManufacturerPrefix(t *testing.T) {
	g := NewGenerator(16)

	variants := g.Variants("EAT-12345", "Eaton Corporation")
	assert.Contains(t, variants, "12345")
	assert.Contains(t, variants, "EAT12345")
	assert.NotContains(t, variants, "EAT")
}

func TestVariants_SuffixComposition(t *testing.T) {
	g := NewGenerator(16)

	d := g.Decompose("ABC1234 PK EA", "")
	assert.Equal(t, "ABC", d.Prefix)
	assert.Equal(t, "1234", d.Core)
	assert.Equal(t, []string{"PK", "EA"}, d.Suffixes)

	variants := g.Variants("ABC1234 PK EA", "")
	assert.Contains(t, variants, "1234")
	assert.Contains(t, variants, "ABC1234")
	assert.Contains(t, variants, "1234PK")
	assert.Contains(t, variants, "1234EA")
	assert.Contains(t, variants, "1234PKEA")
	assert.NotContains(t, variants, "EA")
	assert.NotContains(t, variants, "PK")
}

func TestVariants_FallbackStripping(t *testing.T) {
	g := NewGenerator(16)

	variants := g.Variants("12 EA", "")
	assert.Contains(t, variants, "12")
	assert.Contains(t, variants, "12EA")
}

func TestVariants_EndToEndIntersection(t *testing.T) {
	g := NewGenerator(16)

	a := g.Variants("AGM-14NV4123414111-EA", "3M")
	b := g.Variants("14NV4123414111", "3M")

	shared := intersect(a, b)
	require.NotEmpty(t, shared)
	assert.Contains(t, shared, "14NV4123414111")
}

func TestDecompose_GenericCoreOnlyWithManufacturer(t *testing.T) {
	g := NewGenerator(16)

	withMfr := g.Decompose("AGM-14NV4123414111-EA", "3M")
	assert.Empty(t, withMfr.Prefix)
	assert.Equal(t, "14NV4123414111-", withMfr.GenericCore)
	assert.Equal(t, []string{"EA"}, withMfr.Suffixes)

	noMfr := g.Decompose("AGM-14NV4123414111-EA", "")
	assert.Equal(t, "AGM", noMfr.Prefix)
	assert.Empty(t, noMfr.GenericCore)
}

func TestManufacturerPrefixes(t *testing.T) {
	prefixes := manufacturerPrefixes("EATON", 2, 6)
	assert.LessOrEqual(t, len(prefixes), maxPrefixKeep)
	assert.Contains(t, prefixes, "ETN")
	for _, p := range prefixes {
		assert.GreaterOrEqual(t, len(p), 2)
		assert.LessOrEqual(t, len(p), 6)
	}
	assert.Equal(t, prefixes, manufacturerPrefixes("EATON", 2, 6))
	assert.Nil(t, manufacturerPrefixes("", 2, 6))
}

func TestIsShortVariant(t *testing.T) {
	tests := []struct {
		name     string
		original string
		variant  string
		short    bool
	}{
		{name: "very short keeps all", original: "AB12", variant: "A", short: false},
		{name: "short drops three", original: "ABC12345", variant: "ABC", short: true},
		{name: "short keeps four", original: "ABC12345", variant: "ABC1", short: false},
		{name: "medium drops four", original: "ABCDEF123456", variant: "ABCD", short: true},
		{name: "long drops under forty percent", original: "ABCDEFGHIJ12345", variant: "ABCDE", short: true},
		{name: "long keeps forty percent", original: "ABCDEFGHIJ12345", variant: "ABCDEF", short: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.short, IsShortVariant(tt.original, tt.variant))
		})
	}
}

func TestIsShortVariant_NeverShortWhenAtLeastOriginalLength(t *testing.T) {
	originals := []string{"A", "ABCDEF", "ABCDEFGHIJ", "ABCDEFGHIJKLMNOPQRST"}
	for _, o := range originals {
		for extra := 0; extra < 3; extra++ {
			assert.False(t, IsShortVariant(o, o+strings.Repeat("X", extra)), o)
		}
	}
}

func TestIsShortVariant_Monotonic(t *testing.T) {
	original := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	wasShort := true
	for l := 0; l <= len(original); l++ {
		short := IsShortVariant(original, original[:l])
		if !wasShort {
			assert.False(t, short, "length %d", l)
		}
		wasShort = short
	}
}

func TestMatchWeight(t *testing.T) {
	assert.Equal(t, 0.0, MatchWeight("ABC", "ABC", nil))
	assert.Equal(t, 0.4, MatchWeight("ABCDE", "ABCDE", []string{"ABCDE"}))
	assert.Equal(t, 0.3, MatchWeight("ABCDEFGHIJ", "ABCDEFGHIJ", []string{"ABCDEF"}))
	assert.Equal(t, 0.2, MatchWeight("ABCDEFGHIJ", "ABCDEFGHIJ", []string{"ABCD", "AB"}))
	assert.Equal(t, 0.1, MatchWeight("ABCDEFGHIJ", "ABCDEFGHIJ", []string{"AB"}))
	assert.Equal(t, 0.0, MatchWeight("", "", []string{"AB"}))
}

func TestIsSuffixOnlyDifference(t *testing.T) {
	tests := []struct {
		a, b     string
		expected bool
	}{
		{a: "14NV41", b: "14NV41EA", expected: true},
		{a: "14NV41-PK", b: "14NV41", expected: true},
		{a: "ABC123", b: "ABC123 REV2", expected: true},
		{a: "ABC123", b: "ABC123B", expected: true},
		{a: "ABC123", b: "ABC1234", expected: false},
		{a: "ABC123", b: "ABC123", expected: false},
		{a: "", b: "X", expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSuffixOnlyDifference(tt.a, tt.b))
		})
	}
}
