package similarity

import (
	"regexp"
	"strings"
)

var (
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]+`)
	numberToken  = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	unitPatterns = buildUnitPatterns([]string{"mm", "cm", "m", "inch", "in", "gb", "tb", "mb", "ghz", "mhz", "w", "kw", "v", "ma"})
)

type unitPattern struct {
	unit string
	re   *regexp.Regexp
}

func buildUnitPatterns(units []string) []unitPattern {
	out := make([]unitPattern, len(units))
	for i, u := range units {
		out[i] = unitPattern{unit: u, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(u) + `\b`)}
	}
	return out
}

// Set is a set of strings.
type Set map[string]struct{}

// CharTrigrams returns the character trigrams of s after lower-casing and
// collapsing every non-alphanumeric run to a single space. Inputs shorter
// than three characters yield themselves as the only member.
func CharTrigrams(s string) Set {
	s = strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(s), " "))
	out := Set{}
	if s == "" {
		return out
	}
	if len(s) < 3 {
		out[s] = struct{}{}
		return out
	}
	for i := 0; i+3 <= len(s); i++ {
		out[s[i:i+3]] = struct{}{}
	}
	return out
}

// Jaccard returns |a∩b| / |a∪b|. Two empty sets are identical (1.0); an
// empty set against a non-empty one scores 0.0.
func Jaccard(a, b Set) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// NumberTokens returns the integer and decimal numbers that appear in s
func NumberTokens(s string) Set {
	out := Set{}
	for _, n := range numberToken.FindAllString(s, -1) {
		out[n] = struct{}{}
	}
	return out
}

// UnitTokens returns the units of measure from a fixed vocabulary that appear
// as whole words in the lower-cased s.
func UnitTokens(s string) Set {
	s = strings.ToLower(s)
	out := Set{}
	for _, u := range unitPatterns {
		if u.re.MatchString(s) {
			out[u.unit] = struct{}{}
		}
	}
	return out
}

// Overlap returns |a∩b|
func Overlap(a, b Set) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
