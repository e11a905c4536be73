package partnumber

import (
	"regexp"
	"strings"
)

const minCoreLen = 3

// trailing unit, packaging, version and condition tokens, tried in order
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*?)\s*(EA|EACH|PCS|PIECES?|PK|PACK|UNIT|UNITS?|CT|COUNT|QTY|QUANTITY)\s*$`),
	regexp.MustCompile(`^(.*?)\s*(BULK|RETAIL|CONSUMER|COMMERCIAL|STD|STANDARD)\s*$`),
	regexp.MustCompile(`^(.*?)\s*(REV\d{1,3}|VERSION\d{1,3}|V\d{1,3}|R\d{1,3})\s*$`),
	regexp.MustCompile(`^(.*?)\s*(NEW|OLD|ORIGINAL|REPLACEMENT|REFURB)\s*$`),
}

// separator-aware fallbacks applied to the raw string when decomposition found nothing
var fallbackSuffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s+(EA|EACH|PCS|PIECES?|PK|PACK|UNIT|UNITS?|CT|COUNT|QTY|QUANTITY)\s*$`),
	regexp.MustCompile(`\s+(BULK|RETAIL|CONSUMER|COMMERCIAL|STD|STANDARD)\s*$`),
	regexp.MustCompile(`\s*[-_/.]?\s*(REV\d{1,3}|VERSION\d{1,3}|V\d{1,3}|R\d{1,3})\s*$`),
	regexp.MustCompile(`\s*[-_/.]?\s*(NEW|OLD|ORIGINAL|REPLACEMENT|REFURB)\s*$`),
}

var validSuffixes = map[string]struct{}{
	"EA": {}, "EACH": {}, "PCS": {}, "PIECES": {}, "PIECE": {}, "PK": {}, "PACK": {},
	"UNIT": {}, "UNITS": {}, "CT": {}, "COUNT": {}, "QTY": {}, "QUANTITY": {},
	"BULK": {}, "RETAIL": {}, "CONSUMER": {}, "COMMERCIAL": {}, "STD": {},
	"STANDARD": {}, "NEW": {}, "OLD": {}, "ORIGINAL": {}, "REPLACEMENT": {},
	"REFURB": {},
}

var (
	versionSuffix    = regexp.MustCompile(`^(REV|VERSION|V|R)\d{1,3}$`)
	leadingSeparator = regexp.MustCompile(`^[-_/.\s]+`)
)

// trailingSuffix strips one recognised suffix from pn. The remaining core
// must keep at least minCoreLen characters.
func trailingSuffix(pn string) (string, string, bool) {
	for _, p := range suffixPatterns {
		m := p.FindStringSubmatch(pn)
		if m == nil {
			continue
		}
		if len(strings.TrimSpace(m[1])) >= minCoreLen && len(m[2]) <= 10 {
			return m[1], m[2], true
		}
	}
	return pn, "", false
}

// splitSuffixes repeatedly strips trailing suffixes and returns the core and
// the suffixes in their original left-to-right order.
func splitSuffixes(pn string) (string, []string) {
	var suffixes []string
	current := strings.TrimSpace(pn)
	for {
		remaining, suffix, ok := trailingSuffix(current)
		if !ok || remaining == current {
			break
		}
		suffixes = append([]string{suffix}, suffixes...)
		current = strings.TrimSpace(remaining)
	}
	return current, suffixes
}

// isValidSuffix reports whether s is a unit word, a version token or a single letter.
func isValidSuffix(s string) bool {
	s = foldCase(leadingSeparator.ReplaceAllString(s, ""))
	if s == "" {
		return false
	}
	if _, ok := validSuffixes[s]; ok {
		return true
	}
	if versionSuffix.MatchString(s) {
		return true
	}
	r := []rune(s)
	return len(r) == 1 && r[0] >= 'A' && r[0] <= 'Z'
}

// IsSuffixOnlyDifference reports whether one part number equals the other
// followed by a recognised suffix, e.g. "14NV41" and "14NV41EA".
func IsSuffixOnlyDifference(a, b string) bool {
	a = foldCase(a)
	b = foldCase(b)
	if a == "" || b == "" {
		return false
	}
	switch {
	case len(a) > len(b) && strings.HasPrefix(a, b):
		return isValidSuffix(strings.TrimSpace(a[len(b):]))
	case len(b) > len(a) && strings.HasPrefix(b, a):
		return isValidSuffix(strings.TrimSpace(b[len(a):]))
	}
	return false
}
