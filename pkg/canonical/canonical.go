// Package canonical reduces free-text manufacturer and company names to a
// comparable canonical form.
package canonical

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// corporateSuffixes are trailing tokens that carry no identity.
var corporateSuffixes = map[string]struct{}{
	"INC": {}, "LLC": {}, "LTD": {}, "LIMITED": {}, "CO": {}, "CORP": {},
	"CORPORATION": {}, "GMBH": {}, "AG": {}, "BV": {}, "SA": {}, "SAS": {},
	"PLC": {}, "PTE": {}, "PTY": {}, "AB": {}, "OY": {}, "KK": {}, "SPA": {},
	"SRL": {}, "TECHNOLOGIES": {}, "SYSTEMS": {}, "SOLUTIONS": {},
	"SERVICES": {}, "ENTERPRISES": {}, "INDUSTRIES": {}, "INTERNATIONAL": {},
	"WORLDWIDE": {}, "GLOBAL": {}, "GROUP": {}, "COMPANY": {}, "COMPANIES": {},
}

// IsCorporateSuffix reports whether word (any case) is a corporate suffix token.
func IsCorporateSuffix(word string) bool {
	_, ok := corporateSuffixes[strings.ToUpper(word)]
	return ok
}

// Canonicalize uppercases s, spells out ampersands, replaces anything outside
// A-Z, 0-9 and space with a space, collapses whitespace and strips trailing
// corporate suffixes. The result is idempotent under Canonicalize.
func Canonicalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "&", " AND ")
	s = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, s)

	tokens := strings.Fields(s)
	for len(tokens) > 0 {
		if _, ok := corporateSuffixes[tokens[len(tokens)-1]]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// FoldDiacritics decomposes s and drops combining marks, so "Nestlé" becomes "Nestle".
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// NormalizeManufacturer folds diacritics and canonicalizes the result.
func NormalizeManufacturer(s string) string {
	if s == "" {
		return ""
	}
	return Canonicalize(FoldDiacritics(s))
}
