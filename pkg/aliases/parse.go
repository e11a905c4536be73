package aliases

import (
	"errors"
	"strings"
	"unicode"
)

var errNotList = errors.New("not a list literal")

// parseAliasCell reads a cell holding a list literal such as
// ['3M', "3M Company"]. When the cell is not a valid literal the brackets and
// quotes are stripped and the remainder is split on commas.
func parseAliasCell(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	if items, err := parseListLiteral(cell); err == nil {
		return items
	}

	cleaned := strings.Trim(cell, "[]'\"")
	var out []string
	for _, part := range strings.Split(cleaned, ",") {
		part = strings.Trim(strings.TrimSpace(part), "'\"")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseListLiteral accepts a bracketed, comma separated list of single or
// double quoted strings with backslash escapes. A trailing comma is allowed.
func parseListLiteral(s string) ([]string, error) {
	rs := []rune(s)
	if len(rs) < 2 || rs[0] != '[' || rs[len(rs)-1] != ']' {
		return nil, errNotList
	}

	var out []string
	i := 1
	end := len(rs) - 1
	expectItem := true
	for {
		for i < end && unicode.IsSpace(rs[i]) {
			i++
		}
		if i >= end {
			break
		}
		if !expectItem {
			if rs[i] != ',' {
				return nil, errNotList
			}
			i++
			expectItem = true
			continue
		}

		quote := rs[i]
		if quote != '\'' && quote != '"' {
			return nil, errNotList
		}
		i++
		var b strings.Builder
		closed := false
		for i < end {
			r := rs[i]
			if r == '\\' && i+1 < end {
				b.WriteRune(rs[i+1])
				i += 2
				continue
			}
			if r == quote {
				closed = true
				i++
				break
			}
			b.WriteRune(r)
			i++
		}
		if !closed {
			return nil, errNotList
		}
		if item := strings.TrimSpace(b.String()); item != "" {
			out = append(out, item)
		}
		expectItem = false
	}
	return out, nil
}

// parsePipeList splits a pipe-delimited cell into trimmed, non-empty names.
func parsePipeList(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var locationWords = []string{
	"switzerland", "germany", "united kingdom", "canada", "france",
	"italy", "japan", "netherlands", "sweden", "norway", "denmark",
	"australia", "brazil", "mexico", "spain", "portugal", "poland",
	"czech", "hungary", "austria", "belgium", "finland", "ireland",
}

var businessWords = map[string]struct{}{
	"corporation": {}, "inc": {}, "llc": {}, "ltd": {}, "co": {}, "company": {},
	"group": {}, "holdings": {}, "enterprises": {}, "international": {},
	"global": {}, "systems": {}, "technologies": {}, "solutions": {},
	"services": {}, "products": {}, "industries": {},
}

// isValidManufacturerName is the conservative filter applied to subsidiary
// and brand names before they become aliases.
func isValidManufacturerName(name string) bool {
	name = strings.TrimSpace(name)
	total := len([]rune(name))
	if total < 3 {
		return false
	}

	kept := 0
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r)) {
			kept++
		}
	}
	if float64(kept) < float64(total)*0.5 {
		return false
	}

	lower := strings.ToLower(name)
	for _, loc := range locationWords {
		if strings.Contains(lower, loc) {
			return false
		}
	}

	if _, ok := businessWords[lower]; ok {
		return false
	}
	words := strings.Fields(lower)
	if len(words) == 1 {
		if _, ok := businessWords[words[0]]; ok {
			return false
		}
	}
	return true
}
