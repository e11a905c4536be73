package partnumber

import (
	"regexp"
	"sort"
	"strings"
)

const (
	minPrefixLen  = 2
	maxPrefixLen  = 6
	maxPrefixKeep = 8
)

var (
	// letters, a separator, then the rest: ABC-123, ABC/XYZ, ABC 123
	separatedPrefix = regexp.MustCompile(`^([A-Z]{2,6})[-_/.\s](.+)$`)
	// letters directly followed by a digit: ABC123
	attachedPrefix = regexp.MustCompile(`^([A-Z]{2,6})([0-9].+)$`)

	prefixShapes = []*regexp.Regexp{separatedPrefix, attachedPrefix}
)

func isVowel(c byte) bool {
	switch c {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

// manufacturerPrefixes derives the abbreviations a manufacturer is likely to
// put in front of its part numbers. name must already be normalized.
func manufacturerPrefixes(name string, minLen, maxLen int) []string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return nil
	}

	set := map[string]struct{}{}
	addTruncations := func(s string) {
		for l := minLen; l <= maxLen; l++ {
			if len(s) >= l {
				set[s[:l]] = struct{}{}
			}
		}
	}

	// truncation
	addTruncations(name)

	// consonants only: MICROSOFT -> MCRS
	var consonants strings.Builder
	for i := 0; i < len(name); i++ {
		if !isVowel(name[i]) {
			consonants.WriteByte(name[i])
		}
	}
	addTruncations(consonants.String())

	// acronym of multi-word names
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(name))
	if len(words) > 1 {
		var acronym strings.Builder
		for _, w := range words {
			acronym.WriteByte(w[0])
		}
		a := acronym.String()
		if len(a) >= minLen && len(a) <= maxLen {
			set[a] = struct{}{}
		}
		if len(a) > maxLen {
			set[a[:maxLen]] = struct{}{}
		}
	}

	// first and last characters
	if len(name) > 2 && minLen <= 2 {
		set[name[:1]+name[len(name)-1:]] = struct{}{}
	}
	if len(name) > 3 && minLen <= 3 {
		set[name[:1]+name[len(name)-2:]] = struct{}{}
	}

	// first char plus each consonant that follows a vowel: EATON -> ETN
	syllable := []byte{name[0]}
	prevVowel := isVowel(name[0])
	for i := 1; i < len(name); i++ {
		v := isVowel(name[i])
		if prevVowel && !v {
			syllable = append(syllable, name[i])
		}
		prevVowel = v
	}
	addTruncations(string(syllable))

	type scored struct {
		prefix string
		score  int
	}
	candidates := make([]scored, 0, len(set))
	for p := range set {
		if len(p) < minLen || len(p) > maxLen {
			continue
		}
		score := (maxLen - len(p)) * 2
		if p[0] == name[0] {
			score += 5
		} else {
			score -= 10
		}
		for i := 0; i < len(p); i++ {
			if !isVowel(p[i]) {
				score++
			}
		}
		candidates = append(candidates, scored{prefix: p, score: score})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].prefix < candidates[j].prefix
	})

	if len(candidates) > maxPrefixKeep {
		candidates = candidates[:maxPrefixKeep]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.prefix
	}
	return out
}

// knownPrefixes returns the prefix set for a normalized manufacturer,
// memoized in the generator's bounded cache.
func (g *Generator) knownPrefixes(manufacturer string) map[string]struct{} {
	if cached, ok := g.prefixCache.Get(manufacturer); ok {
		return cached
	}

	known := map[string]struct{}{}
	for _, p := range manufacturerPrefixes(manufacturer, minPrefixLen, maxPrefixLen) {
		known[p] = struct{}{}
	}
	if words := strings.Fields(manufacturer); len(words) > 0 {
		known[words[0]] = struct{}{}
	}
	g.prefixCache.Add(manufacturer, known)
	return known
}

type prefixMatch struct {
	prefix    string
	remaining string
}

// genericPrefix returns the first prefix shape that matches pn, ignoring any
// manufacturer context.
func genericPrefix(pn string) (prefixMatch, bool) {
	for _, shape := range prefixShapes {
		m := shape.FindStringSubmatch(pn)
		if m == nil || len(m[2]) < 2 {
			continue
		}
		return prefixMatch{prefix: m[1], remaining: m[2]}, true
	}
	return prefixMatch{}, false
}

// manufacturerPrefix looks for a leading prefix that belongs to the
// manufacturer. known prefixes score 100, prefixes that extend or truncate a
// known one score 50, the length of the prefix is added, and a following
// separator adds 10. Anything else is rejected. Earlier shapes win ties.
func manufacturerPrefix(pn string, known map[string]struct{}) (prefixMatch, bool) {
	best := prefixMatch{}
	bestScore := -1
	for _, shape := range prefixShapes {
		m := shape.FindStringSubmatch(pn)
		if m == nil || len(m[2]) < 2 {
			continue
		}
		prefix := m[1]

		score := -1
		if _, ok := known[prefix]; ok {
			score = 100
		} else {
			for kp := range known {
				if strings.HasPrefix(prefix, kp) || strings.HasPrefix(kp, prefix) {
					score = 50
					break
				}
			}
		}
		if score > 0 {
			score += len(prefix)
			if strings.ContainsAny(pn[:min(len(pn), len(prefix)+1)], "-_/. \t") {
				score += 10
			}
		}
		if score > bestScore {
			bestScore = score
			best = prefixMatch{prefix: prefix, remaining: m[2]}
		}
	}
	return best, bestScore > 0
}
