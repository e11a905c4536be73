// Package aliases resolves manufacturer names to a canonical manufacturer
// using an alias table of names, subsidiaries and brands.
package aliases

import (
	"sort"
	"strings"

	"github.com/Ramsey-B/fern/pkg/canonical"
	"github.com/Ramsey-B/fern/pkg/models"
)

// Stats describes what a registry was built from.
type Stats struct {
	RowsLoaded                    int     `json:"rows_loaded"`
	RowsSkipped                   int     `json:"rows_skipped"`
	CanonicalManufacturers        int     `json:"canonical_manufacturers"`
	TotalAliases                  int     `json:"total_aliases"`
	AvgAliasesPerManufacturer     float64 `json:"avg_aliases_per_manufacturer"`
	ManufacturersWithSubsidiaries int     `json:"manufacturers_with_subsidiaries"`
	ManufacturersWithBrands       int     `json:"manufacturers_with_brands"`
	SubsidiariesAdded             int     `json:"subsidiaries_added"`
	BrandsAdded                   int     `json:"brands_added"`
	SubsidiariesFiltered          int     `json:"subsidiaries_filtered"`
	BrandsFiltered                int     `json:"brands_filtered"`
}

// Registry maps manufacturer names to canonical manufacturers. All keys are
// normalized with canonical.NormalizeManufacturer. A Registry is never
// mutated after construction, so it is safe for concurrent use.
type Registry struct {
	aliasToCanonical   map[string]string
	canonicalToAliases map[string]map[string]struct{}
	displayNames       map[string]string
	stats              Stats
}

// Empty returns a registry with no aliases. Lookups fall back to the normalized name.
func Empty() *Registry {
	return newRegistry()
}

func newRegistry() *Registry {
	return &Registry{
		aliasToCanonical:   map[string]string{},
		canonicalToAliases: map[string]map[string]struct{}{},
		displayNames:       map[string]string{},
	}
}

// store replaces the alias set of canonicalKey. Aliases previously owned by
// another canonical move to canonicalKey so alias->canonical stays a function.
func (r *Registry) store(canonicalKey string, aliases []string, display string) {
	if canonicalKey == "" || len(aliases) == 0 {
		return
	}

	if previous, ok := r.canonicalToAliases[canonicalKey]; ok {
		for alias := range previous {
			if r.aliasToCanonical[alias] == canonicalKey {
				delete(r.aliasToCanonical, alias)
			}
		}
	}

	set := make(map[string]struct{}, len(aliases))
	r.canonicalToAliases[canonicalKey] = set
	for _, alias := range aliases {
		r.claim(canonicalKey, alias)
	}
	if len(set) == 0 {
		delete(r.canonicalToAliases, canonicalKey)
		return
	}
	r.displayNames[canonicalKey] = display
}

func (r *Registry) claim(canonicalKey, alias string) {
	if alias == "" {
		return
	}
	if owner, ok := r.aliasToCanonical[alias]; ok && owner != canonicalKey {
		if set, ok := r.canonicalToAliases[owner]; ok {
			delete(set, alias)
			if len(set) == 0 {
				delete(r.canonicalToAliases, owner)
				delete(r.displayNames, owner)
			}
		}
	}
	r.canonicalToAliases[canonicalKey][alias] = struct{}{}
	r.aliasToCanonical[alias] = canonicalKey
}

func (r *Registry) clone() *Registry {
	c := &Registry{
		aliasToCanonical:   make(map[string]string, len(r.aliasToCanonical)),
		canonicalToAliases: make(map[string]map[string]struct{}, len(r.canonicalToAliases)),
		displayNames:       make(map[string]string, len(r.displayNames)),
		stats:              r.stats,
	}
	for k, v := range r.aliasToCanonical {
		c.aliasToCanonical[k] = v
	}
	for k, set := range r.canonicalToAliases {
		cp := make(map[string]struct{}, len(set))
		for a := range set {
			cp[a] = struct{}{}
		}
		c.canonicalToAliases[k] = cp
	}
	for k, v := range r.displayNames {
		c.displayNames[k] = v
	}
	return c
}

func (r *Registry) refreshCounts() {
	r.stats.CanonicalManufacturers = len(r.canonicalToAliases)
	r.stats.TotalAliases = len(r.aliasToCanonical)
	r.stats.AvgAliasesPerManufacturer = float64(r.stats.TotalAliases) / float64(max(1, r.stats.CanonicalManufacturers))
}

// ManualAlias is an alias added outside the alias table.
type ManualAlias struct {
	Canonical string `yaml:"canonical" json:"canonical"`
	Alias     string `yaml:"alias" json:"alias"`
}

// WithManualAlias returns a copy of the registry with alias mapped to canonicalName.
func (r *Registry) WithManualAlias(canonicalName, alias string) *Registry {
	return r.WithManualAliases(ManualAlias{Canonical: canonicalName, Alias: alias})
}

// WithManualAliases returns a copy of the registry with every entry applied in order.
// Entries whose names normalize to nothing are ignored.
func (r *Registry) WithManualAliases(entries ...ManualAlias) *Registry {
	c := r.clone()
	for _, e := range entries {
		key := canonical.NormalizeManufacturer(e.Canonical)
		alias := canonical.NormalizeManufacturer(e.Alias)
		if key == "" || alias == "" {
			continue
		}
		if _, ok := c.canonicalToAliases[key]; !ok {
			c.canonicalToAliases[key] = map[string]struct{}{}
			c.claim(key, key)
		}
		c.claim(key, alias)
		if _, ok := c.displayNames[key]; !ok {
			c.displayNames[key] = strings.TrimSpace(e.Canonical)
		}
	}
	c.refreshCounts()
	return c
}

// CanonicalFor returns the canonical key for name, if name is a known
// alias or canonical manufacturer.
func (r *Registry) CanonicalFor(name string) (string, bool) {
	normalized := canonical.NormalizeManufacturer(name)
	if normalized == "" {
		return "", false
	}
	if c, ok := r.aliasToCanonical[normalized]; ok {
		return c, true
	}
	if _, ok := r.canonicalToAliases[normalized]; ok {
		return normalized, true
	}
	return "", false
}

// AliasesFor returns the sorted aliases of a canonical manufacturer. The
// slice is a copy owned by the caller.
func (r *Registry) AliasesFor(canonicalName string) []string {
	set, ok := r.canonicalToAliases[canonical.NormalizeManufacturer(canonicalName)]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// AllAliasesFor resolves name to its canonical manufacturer and returns all of
// its aliases. Unknown names yield just their normalized form.
func (r *Registry) AllAliasesFor(name string) []string {
	if c, ok := r.CanonicalFor(name); ok {
		if aliases := r.AliasesFor(c); len(aliases) > 0 {
			return aliases
		}
	}
	normalized := canonical.NormalizeManufacturer(name)
	if normalized == "" {
		return nil
	}
	return []string{normalized}
}

// IsAliasOf reports whether both names resolve to the same canonical manufacturer.
func (r *Registry) IsAliasOf(a, b string) bool {
	ca, okA := r.CanonicalFor(a)
	cb, okB := r.CanonicalFor(b)
	return okA && okB && ca == cb
}

// DisplayName returns the original, unnormalized name of name's canonical manufacturer.
func (r *Registry) DisplayName(name string) (string, bool) {
	c, ok := r.CanonicalFor(name)
	if !ok {
		return "", false
	}
	if d, ok := r.displayNames[c]; ok && d != "" {
		return d, true
	}
	return c, true
}

// Search returns up to limit manufacturers whose canonical key or any alias
// contains the normalized query, ordered by canonical key.
func (r *Registry) Search(query string, limit int) []models.CanonicalManufacturer {
	if limit <= 0 {
		return nil
	}
	q := canonical.NormalizeManufacturer(query)

	keys := make([]string, 0, len(r.canonicalToAliases))
	for k := range r.canonicalToAliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var results []models.CanonicalManufacturer
	for _, k := range keys {
		if !r.matches(k, q) {
			continue
		}
		display := r.displayNames[k]
		if display == "" {
			display = k
		}
		results = append(results, models.CanonicalManufacturer{
			CanonicalKey: k,
			DisplayName:  display,
			Aliases:      r.AliasesFor(k),
		})
		if len(results) >= limit {
			break
		}
	}
	return results
}

func (r *Registry) matches(key, q string) bool {
	if strings.Contains(key, q) {
		return true
	}
	for alias := range r.canonicalToAliases[key] {
		if strings.Contains(alias, q) {
			return true
		}
	}
	return false
}

// Len returns the number of canonical manufacturers.
func (r *Registry) Len() int {
	return len(r.canonicalToAliases)
}

// Stats returns load and size statistics.
func (r *Registry) Stats() Stats {
	return r.stats
}
