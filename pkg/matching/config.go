package matching

import (
	"github.com/Ramsey-B/fern/pkg/aliases"
	"github.com/Ramsey-B/fern/pkg/blocking"
	"github.com/Ramsey-B/fern/pkg/partnumber"
)

// Config contains configuration for the matching engine.
type Config struct {
	ManufacturerFuzzyThreshold float64 // Minimum JW similarity for a fuzzy manufacturer hit (default: 0.90)
	MaxEditDistance            int     // Maximum edit distance for fuzzy part-number lookups (default: 1)
	MaxCandidates              int     // Maximum candidates kept per item (default: 200)
	RareTokenMinDF             int     // Minimum document frequency of a rare token (default: 1)
	RareTokenMaxDFRatio        float64 // Maximum document frequency of a rare token as a share of the catalog (default: 0.15)
	IncludeSubsidiaries        bool    // Register subsidiary names as aliases (default: true)
	IncludeBrands              bool    // Register brand names as aliases (default: true)
	FilterShortVariants        bool    // Drop truncated part-number variants before lookups (default: true)
	Workers                    int     // Worker pool size for index build and scoring (default: 4)
	PrefixCacheSize            int     // Manufacturer prefix cache capacity (default: 512)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	b := blocking.DefaultOptions()
	a := aliases.DefaultOptions()
	return Config{
		ManufacturerFuzzyThreshold: b.ManufacturerFuzzyThreshold,
		MaxEditDistance:            b.MaxEditDistance,
		MaxCandidates:              b.MaxCandidates,
		RareTokenMinDF:             b.RareTokenMinDF,
		RareTokenMaxDFRatio:        b.RareTokenMaxDFRatio,
		IncludeSubsidiaries:        a.IncludeSubsidiaries,
		IncludeBrands:              a.IncludeBrands,
		FilterShortVariants:        true,
		Workers:                    b.Workers,
		PrefixCacheSize:            partnumber.DefaultPrefixCacheSize,
	}
}

// BlockingOptions returns the blocking index options of the configuration.
func (c Config) BlockingOptions() blocking.Options {
	return blocking.Options{
		ManufacturerFuzzyThreshold: c.ManufacturerFuzzyThreshold,
		MaxEditDistance:            c.MaxEditDistance,
		MaxCandidates:              c.MaxCandidates,
		RareTokenMinDF:             c.RareTokenMinDF,
		RareTokenMaxDFRatio:        c.RareTokenMaxDFRatio,
		Workers:                    c.workers(),
	}
}

// AliasOptions returns the alias loading options of the configuration.
func (c Config) AliasOptions() aliases.Options {
	return aliases.Options{
		IncludeSubsidiaries: c.IncludeSubsidiaries,
		IncludeBrands:       c.IncludeBrands,
	}
}

func (c Config) workers() int {
	return max(1, c.Workers)
}
