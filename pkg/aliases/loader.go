package aliases

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gobusters/ectologger"
	"gopkg.in/yaml.v3"

	"github.com/Ramsey-B/fern/pkg/canonical"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// DefaultFileName is the alias table looked up when no path is configured.
const DefaultFileName = "mfr_aliases_with_brands.csv"

// Options controls which columns contribute aliases.
type Options struct {
	IncludeSubsidiaries bool
	IncludeBrands       bool
}

// DefaultOptions includes subsidiaries and brands.
func DefaultOptions() Options {
	return Options{IncludeSubsidiaries: true, IncludeBrands: true}
}

// ResolvePath picks the alias table location. An explicit path wins. A data
// path is used as-is when absolute, otherwise it is searched for in the
// working directory and its parent. The default file name is searched for
// the same way. An empty result means no table was found.
func ResolvePath(explicitPath, dataPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	name := dataPath
	if name == "" {
		name = DefaultFileName
	}
	if filepath.IsAbs(name) {
		return name
	}
	wd, err := os.Getwd()
	if err != nil {
		return name
	}
	for _, dir := range []string{wd, filepath.Dir(wd)} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load reads an alias table from path. It always returns a usable registry:
// when the file cannot be read the registry is empty, a warning is logged and
// the error is returned for callers that want to fail instead.
func Load(ctx context.Context, path string, opts Options, logger ectologger.Logger) (*Registry, error) {
	ctx, span := tracing.StartSpan(ctx, "aliases.Load")
	defer span.End()

	log := logger.WithContext(ctx).WithField("path", path)

	if path == "" {
		log.Warn("no manufacturer alias table configured, continuing without alias support")
		return Empty(), errors.New("alias table path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		log.WithError(err).Warn("could not open manufacturer alias table, continuing without alias support")
		return Empty(), fmt.Errorf("open alias table: %w", err)
	}
	defer f.Close()

	r, err := LoadCSV(ctx, f, opts, logger)
	if err != nil {
		log.WithError(err).Warn("could not read manufacturer alias table, continuing without alias support")
		return Empty(), err
	}
	return r, nil
}

// LoadCSV builds a registry from CSV with the columns original_name, status,
// aliases, aliases_text, subsidiary_names and brands_text. Only rows with
// status "found" are used. Missing optional columns are treated as empty and
// rows that are not valid CSV are skipped with a warning.
func LoadCSV(ctx context.Context, src io.Reader, opts Options, logger ectologger.Logger) (*Registry, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read alias header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["original_name"]; !ok {
		return nil, errors.New("alias table has no original_name column")
	}

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		v := strings.TrimSpace(rec[i])
		if strings.EqualFold(v, "nan") {
			return ""
		}
		return v
	}

	reg := newRegistry()
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			logger.WithContext(ctx).WithError(err).WithField("line", parseErr.Line).Warn("skipping malformed alias row")
			reg.stats.RowsSkipped++
			metrics.AliasRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read alias row: %w", err)
		}

		if _, ok := cols["status"]; ok && cell(rec, "status") != "found" {
			reg.stats.RowsSkipped++
			metrics.AliasRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		original := cell(rec, "original_name")
		if original == "" {
			reg.stats.RowsSkipped++
			metrics.AliasRowsTotal.WithLabelValues("skipped").Inc()
			continue
		}

		reg.addRow(original, row{
			aliases:      cell(rec, "aliases"),
			aliasesText:  cell(rec, "aliases_text"),
			subsidiaries: cell(rec, "subsidiary_names"),
			brands:       cell(rec, "brands_text"),
		}, opts)
		reg.stats.RowsLoaded++
		metrics.AliasRowsTotal.WithLabelValues("loaded").Inc()
	}
	reg.refreshCounts()

	logger.WithContext(ctx).WithFields(map[string]any{
		"canonical_manufacturers": reg.stats.CanonicalManufacturers,
		"total_aliases":           reg.stats.TotalAliases,
		"rows_skipped":            reg.stats.RowsSkipped,
		"subsidiaries_added":      reg.stats.SubsidiariesAdded,
		"subsidiaries_filtered":   reg.stats.SubsidiariesFiltered,
		"brands_added":            reg.stats.BrandsAdded,
		"brands_filtered":         reg.stats.BrandsFiltered,
	}).Info("loaded manufacturer aliases")

	return reg, nil
}

type row struct {
	aliases      string
	aliasesText  string
	subsidiaries string
	brands       string
}

func (r *Registry) addRow(original string, cells row, opts Options) {
	names := parseAliasCell(cells.aliases)
	if len(names) == 0 {
		names = parsePipeList(cells.aliasesText)
	}
	if !contains(names, original) {
		names = append(names, original)
	}

	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[canonical.NormalizeManufacturer(n)] = struct{}{}
	}
	accept := func(candidates []string, filtered *int, added *int, kind string) bool {
		grew := false
		for _, c := range candidates {
			if !isValidManufacturerName(c) {
				*filtered++
				metrics.AliasNamesFiltered.WithLabelValues(kind).Inc()
				continue
			}
			n := canonical.NormalizeManufacturer(c)
			if _, dup := known[n]; dup {
				continue
			}
			known[n] = struct{}{}
			names = append(names, c)
			*added++
			grew = true
		}
		return grew
	}

	if opts.IncludeSubsidiaries {
		if accept(parsePipeList(cells.subsidiaries), &r.stats.SubsidiariesFiltered, &r.stats.SubsidiariesAdded, "subsidiary") {
			r.stats.ManufacturersWithSubsidiaries++
		}
	}
	if opts.IncludeBrands {
		if accept(parsePipeList(cells.brands), &r.stats.BrandsFiltered, &r.stats.BrandsAdded, "brand") {
			r.stats.ManufacturersWithBrands++
		}
	}

	normalized := make([]string, 0, len(names))
	for _, n := range names {
		if v := canonical.NormalizeManufacturer(n); v != "" {
			normalized = append(normalized, v)
		}
	}
	r.store(canonical.NormalizeManufacturer(original), normalized, original)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type overrideFile struct {
	Aliases []ManualAlias `yaml:"aliases"`
}

// LoadOverrides reads manual aliases from a YAML file of the form
//
//	aliases:
//	  - canonical: 3M
//	    alias: Scotch
func LoadOverrides(path string) ([]ManualAlias, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias overrides: %w", err)
	}
	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse alias overrides: %w", err)
	}
	return f.Aliases, nil
}
