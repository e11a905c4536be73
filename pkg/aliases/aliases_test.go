package aliases

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

const aliasCSV = `original_name,status,aliases,aliases_text,subsidiary_names,brands_text
3M,found,"['Minnesota Mining and Manufacturing', '3M Company']",,3M Germany|Inc|Scott Health,Scotch|Post-it
Hewlett-Packard,found,,HP|HP Inc.|HPQ,,
Unknown Widgets,not_found,"['UW']",,,
Acme,found,"Acme Corp, Acme Tools",,,ACME
`

func loadTestRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()
	reg, err := LoadCSV(context.Background(), strings.NewReader(aliasCSV), opts, testLogger())
	require.NoError(t, err)
	return reg
}

func TestLoadCSV_Resolves3M(t *testing.T) {
	reg := loadTestRegistry(t, DefaultOptions())

	for _, name := range []string{"3M", "3M Company", "Minnesota Mining and Manufacturing", "Scotch", "post-it"} {
		c, ok := reg.CanonicalFor(name)
		require.True(t, ok, name)
		assert.Equal(t, "3M", c, name)
	}

	assert.True(t, reg.IsAliasOf("3M", "Minnesota Mining and Manufacturing"))
	assert.False(t, reg.IsAliasOf("3M", "HP"))

	display, ok := reg.DisplayName("Scotch")
	require.True(t, ok)
	assert.Equal(t, "3M", display)
}

func TestLoadCSV_PipeFallbackAndSkips(t *testing.T) {
	reg := loadTestRegistry(t, DefaultOptions())

	c, ok := reg.CanonicalFor("HPQ")
	require.True(t, ok)
	assert.Equal(t, "HEWLETT PACKARD", c)
	assert.True(t, reg.IsAliasOf("HP Inc.", "HPQ"))

	_, ok = reg.CanonicalFor("UW")
	assert.False(t, ok)

	stats := reg.Stats()
	assert.Equal(t, 3, stats.RowsLoaded)
	assert.Equal(t, 1, stats.RowsSkipped)
	assert.Equal(t, reg.Len(), stats.CanonicalManufacturers)
}

func TestLoadCSV_FiltersInvalidSubsidiaries(t *testing.T) {
	reg := loadTestRegistry(t, DefaultOptions())

	_, ok := reg.CanonicalFor("3M Germany")
	assert.False(t, ok)

	c, ok := reg.CanonicalFor("Scott Health")
	require.True(t, ok)
	assert.Equal(t, "3M", c)

	stats := reg.Stats()
	assert.Equal(t, 2, stats.SubsidiariesFiltered)
	assert.Equal(t, 1, stats.SubsidiariesAdded)
	assert.Equal(t, 1, stats.ManufacturersWithSubsidiaries)
	assert.Equal(t, 2, stats.BrandsAdded)
}

func TestLoadCSV_TogglesOff(t *testing.T) {
	reg := loadTestRegistry(t, Options{})

	_, ok := reg.CanonicalFor("Scotch")
	assert.False(t, ok)
	_, ok = reg.CanonicalFor("Scott Health")
	assert.False(t, ok)
}

func TestLoadCSV_CommaFallback(t *testing.T) {
	reg := loadTestRegistry(t, DefaultOptions())

	assert.True(t, reg.IsAliasOf("Acme Tools", "Acme"))
	// "ACME" normalizes to the original name and is not counted as a brand
	assert.Equal(t, 2, reg.Stats().BrandsAdded)
}

func TestAliasesFor_ReturnsCopy(t *testing.T) {
	reg := loadTestRegistry(t, DefaultOptions())

	aliases := reg.AliasesFor("3M")
	require.Contains(t, aliases, "MINNESOTA MINING AND MANUFACTURING")
	aliases[0] = "MUTATED"

	assert.NotContains(t, reg.AliasesFor("3M"), "MUTATED")
	assert.Nil(t, reg.AliasesFor("Nobody"))
}

func TestAllAliasesFor(t *testing.T) {
	reg := loadTestRegistry(t, DefaultOptions())

	all := reg.AllAliasesFor("Scotch")
	assert.Contains(t, all, "3M")
	assert.Contains(t, all, "MINNESOTA MINING AND MANUFACTURING")
	// "3M Company" is stored under its normalized form.
	assert.NotContains(t, all, "3M COMPANY")
	assert.Equal(t, []string{"NOBODY"}, reg.AllAliasesFor("Nobody Inc"))
	assert.Nil(t, reg.AllAliasesFor(""))
}

func TestSuffixedCanonicalNameIsNormalized(t *testing.T) {
	src := "original_name,status,aliases\nAcme Tools Inc,found,\"['Acme Tooling LLC']\"\n"
	reg, err := LoadCSV(context.Background(), strings.NewReader(src), DefaultOptions(), testLogger())
	require.NoError(t, err)

	c, ok := reg.CanonicalFor("ACME TOOLS, INC.")
	require.True(t, ok)
	assert.Equal(t, "ACME TOOLS", c)
	assert.Equal(t, []string{"ACME TOOLING", "ACME TOOLS"}, reg.AllAliasesFor("Acme Tooling"))
}

func TestLoadCSV_SkipsMalformedRows(t *testing.T) {
	src := "original_name,status,aliases\n" +
		"3M,found,\"['3M Company']\"\n" +
		"Broken,found,Broken \"Quote\n" +
		"Acme,found,\"['Acme Corp']\"\n"

	reg, err := LoadCSV(context.Background(), strings.NewReader(src), DefaultOptions(), testLogger())
	require.NoError(t, err)

	stats := reg.Stats()
	assert.Equal(t, 2, stats.RowsLoaded)
	assert.Equal(t, 1, stats.RowsSkipped)

	_, ok := reg.CanonicalFor("Acme")
	assert.True(t, ok)
	_, ok = reg.CanonicalFor("Broken")
	assert.False(t, ok)
}

func TestWithManualAlias_DoesNotMutateReceiver(t *testing.T) {
	reg := loadTestRegistry(t, DefaultOptions())

	next := reg.WithManualAlias("3M", "Filtrete")

	c, ok := next.CanonicalFor("Filtrete")
	require.True(t, ok)
	assert.Equal(t, "3M", c)

	_, ok = reg.CanonicalFor("Filtrete")
	assert.False(t, ok)
}

func TestWithManualAlias_MovesAliasBetweenCanonicals(t *testing.T) {
	reg := Empty().
		WithManualAlias("Alpha", "Shared Brand").
		WithManualAlias("Beta", "Shared Brand")

	c, ok := reg.CanonicalFor("Shared Brand")
	require.True(t, ok)
	assert.Equal(t, "BETA", c)
	assert.NotContains(t, reg.AliasesFor("Alpha"), "SHARED BRAND")
	assert.Equal(t, 3, reg.Stats().TotalAliases)
}

func TestLaterRowClaimsAlias(t *testing.T) {
	src := "original_name,status,aliases\nAlpha,found,\"['Shared']\"\nBeta,found,\"['Shared']\"\n"
	reg, err := LoadCSV(context.Background(), strings.NewReader(src), DefaultOptions(), testLogger())
	require.NoError(t, err)

	c, ok := reg.CanonicalFor("Shared")
	require.True(t, ok)
	assert.Equal(t, "BETA", c)
	assert.Equal(t, []string{"ALPHA"}, reg.AliasesFor("Alpha"))
}

func TestSearch(t *testing.T) {
	reg := loadTestRegistry(t, DefaultOptions())

	results := reg.Search("mining", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "3M", results[0].CanonicalKey)

	assert.Len(t, reg.Search("", 2), 2)
	assert.Nil(t, reg.Search("3M", 0))
}

func TestLoad_MissingFileYieldsEmptyRegistry(t *testing.T) {
	reg, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), DefaultOptions(), testLogger())
	assert.Error(t, err)
	require.NotNil(t, reg)
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, []string{"3M"}, reg.AllAliasesFor("3M Co."))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(aliasCSV), 0o600))

	reg, err := Load(context.Background(), path, DefaultOptions(), testLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aliases:\n  - canonical: 3M\n    alias: Nexcare\n"), 0o600))

	entries, err := LoadOverrides(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	reg := Empty().WithManualAliases(entries...)
	assert.True(t, reg.IsAliasOf("Nexcare", "3M"))
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/data/aliases.csv", ResolvePath("/data/aliases.csv", "other.csv"))
	assert.Equal(t, "/abs/table.csv", ResolvePath("", "/abs/table.csv"))
	assert.Equal(t, "", ResolvePath("", "definitely-not-present-8f2c.csv"))
}

func TestParseAliasCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "list literal", input: `['A', "B's"]`, expected: []string{"A", "B's"}},
		{name: "escaped quote", input: `['O\'Neil']`, expected: []string{"O'Neil"}},
		{name: "empty list", input: `[]`, expected: nil},
		{name: "comma fallback", input: `[A, 'B'`, expected: []string{"A", "B"}},
		{name: "bare", input: `Foo, Bar`, expected: []string{"Foo", "Bar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseAliasCell(tt.input))
		})
	}
}

func TestIsValidManufacturerName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "too short", input: "AB", valid: false},
		{name: "symbols", input: "#@!%^&", valid: false},
		{name: "location", input: "Siemens Germany", valid: false},
		{name: "bare business word", input: "Inc", valid: false},
		{name: "bare business word with case", input: "Holdings", valid: false},
		{name: "brand", input: "Post-it", valid: true},
		{name: "subsidiary", input: "Scott Health Care", valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, isValidManufacturerName(tt.input))
		})
	}
}
