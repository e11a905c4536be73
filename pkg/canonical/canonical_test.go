package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "ampersand", input: "Johnson & Johnson", expected: "JOHNSON AND JOHNSON"},
		{name: "punctuation", input: "3M Co.", expected: "3M"},
		{name: "stacked suffixes", input: "Acme Technologies Group, Inc.", expected: "ACME"},
		{name: "suffix only", input: "Inc.", expected: ""},
		{name: "inner suffix kept", input: "Global Industries Widget", expected: "GLOBAL INDUSTRIES WIDGET"},
		{name: "whitespace", input: "  Hewlett   Packard  ", expected: "HEWLETT PACKARD"},
		{name: "non ascii", input: "Nestlé", expected: "NESTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Canonicalize(tt.input))
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{"3M Company", "Minnesota Mining & Manufacturing Co.", "ACME-Corp Ltd", "a.b.c gmbh", "   "}
	for _, in := range inputs {
		once := Canonicalize(in)
		assert.Equal(t, once, Canonicalize(once), in)
	}
}

func TestNormalizeManufacturer(t *testing.T) {
	assert.Equal(t, "NESTLE", NormalizeManufacturer("Nestlé SA"))
	assert.Equal(t, "3M", NormalizeManufacturer("3M Company"))
	assert.Equal(t, "", NormalizeManufacturer(""))

	once := NormalizeManufacturer("Société Générale Group")
	assert.Equal(t, "SOCIETE GENERALE", once)
	assert.Equal(t, once, NormalizeManufacturer(once))
}

func TestIsCorporateSuffix(t *testing.T) {
	assert.True(t, IsCorporateSuffix("inc"))
	assert.True(t, IsCorporateSuffix("GmbH"))
	assert.False(t, IsCorporateSuffix("3M"))
}
