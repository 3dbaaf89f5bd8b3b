package codinome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabulary(t *testing.T) {
	v, err := DefaultVocabulary()
	require.NoError(t, err)

	for _, category := range []string{"M", "F", "O"} {
		assert.NotEmpty(t, v.Elements[category], "category %s", category)
	}
	assert.Contains(t, v.Variations, "")
	assert.Equal(t, v.FallbackElements, v.elementsFor("N"))
}

func TestParseVocabulary_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing suffixes", "prefixes: [Lu]\nfallback_elements: [Sol]"},
		{"missing fallback", "prefixes: [Lu]\nsuffixes: [na]"},
		{"invalid characters", "prefixes: [Lu-]\nsuffixes: [na]\nfallback_elements: [Sol]"},
		{"too short", "prefixes: [L]\nsuffixes: [a]\nfallback_elements: [Sol]"},
		{"too long", "prefixes: [Abcdefghij]\nsuffixes: [Abcdefghijk]\nfallback_elements: [Sol]"},
		{"variation without connector", "prefixes: [Lu]\nsuffixes: [na]\nfallback_elements: [Sol]\nvariations: [\"7\"]"},
		{"malformed", "prefixes: [Lu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVocabulary([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
