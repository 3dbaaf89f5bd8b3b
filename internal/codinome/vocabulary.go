package codinome

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	minNameLength = 3
	maxNameLength = 20
)

var wordPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// Vocabulary holds the static word lists names are composed from.
type Vocabulary struct {
	Prefixes         []string            `yaml:"prefixes"`
	Suffixes         []string            `yaml:"suffixes"`
	Elements         map[string][]string `yaml:"elements"`
	FallbackElements []string            `yaml:"fallback_elements"`
	Variations       []string            `yaml:"variations"`
	Connectors       []string            `yaml:"connectors"`
}

var loadDefault = sync.OnceValues(func() (*Vocabulary, error) {
	return ParseVocabulary(defaultVocabulary)
})

// DefaultVocabulary returns the embedded vocabulary, parsed once per process.
func DefaultVocabulary() (*Vocabulary, error) {
	return loadDefault()
}

// ParseVocabulary decodes a YAML vocabulary and validates it.
func ParseVocabulary(raw []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("codinome: parse vocabulary: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Validate checks that every list is usable and that every composable name
// satisfies the codinome rules.
func (v *Vocabulary) Validate() error {
	if len(v.Prefixes) == 0 || len(v.Suffixes) == 0 {
		return errors.New("codinome: prefixes and suffixes are required")
	}
	if len(v.FallbackElements) == 0 {
		return errors.New("codinome: fallback_elements is required")
	}

	lists := map[string][]string{
		"prefixes":          v.Prefixes,
		"suffixes":          v.Suffixes,
		"fallback_elements": v.FallbackElements,
		"variations":        v.Variations,
		"connectors":        v.Connectors,
	}
	for category, words := range v.Elements {
		lists["elements."+category] = words
	}
	for name, words := range lists {
		for _, w := range words {
			if !wordPattern.MatchString(w) {
				return fmt.Errorf("codinome: %s contains invalid word %q", name, w)
			}
		}
	}

	hasVariation := false
	for _, variation := range v.Variations {
		if variation != "" {
			hasVariation = true
			break
		}
	}
	if hasVariation && len(v.Connectors) == 0 {
		return errors.New("codinome: connectors are required when variations are present")
	}

	minP, maxP := lengthRange(v.Prefixes)
	minS, maxS := lengthRange(v.Suffixes)
	minE, maxE := lengthRange(v.allElements())
	_, maxC := lengthRange(v.Connectors)
	_, maxV := lengthRange(v.Variations)

	shortest := min(minP+minS, minE+minS, minP+minE)
	longest := max(maxP+maxS, maxE+maxS, maxP+maxE) + maxC + maxV
	if shortest < minNameLength {
		return fmt.Errorf("codinome: shortest composable name has %d characters, need %d", shortest, minNameLength)
	}
	if longest > maxNameLength {
		return fmt.Errorf("codinome: longest composable name has %d characters, limit is %d", longest, maxNameLength)
	}
	return nil
}

// elementsFor returns the category's elements, or the fallback list.
func (v *Vocabulary) elementsFor(category string) []string {
	if words := v.Elements[category]; len(words) > 0 {
		return words
	}
	return v.FallbackElements
}

func (v *Vocabulary) allElements() []string {
	all := append([]string(nil), v.FallbackElements...)
	for _, words := range v.Elements {
		all = append(all, words...)
	}
	return all
}

func lengthRange(words []string) (int, int) {
	if len(words) == 0 {
		return 0, 0
	}
	lo, hi := len(words[0]), len(words[0])
	for _, w := range words[1:] {
		lo = min(lo, len(w))
		hi = max(hi, len(w))
	}
	return lo, hi
}
