// Package codinome generates anonymous display names from a fixed vocabulary.
//
// A Generator remembers every name it issued and retries on collision. When a
// strategy runs out of attempts the generator rotates to the next one, and a
// full rotation clears the issued set. Global uniqueness is left to the users
// table; the issued set only keeps one process from repeating itself.
package codinome

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultMaxAttempts bounds the collision retries of a single Generate call.
const DefaultMaxAttempts = 50

// ErrExhausted means the active strategy produced only issued names within the
// attempt budget. The generator has already rotated; calling again may succeed.
var ErrExhausted = errors.New("codinome: no unissued name this round")

type Strategy int

const (
	StrategyPrefixSuffix Strategy = iota
	StrategyElementSuffix
	StrategyPrefixElement
	StrategyDecorated

	strategyCount
)

func (s Strategy) String() string {
	switch s {
	case StrategyPrefixSuffix:
		return "prefix+suffix"
	case StrategyElementSuffix:
		return "element+suffix"
	case StrategyPrefixElement:
		return "prefix+element"
	case StrategyDecorated:
		return "decorated"
	default:
		return "unknown"
	}
}

type Option func(*Generator)

// WithMaxAttempts overrides the per-call attempt budget.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithRand sets the random source, mainly for deterministic tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = r
	}
}

// WithVocabulary replaces the embedded vocabulary.
func WithVocabulary(v *Vocabulary) Option {
	return func(g *Generator) {
		g.vocab = v
	}
}

// Generator is safe for concurrent use.
type Generator struct {
	mu          sync.Mutex
	vocab       *Vocabulary
	rng         *rand.Rand
	maxAttempts int
	issued      map[string]struct{}
	cursor      Strategy
	attempts    int
}

func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		maxAttempts: DefaultMaxAttempts,
		issued:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.vocab == nil {
		v, err := DefaultVocabulary()
		if err != nil {
			return nil, err
		}
		g.vocab = v
	} else if err := g.vocab.Validate(); err != nil {
		return nil, err
	}
	if g.rng == nil {
		seed := uint64(time.Now().UnixNano())
		g.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return g, nil
}

// Generate returns a name not issued since the last reset. category selects
// the element list ("M", "F", "O"); unknown or empty categories use the
// fallback elements.
func (g *Generator) Generate(category string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if name, ok := g.tryStrategy(g.cursor, category); ok {
		g.issued[name] = struct{}{}
		return name, nil
	}

	g.cursor = (g.cursor + 1) % strategyCount
	if g.cursor == StrategyPrefixSuffix {
		clear(g.issued)
	}
	return "", ErrExhausted
}

// tryStrategy runs at most maxAttempts compositions with one strategy.
func (g *Generator) tryStrategy(s Strategy, category string) (string, bool) {
	for i := 0; i < g.maxAttempts; i++ {
		g.attempts++
		name := g.compose(s, category)
		if _, taken := g.issued[name]; !taken {
			return name, true
		}
	}
	return "", false
}

func (g *Generator) compose(s Strategy, category string) string {
	v := g.vocab
	switch s {
	case StrategyPrefixSuffix:
		return g.pick(v.Prefixes) + g.pick(v.Suffixes)
	case StrategyElementSuffix:
		return g.pick(v.elementsFor(category)) + g.pick(v.Suffixes)
	case StrategyPrefixElement:
		return g.pick(v.Prefixes) + g.pick(v.elementsFor(category))
	default:
		base := g.compose(Strategy(g.rng.IntN(int(StrategyDecorated))), category)
		variation := g.pick(v.Variations)
		if variation == "" {
			return base
		}
		return base + g.pick(v.Connectors) + variation
	}
}

func (g *Generator) pick(words []string) string {
	if len(words) == 0 {
		return ""
	}
	return words[g.rng.IntN(len(words))]
}

// Strategy reports the active composition strategy.
func (g *Generator) Strategy() Strategy {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cursor
}

// Issued reports how many names are currently remembered.
func (g *Generator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.issued)
}

// Attempts reports the total number of compositions tried.
func (g *Generator) Attempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts
}
