package codinome

import "errors"

// DefaultMaxRetries is the number of consecutive failed rounds a client may
// burn before generation is reported as failed.
const DefaultMaxRetries = 100

// ErrRetriesExhausted is the only generation failure shown to users.
var ErrRetriesExhausted = errors.New("could not produce a unique identity, try again")

// Session tracks one client's consecutive failures against a shared Generator.
type Session struct {
	gen        *Generator
	maxRetries int
	remaining  int
}

func NewSession(gen *Generator, maxRetries int) *Session {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Session{gen: gen, maxRetries: maxRetries, remaining: maxRetries}
}

// RestoreSession resumes a session whose remaining budget was persisted elsewhere.
// Out-of-range values start a fresh budget; zero stays spent.
func RestoreSession(gen *Generator, remaining, maxRetries int) *Session {
	s := NewSession(gen, maxRetries)
	if remaining >= 0 && remaining <= s.maxRetries {
		s.remaining = remaining
	}
	return s
}

// Generate asks the generator for one name. A transient ErrExhausted costs one
// retry. Once the budget is spent every call returns ErrRetriesExhausted
// without touching the generator, until Reset.
func (s *Session) Generate(category string) (string, error) {
	if s.remaining <= 0 {
		return "", ErrRetriesExhausted
	}

	name, err := s.gen.Generate(category)
	if err == nil {
		s.remaining = s.maxRetries
		return name, nil
	}
	if !errors.Is(err, ErrExhausted) {
		return "", err
	}

	s.remaining--
	if s.remaining <= 0 {
		return "", ErrRetriesExhausted
	}
	return "", err
}

// Reset restores the full retry budget.
func (s *Session) Reset() {
	s.remaining = s.maxRetries
}

// Remaining reports how many failed rounds are left before ErrRetriesExhausted.
func (s *Session) Remaining() int {
	return s.remaining
}
