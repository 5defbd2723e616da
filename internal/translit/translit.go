// Package translit turns Devanagari voter names into Latin script.
//
// Three backends exist: a batch call to a Gemini model, a rule-based
// local scheme that needs no network, and a pass-through that leaves
// names empty. Service combines a backend with a cache and falls back to
// the local scheme when the backend fails.
package translit

import (
	"context"
	"fmt"
	"strings"
)

// Backend names accepted by New.
const (
	BackendGemini = "gemini"
	BackendLocal  = "local"
	BackendNone   = "none"
)

// Transliterator converts a batch of names. Implementations return a
// slice of the same length and order as names; an entry may be empty
// when that name could not be converted.
type Transliterator interface {
	Transliterate(ctx context.Context, names []string) ([]string, error)
}

// None leaves every English name empty.
type None struct{}

// Transliterate implements Transliterator.
func (None) Transliterate(_ context.Context, names []string) ([]string, error) {
	return make([]string, len(names)), nil
}

// ValidateBackend reports whether name is a known backend.
func ValidateBackend(name string) error {
	switch strings.ToLower(name) {
	case BackendGemini, BackendLocal, BackendNone:
		return nil
	default:
		return fmt.Errorf("unknown transliteration backend %q (want %s, %s or %s)",
			name, BackendGemini, BackendLocal, BackendNone)
	}
}
