// Package charlevel implements a tokenizer.Tokenizer that treats each Unicode code point of
// the corpus as one symbol. The vocabulary is derived from the corpus itself, not from a
// model file, which keeps the codec a pure bijection with no special tokens.
package charlevel

import (
	"github.com/pkg/errors"

	"github.com/gabehenriques/lets-build-gpt/tokenizer/api"
)

// New creates a character-level tokenizer whose vocabulary is the set of distinct symbols
// observed in corpus.
//
// It implements the tokenizer.Constructor function signature.
func New(config *api.Config, corpus string) (api.Tokenizer, error) {
	vocab, err := BuildVocabulary(corpus)
	if err != nil {
		return nil, errors.WithMessagef(err, "can't build %q tokenizer", config.ClassOrDefault())
	}
	return &Tokenizer{Vocabulary: vocab}, nil
}

// Tokenizer implements the tokenizer.Tokenizer interface on top of a character Vocabulary.
type Tokenizer struct {
	*Vocabulary
}

// Compile time assert that charlevel.Tokenizer implements the tokenizer.Tokenizer interface.
var _ api.Tokenizer = &Tokenizer{}

// VocabSize returns the number of distinct symbols observed in the corpus.
func (t *Tokenizer) VocabSize() int { return t.Size() }
