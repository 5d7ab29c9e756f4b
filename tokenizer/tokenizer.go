// Package tokenizer creates the symbol-level tokenizers used by the data pipeline.
//
// A tokenizer class is selected by name through an api.Config; implementations register
// themselves with RegisterClass. The "character" class is always included and is the
// default: its vocabulary is the sorted set of distinct code points observed in the corpus,
// so encoding is reproducible for a fixed corpus.
package tokenizer

import (
	"github.com/pkg/errors"

	"github.com/gabehenriques/lets-build-gpt/tokenizer/api"
	"github.com/gabehenriques/lets-build-gpt/tokenizer/charlevel"
)

// Tokenizer converts text to "tokens" (integer ids) and back.
//
// Encode and Decode are strict inverses over the corpus the tokenizer was built from: no
// symbol is ever skipped and no id silently dropped.
type Tokenizer = api.Tokenizer

// Config selects and parameterizes a tokenizer implementation. See api.Config.
type Config = api.Config

// New creates a tokenizer of the class named by config, building its vocabulary from the
// given corpus text.
//
// It returns an error for an unregistered class, or whatever the class constructor returns
// (building from an empty corpus fails with api.ErrEmptyCorpus).
func New(config *api.Config, corpus string) (Tokenizer, error) {
	class := config.ClassOrDefault()
	constructor, found := registerOfClasses[class]
	if !found {
		return nil, errors.Errorf("unknown tokenizer class %q", class)
	}
	return constructor(config, corpus)
}

// Constructor is used by Tokenizer implementations to provide implementations for different
// tokenizer classes.
type Constructor func(config *api.Config, corpus string) (api.Tokenizer, error)

// RegisterClass used by Tokenizer implementations.
func RegisterClass(name string, constructor Constructor) {
	registerOfClasses[name] = constructor
}

var (
	registerOfClasses = make(map[string]Constructor)
)

func init() {
	// Initialize the character-level tokenizer class, always included.
	RegisterClass(api.DefaultClass, charlevel.New)
}
