// Package api defines the Tokenizer API.
// It's a separate package to break the cyclic dependency, and allow users to import `tokenizer`
// and get the default implementations.
package api

// Tokenizer converts text to "tokens" (integer ids) and back.
//
// Both directions are strict: Encode fails on any symbol outside the vocabulary, and Decode
// fails on any id outside [0, VocabSize()). A silent skip on either side would shift every
// later position and desynchronize contexts from their targets, so errors always propagate.
//
// Implementations are immutable once built and safe for concurrent use.
type Tokenizer interface {
	// Encode maps each symbol of text to its id, in order.
	// It returns an *UnknownSymbolError if a symbol is not in the vocabulary.
	Encode(text string) ([]int, error)

	// Decode maps each id back to its symbol, in order.
	// It returns an *InvalidIDError if an id is outside [0, VocabSize()).
	Decode(ids []int) (string, error)

	// VocabSize returns the number of distinct symbols the tokenizer knows.
	VocabSize() int
}
