package charlevel

import (
	"slices"
	"strings"

	"github.com/gabehenriques/lets-build-gpt/tokenizer/api"
)

// Vocabulary is the bidirectional mapping between the distinct symbols of a corpus and the
// integer ids [0, Size()). A symbol is one Unicode code point.
//
// The mapping is a bijection: every observed symbol has exactly one id, every id in
// [0, Size()) decodes to exactly one symbol. Ids are assigned by ascending code point, so a
// fixed corpus always yields the same assignment, independent of the order symbols first
// appear in. Rebuilding from a different corpus may assign different ids; vocabularies are
// never merged or extended in place.
//
// A Vocabulary is immutable after BuildVocabulary returns and safe to share across
// goroutines.
type Vocabulary struct {
	idToSymbol []rune
	symbolToID map[rune]int
}

// BuildVocabulary scans text once and returns the vocabulary of its distinct symbols.
//
// It returns api.ErrEmptyCorpus when text is empty.
func BuildVocabulary(text string) (*Vocabulary, error) {
	if len(text) == 0 {
		return nil, api.ErrEmptyCorpus
	}

	seen := make(map[rune]struct{})
	for _, r := range text {
		seen[r] = struct{}{}
	}
	symbols := make([]rune, 0, len(seen))
	for r := range seen {
		symbols = append(symbols, r)
	}
	slices.Sort(symbols)

	bySymbol := make(map[rune]int, len(symbols))
	for id, r := range symbols {
		bySymbol[r] = id
	}
	return &Vocabulary{idToSymbol: symbols, symbolToID: bySymbol}, nil
}

// Size returns the number of distinct symbols in the vocabulary.
func (v *Vocabulary) Size() int { return len(v.idToSymbol) }

// Symbols returns a copy of the vocabulary symbols in id order.
func (v *Vocabulary) Symbols() []rune { return slices.Clone(v.idToSymbol) }

// ID returns the id assigned to symbol, and whether the symbol is in the vocabulary.
func (v *Vocabulary) ID(symbol rune) (int, bool) {
	id, ok := v.symbolToID[symbol]
	return id, ok
}

// Symbol returns the symbol assigned to id.
// It returns an *api.InvalidIDError when id is outside [0, Size()).
func (v *Vocabulary) Symbol(id int) (rune, error) {
	if id < 0 || id >= len(v.idToSymbol) {
		return 0, &api.InvalidIDError{ID: id, Size: len(v.idToSymbol)}
	}
	return v.idToSymbol[id], nil
}

// Encode maps each symbol of text to its id, in order. The result has one id per symbol, so
// its length equals the symbol (not byte) length of text.
//
// Any symbol outside the vocabulary stops encoding with an *api.UnknownSymbolError carrying
// the symbol and its position; skipping it instead would shift every later id and
// desynchronize contexts from targets downstream.
func (v *Vocabulary) Encode(text string) ([]int, error) {
	ids := make([]int, 0, len(text))
	pos := 0
	for _, r := range text {
		id, ok := v.symbolToID[r]
		if !ok {
			return nil, &api.UnknownSymbolError{Symbol: r, Position: pos}
		}
		ids = append(ids, id)
		pos++
	}
	return ids, nil
}

// Decode maps each id back to its symbol, in order, reproducing the exact text the ids came
// from, whitespace and punctuation included.
//
// It returns an *api.InvalidIDError when an id is outside [0, Size()).
func (v *Vocabulary) Decode(ids []int) (string, error) {
	var sb strings.Builder
	sb.Grow(len(ids))
	for _, id := range ids {
		r, err := v.Symbol(id)
		if err != nil {
			return "", err
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}
