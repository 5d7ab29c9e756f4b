package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyCorpus is returned when building a vocabulary from empty text.
// A vocabulary with zero symbols cannot support encoding.
var ErrEmptyCorpus = errors.New("cannot build a vocabulary from an empty corpus")

// UnknownSymbolError reports a symbol that Encode found outside the vocabulary,
// and the symbol position (0-based, counted in symbols) where it occurred.
type UnknownSymbolError struct {
	Symbol   rune
	Position int
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("symbol %q at position %d is not in the vocabulary", e.Symbol, e.Position)
}

// InvalidIDError reports an id that Decode found outside [0, Size).
type InvalidIDError struct {
	ID   int
	Size int
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("id %d is outside the vocabulary range [0, %d)", e.ID, e.Size)
}
