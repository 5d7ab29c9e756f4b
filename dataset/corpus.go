// Package dataset holds an encoded corpus and derives the supervised training signal from
// it: ordered slices of symbol ids, an order-preserving train/validation split, and the
// context/target windows that teach a model to predict the next symbol.
//
// Everything in this package is immutable after construction. Corpora can be shared freely
// across goroutines, e.g. by training workers reading the same split regions; window
// generation is a pure function of its inputs and reentrant.
package dataset

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
)

// Corpus is an encoded corpus: one ordered integer id per source symbol, each id produced by
// a single vocabulary. Decoding the sequence with that vocabulary reproduces the source text
// exactly.
//
// A Corpus is read-only once built. Accessors hand out copies, so nothing a caller does to a
// returned slice can disturb the stored sequence.
type Corpus struct {
	ids []int
}

// Encoder is the one-way codec a Corpus is built through.
// Any tokenizer.Tokenizer satisfies it.
type Encoder interface {
	Encode(text string) ([]int, error)
}

// NewCorpus materializes ids as a Corpus. The input slice is copied.
func NewCorpus(ids []int) *Corpus {
	return &Corpus{ids: slices.Clone(ids)}
}

// FromText encodes text with enc and materializes the result as a Corpus, so that
// len(corpus) equals the symbol length of text.
func FromText(text string, enc Encoder) (*Corpus, error) {
	ids, err := enc.Encode(text)
	if err != nil {
		return nil, errors.WithMessage(err, "can't encode corpus text")
	}
	return &Corpus{ids: ids}, nil
}

// Len returns the number of ids in the corpus.
func (c *Corpus) Len() int { return len(c.ids) }

// At returns the id at position i. Like a slice access, it panics when i is outside
// [0, Len()).
func (c *Corpus) At(i int) int { return c.ids[i] }

// Ints returns a copy of the whole id sequence, for handing off to a training consumer that
// wants a plain slice.
func (c *Corpus) Ints() []int { return slices.Clone(c.ids) }

// Slice returns a copy of the half-open id range [start, end).
//
// It returns a *RangeError when start < 0, end > Len(), or start > end.
func (c *Corpus) Slice(start, end int) ([]int, error) {
	if start < 0 || end > len(c.ids) || start > end {
		return nil, &RangeError{Start: start, End: end, Len: len(c.ids)}
	}
	return slices.Clone(c.ids[start:end]), nil
}

// Equal reports whether c and other hold the same id sequence.
func (c *Corpus) Equal(other *Corpus) bool {
	return slices.Equal(c.ids, other.ids)
}

// String implements fmt.Stringer.
func (c *Corpus) String() string {
	return fmt.Sprintf("Corpus(%d ids)", len(c.ids))
}

// RangeError reports slice or window bounds that are invalid for a sequence: out of
// bounds, inverted, or empty where at least one id is required.
type RangeError struct {
	// Start and End are the requested half-open range [Start, End).
	Start, End int
	// Len is the length of the sequence the range was applied to.
	Len int
}

func (e *RangeError) Error() string {
	switch {
	case e.End < e.Start:
		return fmt.Sprintf("range [%d, %d) is inverted", e.Start, e.End)
	case e.End == e.Start:
		return fmt.Sprintf("range [%d, %d) is empty, a window needs at least one id", e.Start, e.End)
	default:
		return fmt.Sprintf("range [%d, %d) is out of bounds for a sequence of length %d", e.Start, e.End, e.Len)
	}
}
