package dataset

import (
	"iter"
	"math"
	"slices"
)

// Example is one next-symbol prediction pair: Target is the id that immediately follows
// Context in the region both were taken from. Examples are generated on demand and never
// persisted.
type Example struct {
	Context []int
	Target  int
}

// Window returns the generalized single-step training pair at start: a context of the given
// length, and the same region shifted ahead by exactly one position.
//
// The shift is the whole trick: at every offset k inside the window, target[k] is the
// correct next symbol after context[0..k], so a single window carries a training signal for
// every context length from 1 up to length in one pass, instead of needing length separate
// slices.
//
// It returns a *RangeError when start < 0, length < 1, or start+length+1 > Len(); the target
// needs one id beyond the context, so the window must fit with that one-id margin.
func (c *Corpus) Window(start, length int) (context, target []int, err error) {
	n := len(c.ids)
	if length < 1 {
		return nil, nil, &RangeError{Start: start, End: start + length, Len: n}
	}
	// length > n-start-1 is the predicate start+length+1 > n without the overflowing sum.
	if start < 0 || start >= n || length > n-start-1 {
		end := start + length + 1
		if end <= start {
			// The requested end does not fit in an int.
			end = math.MaxInt
		}
		return nil, nil, &RangeError{Start: start, End: end, Len: n}
	}
	context = slices.Clone(c.ids[start : start+length])
	target = slices.Clone(c.ids[start+1 : start+length+1])
	return context, target, nil
}

// ExamplesAt generates the prediction examples anchored at start: one Example per context
// length n in 1..maxContext, with Context = region[start:start+n] and Target the id right
// after it.
//
// The sequence is lazy, finite, and restartable: ranging over it a second time replays the
// same examples. It stops early once the next context would leave no id left to serve as
// target; running out of region is a normal boundary, not an error. For the same reason a
// start outside [0, Len()) or a non-positive maxContext yields no examples at all.
func (c *Corpus) ExamplesAt(start, maxContext int) iter.Seq[Example] {
	return func(yield func(Example) bool) {
		if start < 0 || start >= len(c.ids) {
			return
		}
		for n := 1; n <= maxContext && start+n < len(c.ids); n++ {
			example := Example{
				Context: slices.Clone(c.ids[start : start+n]),
				Target:  c.ids[start+n],
			}
			if !yield(example) {
				return
			}
		}
	}
}
