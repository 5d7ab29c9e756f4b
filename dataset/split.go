package dataset

import "fmt"

// Split partitions the corpus into a training prefix and a validation suffix, without
// disturbing order: train holds the first floor(trainFraction*Len()) ids and validation the
// rest, so their concatenation is the corpus again.
//
// Split never shuffles. The sequence order is semantically meaningful, and shuffling before
// the cut would leak future text into training, turning the validation loss into a
// memorization check instead of a measure of generalization to unseen future text.
//
// trainFraction must lie in the open interval (0, 1); anything else (NaN included) returns
// an *InvalidSplitRatioError. A cut that leaves one region empty is still a valid split:
// window generation over the empty region simply produces no examples.
//
// The returned regions share the corpus backing store, which stays safe because no Corpus is
// ever mutated.
func (c *Corpus) Split(trainFraction float64) (train, validation *Corpus, err error) {
	if !(trainFraction > 0 && trainFraction < 1) {
		return nil, nil, &InvalidSplitRatioError{Fraction: trainFraction}
	}
	n := int(trainFraction * float64(len(c.ids)))
	train = &Corpus{ids: c.ids[:n:n]}
	validation = &Corpus{ids: c.ids[n:len(c.ids):len(c.ids)]}
	return train, validation, nil
}

// InvalidSplitRatioError reports a train fraction outside the open interval (0, 1).
type InvalidSplitRatioError struct {
	Fraction float64
}

func (e *InvalidSplitRatioError) Error() string {
	return fmt.Sprintf("train fraction %v is outside the interval (0, 1)", e.Fraction)
}
