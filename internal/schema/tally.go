package schema

import "maps"

// DefaultMaxChoices bounds the number of distinct values a tally keeps.
const DefaultMaxChoices = 100

// tally is a bounded frequency map. Once the number of distinct keys would
// exceed Cap the counts are dropped and Overflowed stays set for good.
type tally struct {
	Cap        int              `json:"cap"`
	Counts     map[string]int64 `json:"counts,omitempty"`
	Overflowed bool             `json:"overflowed,omitempty"`
}

func newTally(limit int) *tally {
	if limit <= 0 {
		limit = DefaultMaxChoices
	}
	return &tally{Cap: limit, Counts: map[string]int64{}}
}

func (t *tally) add(key string, n int64) {
	if t.Overflowed {
		return
	}
	if _, ok := t.Counts[key]; !ok && len(t.Counts) >= t.Cap {
		t.overflow()
		return
	}
	t.Counts[key] += n
}

func (t *tally) overflow() {
	t.Overflowed = true
	t.Counts = nil
}

func (t *tally) clone() *tally {
	if t == nil {
		return nil
	}
	c := *t
	c.Counts = maps.Clone(t.Counts)
	return &c
}

// mergeTallies folds b into a and returns the result. A nil tally means the
// values were not tracked: nil absorbs a tracked tally, and an overflowed
// tally absorbs both. The cap of the result is the smaller cap.
func mergeTallies(a, b *tally) *tally {
	switch {
	case a != nil && a.Overflowed:
		return a
	case b != nil && b.Overflowed:
		return b.clone()
	case a == nil || b == nil:
		return nil
	}
	if b.Cap < a.Cap {
		a.Cap = b.Cap
		if len(a.Counts) > a.Cap {
			a.overflow()
			return a
		}
	}
	for k, n := range b.Counts {
		a.add(k, n)
	}
	return a
}
