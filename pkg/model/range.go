package model

import "github.com/pkg/errors"

// DefaultLastIndex is a sentinel upper bound large enough to cover any
// plausible future episode number.
const DefaultLastIndex = 100000

// IndexRange is the closed interval [First, Last] of episode indices to
// attempt during a run.
type IndexRange struct {
	First int
	Last  int
}

func (r IndexRange) Size() int {
	return r.Last - r.First + 1
}

func (r IndexRange) Validate() error {
	if r.First < 1 {
		return errors.Errorf("first episode index must be positive, got %d", r.First)
	}

	if r.Last < r.First {
		return errors.Errorf("last episode index (%d) must not precede first (%d)", r.Last, r.First)
	}

	return nil
}
