package idgen

import "sync/atomic"

// Sequence issues monotonically increasing ids starting at 1. The zero value
// is ready to use.
type Sequence struct {
	last atomic.Int64
}

// NewSequence returns a sequence whose first id is start+1.
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.last.Store(start)
	return s
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Current returns the last issued id, zero before the first call to Next.
func (s *Sequence) Current() int64 {
	return s.last.Load()
}
