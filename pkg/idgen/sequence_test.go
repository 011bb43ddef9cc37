package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceStartsAfterSeed(t *testing.T) {
	s := NewSequence(10)
	assert.Equal(t, int64(11), s.Next())
	assert.Equal(t, int64(12), s.Next())
	assert.Equal(t, int64(12), s.Current())
}

func TestSequenceConcurrentUnique(t *testing.T) {
	var s Sequence
	var wg sync.WaitGroup
	ids := make(chan int64, 500)
	for i := 0; i < 500; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- s.Next()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]struct{}, 500)
	for id := range ids {
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 500)
	assert.Equal(t, int64(500), s.Current())
}
