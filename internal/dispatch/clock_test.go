package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestClock_ResumesAt(t *testing.T) {
	c := NewClockAt(41)
	assert.Equal(t, int64(42), c.Next())
}

func TestClock_Concurrent(t *testing.T) {
	c := NewClock()
	const goroutines, perG = 8, 250

	seen := make(chan int64, goroutines*perG)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				seen <- c.Next()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]bool)
	for s := range seen {
		assert.False(t, unique[s], "duplicate seq %d", s)
		unique[s] = true
	}
	assert.Len(t, unique, goroutines*perG)
	assert.Equal(t, int64(goroutines*perG), c.Current())
}
