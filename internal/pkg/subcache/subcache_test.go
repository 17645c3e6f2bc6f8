package subcache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserLockCoalescesAndDrains(t *testing.T) {
	c := New(nil)

	// Concurrent acquirers for the same user share one lock.
	first := c.acquireUserLock(7)
	second := c.acquireUserLock(7)
	assert.Same(t, first, second)
	assert.Len(t, c.inFlight, 1)

	// A different user gets a different lock.
	other := c.acquireUserLock(8)
	assert.NotSame(t, first, other)
	assert.Len(t, c.inFlight, 2)

	c.releaseUserLock(7, first)
	assert.Len(t, c.inFlight, 2, "entry stays while a holder remains")

	c.releaseUserLock(7, second)
	c.releaseUserLock(8, other)
	assert.Empty(t, c.inFlight, "map drains once all holders release")
}

func TestUserLockDrainsUnderContention(t *testing.T) {
	c := New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			l := c.acquireUserLock(userID)
			l.mu.Lock()
			l.mu.Unlock()
			c.releaseUserLock(userID, l)
		}(uint(i % 5))
	}
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Empty(t, c.inFlight)
}
