package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_DefaultsToDefaultTime(t *testing.T) {
	clock := NewFixedClock(time.Time{})
	assert.Equal(t, DefaultTime, clock.Now())
}

func TestFixedClock_StaysFrozen(t *testing.T) {
	start := time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC)
	clock := NewFixedClock(start)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start, clock.Now())
}

func TestFixedClock_Advance(t *testing.T) {
	clock := NewFixedClock(time.Time{})

	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, DefaultTime.Add(1500*time.Millisecond), clock.Now())

	clock.Set(DefaultTime)
	assert.Equal(t, DefaultTime, clock.Now())
}

func TestFixedClock_ThreadSafe(t *testing.T) {
	clock := NewFixedClock(time.Time{})
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			clock.Advance(time.Second)
			_ = clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, DefaultTime.Add(numGoroutines*time.Second), clock.Now())
}
