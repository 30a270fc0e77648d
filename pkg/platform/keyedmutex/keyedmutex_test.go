package keyedmutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializesSameKey(t *testing.T) {
	km := New()

	const iterations = 500
	counter := 0

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range iterations {
				km.Lock("voter-a")
				counter++
				km.Unlock("voter-a")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8*iterations, counter)
}

func TestIndependentKeysDoNotBlock(t *testing.T) {
	km := New()

	km.Lock("voter-a")
	done := make(chan struct{})
	go func() {
		km.Lock("voter-b")
		km.Unlock("voter-b")
		close(done)
	}()

	<-done // must complete while voter-a is still held
	km.Unlock("voter-a")
}

func TestEntriesAreReleased(t *testing.T) {
	km := New()

	km.Lock("ballot-1")
	km.Unlock("ballot-1")
	km.Lock("ballot-2")
	km.Unlock("ballot-2")

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.entries)
}

func TestUnlockUnheldPanics(t *testing.T) {
	km := New()
	require.Panics(t, func() { km.Unlock("never-locked") })
}
