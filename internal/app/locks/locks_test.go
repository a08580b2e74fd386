package locks

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquireSerializesPerRoom(t *testing.T) {
	registry := NewRoomLocks()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := registry.Acquire("room-101")
			defer release()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestAcquireOppositeOrdersDoNotDeadlock(t *testing.T) {
	registry := NewRoomLocks()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				release := registry.Acquire("room-101", "room-102")
				release()
			}()
			go func() {
				defer wg.Done()
				release := registry.Acquire("room-102", "room-101")
				release()
			}()
		}
		wg.Wait()
		close(done)
	}()
	<-done
}

func TestAcquireDeduplicatesAndSkipsEmptyIDs(t *testing.T) {
	registry := NewRoomLocks()

	// A duplicated id must not self-deadlock.
	release := registry.Acquire("room-101", "room-101", "")
	release()

	release = registry.Acquire()
	release()
}
