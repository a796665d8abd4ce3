package rendezvous

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalid(t *testing.T) {
	assert.Panics(t, func() { New(0) })
	assert.Panics(t, func() { New(-3) })
}

func TestSingleParty(t *testing.T) {
	b := New(1)
	for i := 0; i < 5; i++ {
		assert.True(t, b.Wait(), "sole party is always the leader")
	}
	assert.Equal(t, uint64(5), b.Generation())
}

func TestOneLeaderPerGeneration(t *testing.T) {
	const parties = 3
	const generations = 500

	b := New(parties)
	require.Equal(t, parties, b.Parties())

	var leaders atomic.Int64
	var wg sync.WaitGroup
	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := 0; g < generations; g++ {
				if b.Wait() {
					leaders.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(generations), leaders.Load())
	assert.Equal(t, uint64(generations), b.Generation())
}

func TestBlocksUntilAllArrive(t *testing.T) {
	b := New(3)
	var released atomic.Int32

	for i := 0; i < 2; i++ {
		go func() {
			b.Wait()
			released.Add(1)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), released.Load(), "two of three parties must not pass")

	b.Wait()
	assert.Eventually(t, func() bool { return released.Load() == 2 }, time.Second, time.Millisecond)
}

// Writes made before Wait are visible to every party after it.
func TestHappensBefore(t *testing.T) {
	const parties = 3
	const generations = 200

	b := New(parties)
	values := make([]int, parties)
	var wg sync.WaitGroup
	errs := make(chan string, parties*generations)

	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for g := 1; g <= generations; g++ {
				values[p] = g
				b.Wait()
				for q := 0; q < parties; q++ {
					if values[q] != g {
						errs <- "stale value after barrier"
					}
				}
				b.Wait()
			}
		}(p)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Fatal(e)
	}
}
