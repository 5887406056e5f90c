package nonce_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github/chapool/go-hlsigner/internal/wallet/nonce"
)

func TestGeneratorSequence(t *testing.T) {
	gen := nonce.NewGenerator(nonce.WithClock(fixedClock(time.UnixMilli(1700000000000))))

	assert.Equal(t, uint64(1700000000000), gen.Base())
	assert.Equal(t, uint64(1700000000000), gen.Next())
	assert.Equal(t, uint64(1700000000001), gen.Next())
	assert.Equal(t, uint64(1700000000002), gen.Next())
}

func TestGeneratorReset(t *testing.T) {
	current := time.UnixMilli(1700000000000)
	gen := nonce.NewGenerator(nonce.WithClock(func() time.Time { return current }))

	gen.Next()
	gen.Next()

	current = current.Add(time.Minute)
	gen.Reset()
	assert.Equal(t, uint64(1700000060000), gen.Base())
	assert.Equal(t, uint64(1700000060000), gen.Next())

	// A clock behind the sequence must not cause repeats.
	current = time.UnixMilli(1700000000000)
	gen.Reset()
	assert.Equal(t, uint64(1700000060001), gen.Next())
}

func TestGeneratorConcurrentUniqueness(t *testing.T) {
	gen := nonce.NewGenerator()

	const (
		workers = 50
		calls   = 200
	)

	var (
		mu   sync.Mutex
		seen = make(map[uint64]struct{}, workers*calls)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uint64, 0, calls)
			for i := 0; i < calls; i++ {
				local = append(local, gen.Next())
			}
			mu.Lock()
			for _, n := range local {
				seen[n] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*calls)
}
