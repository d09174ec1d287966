package snowflake

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewGenerator_NodeIDRange(t *testing.T) {
	_, err := NewGenerator(-1)
	require.ErrorIs(t, err, ErrInvalidNodeID)

	_, err = NewGenerator(maxNodeID + 1)
	require.ErrorIs(t, err, ErrInvalidNodeID)

	g, err := NewGenerator(maxNodeID)
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestNextID_Increasing(t *testing.T) {
	g, err := NewGenerator(1)
	require.NoError(t, err)

	prev, err := g.NextID()
	require.NoError(t, err)

	for i := 0; i < 10000; i++ {
		id, err := g.NextID()
		require.NoError(t, err)
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestNextID_SameMillisecondUsesSequence(t *testing.T) {
	g, err := NewGenerator(3)
	require.NoError(t, err)

	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	g.now = func() int64 { return fixed }

	a, err := g.NextID()
	require.NoError(t, err)
	b, err := g.NextID()
	require.NoError(t, err)

	require.Equal(t, a+1, b)
	require.Equal(t, fixed, Time(a).UnixMilli())
	require.Equal(t, int64(3), (a>>seqBits)&maxNodeID)
}

func TestNextID_ConcurrentUnique(t *testing.T) {
	g, err := NewGenerator(7)
	require.NoError(t, err)

	const (
		workers = 8
		perG    = 2000
	)

	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, workers*perG)
		wg   sync.WaitGroup
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perG)
			for i := 0; i < perG; i++ {
				id, err := g.NextID()
				if err != nil {
					t.Error(err)
					return
				}
				local = append(local, id)
			}
			mu.Lock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perG)
}
