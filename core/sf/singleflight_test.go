package sf

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Group_Dedup(t *testing.T) {
	g := New[int]()

	var calls atomic.Int32
	release := make(chan struct{})

	const n = 5
	results := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err, _ := g.Do("k", func() (int, error) {
				calls.Add(1)
				<-release
				return 7, nil
			})
			require.NoError(t, err)
			results[i] = v
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	for _, v := range results {
		require.Equal(t, 7, v)
	}
}

func Test_Group_SequentialCallsRunAgain(t *testing.T) {
	g := New[int]()

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		v, err, shared := g.Do("k", func() (int, error) {
			return int(calls.Add(1)), nil
		})
		require.NoError(t, err)
		require.Equal(t, i+1, v)
		require.False(t, shared)
	}
}
