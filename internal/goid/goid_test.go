package goid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tc := []struct {
		name     string
		header   string
		expected uint64
		wantErr  bool
	}{
		{name: "running", header: "goroutine 1 [running]:\nmain.main()", expected: 1},
		{name: "large id", header: "goroutine 18446744073709 [running]:", expected: 18446744073709},
		{name: "missing prefix", header: "thread 12 [running]:", wantErr: true},
		{name: "truncated", header: "goroutine 123", wantErr: true},
		{name: "not a number", header: "goroutine abc [running]:", wantErr: true},
	}

	for _, curr := range tc {
		t.Run(curr.name, func(t *testing.T) {
			id, err := parse([]byte(curr.header))
			if curr.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, curr.expected, id)
		})
	}
}

func TestID(t *testing.T) {
	t.Run("stable within a goroutine", func(t *testing.T) {
		assert.Equal(t, ID(), ID())
	})

	t.Run("distinct across goroutines", func(t *testing.T) {
		const n = 50

		var wg sync.WaitGroup
		ids := make([]uint64, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ids[i] = ID()
			}()
		}
		wg.Wait()

		seen := map[uint64]bool{ID(): true}
		for _, curr := range ids {
			assert.NotZero(t, curr)
			assert.False(t, seen[curr], "goroutine id %d seen twice", curr)
			seen[curr] = true
		}
	})
}
