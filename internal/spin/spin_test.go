package spin

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUntil(t *testing.T) {
	t.Run("returns immediately when already true", func(t *testing.T) {
		calls := 0
		Until(func() bool {
			calls++
			return true
		}, DefaultYield)

		assert.Equal(t, 1, calls)
	})

	t.Run("waits for another goroutine", func(t *testing.T) {
		var flag atomic.Bool
		go flag.Store(true)

		Until(flag.Load, DefaultYield)

		assert.True(t, flag.Load())
	})

	t.Run("clamps bad yield values", func(t *testing.T) {
		calls := 0
		Until(func() bool {
			calls++
			return calls == 10
		}, 0)

		assert.Equal(t, 10, calls)
	})
}
