package qlock

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tailOf exposes the current tail so tests can tell when a goroutine has
// finished enqueueing.
func tailOf(l Locker) any {
	switch x := l.(type) {
	case *CLH:
		return x.tail.Load()
	case *BlockingCLH:
		return x.tail.Load()
	case *MCS:
		return x.q.tail.Load()
	case *BlockingMCS:
		return x.q.tail.Load()
	}
	panic("unknown lock type")
}

func boundNodes(l Locker) int {
	switch x := l.(type) {
	case *CLH:
		return x.nodes.size()
	case *BlockingCLH:
		return x.nodes.size()
	case *MCS:
		return x.q.nodes.size()
	case *BlockingMCS:
		return x.q.nodes.size()
	}
	panic("unknown lock type")
}

func newLock(t *testing.T, kind Kind, opts ...Option) Locker {
	l, err := New(kind, opts...)
	require.NoError(t, err)
	return l
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			require.FailNow(t, "condition never became true")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestParseKind(t *testing.T) {
	tc := []struct {
		input    string
		expected Kind
		wantErr  bool
	}{
		{input: "clh", expected: KindCLH},
		{input: "CLH-Blocking", expected: KindBlockingCLH},
		{input: " mcs ", expected: KindMCS},
		{input: "mcs-blocking", expected: KindBlockingMCS},
		{input: "ticket", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, curr := range tc {
		k, err := ParseKind(curr.input)
		if curr.wantErr {
			assert.ErrorIs(t, err, ErrUnknownKind)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, curr.expected, k)
	}
}

func TestNew(t *testing.T) {
	for _, kind := range Kinds() {
		l, err := New(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, l.Kind())
		assert.False(t, l.Locked())
	}

	_, err := New(Kind("nope"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKindBlocking(t *testing.T) {
	assert.False(t, KindCLH.Blocking())
	assert.False(t, KindMCS.Blocking())
	assert.True(t, KindBlockingCLH.Blocking())
	assert.True(t, KindBlockingMCS.Blocking())
}

func TestLockUnlock(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			l := newLock(t, kind)

			l.Lock()
			assert.True(t, l.Locked())
			assert.Equal(t, 1, boundNodes(l))

			l.Unlock()
			assert.False(t, l.Locked())
			assert.Equal(t, 0, boundNodes(l))

			// and again, with a fresh node
			l.Lock()
			assert.True(t, l.Locked())
			l.Unlock()
			assert.False(t, l.Locked())
		})
	}
}

func TestNoLostUpdates(t *testing.T) {
	sizes := map[Kind][]int{
		KindCLH:         {150, 2000},
		KindMCS:         {150, 2000},
		KindBlockingCLH: {300, 15000},
		KindBlockingMCS: {300, 15000},
	}

	for _, kind := range Kinds() {
		for _, n := range sizes[kind] {
			if testing.Short() && n > 1000 {
				continue
			}
			t.Run(kind.String(), func(t *testing.T) {
				l := newLock(t, kind)

				counter := 0
				var inside atomic.Int32
				var violations atomic.Int32

				var wg sync.WaitGroup
				for range n {
					wg.Add(1)
					go func() {
						defer wg.Done()
						l.Lock()
						if inside.Add(1) != 1 {
							violations.Add(1)
						}
						counter++
						inside.Add(-1)
						l.Unlock()
					}()
				}
				wg.Wait()

				assert.Equal(t, n, counter)
				assert.Zero(t, violations.Load())
				assert.False(t, l.Locked())
				assert.Equal(t, 0, boundNodes(l))
			})
		}
	}
}

func TestReentrancy(t *testing.T) {
	const depth = 6

	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			l := newLock(t, kind)

			holding := make(chan struct{})
			release := make(chan struct{})
			finished := make(chan struct{})
			counter := 0

			go func() {
				defer close(finished)
				for range depth {
					l.Lock()
					counter++
				}
				close(holding)

				for range depth - 1 {
					<-release
					l.Unlock()
				}
				<-release
				l.Unlock()
			}()

			<-holding

			var acquired atomic.Bool
			go func() {
				l.Lock()
				acquired.Store(true)
				l.Unlock()
			}()

			for range depth - 1 {
				release <- struct{}{}
				time.Sleep(10 * time.Millisecond)
				assert.False(t, acquired.Load(), "partial unlock released the lock")
			}

			release <- struct{}{}
			<-finished
			waitFor(t, acquired.Load)

			assert.Equal(t, depth, counter)
			waitFor(t, func() bool { return !l.Locked() })
		})
	}
}

func TestFIFOGrantOrder(t *testing.T) {
	const waiters = 25

	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			l := newLock(t, kind)

			l.Lock()

			var order []int
			var wg sync.WaitGroup
			for i := range waiters {
				prev := tailOf(l)
				wg.Add(1)
				go func() {
					defer wg.Done()
					l.Lock()
					order = append(order, i)
					l.Unlock()
				}()
				// only start the next waiter once this one owns the tail
				waitFor(t, func() bool { return tailOf(l) != prev })
			}

			l.Unlock()
			wg.Wait()

			expected := make([]int, waiters)
			for i := range expected {
				expected[i] = i
			}
			assert.Equal(t, expected, order)
		})
	}
}

func TestUnlockWithoutLock(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			l := newLock(t, kind)

			assert.NotPanics(t, l.Unlock)
			assert.False(t, l.Locked())

			l.Lock()
			l.Unlock()
			assert.NotPanics(t, l.Unlock)
			assert.False(t, l.Locked())
		})
	}
}

func TestUnlockFromOtherGoroutineIsIgnored(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			l := newLock(t, kind)

			l.Lock()

			done := make(chan struct{})
			go func() {
				defer close(done)
				l.Unlock()
			}()
			<-done

			var acquired atomic.Bool
			go func() {
				l.Lock()
				acquired.Store(true)
				l.Unlock()
			}()

			time.Sleep(20 * time.Millisecond)
			assert.False(t, acquired.Load(), "unlock from a non-holder released the lock")

			l.Unlock()
			waitFor(t, acquired.Load)
		})
	}
}

func TestStrictUnlock(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			l := newLock(t, kind, WithStrictUnlock())

			err := recoverUnlock(l)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotHeld)

			var lse *LockStateError
			require.True(t, errors.As(err, &lse))
			assert.Equal(t, kind, lse.Kind)
			assert.NotZero(t, lse.Goroutine)

			// the lock still works afterwards
			l.Lock()
			assert.NoError(t, recoverUnlock(l))
			assert.False(t, l.Locked())
		})
	}
}

func recoverUnlock(l Locker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = r.(error)
		}
	}()
	l.Unlock()
	return nil
}

func TestWithSpinYield(t *testing.T) {
	o := buildOptions(nil)
	assert.Equal(t, 64, o.spinYield)
	assert.False(t, o.strict)

	o = buildOptions([]Option{WithSpinYield(-3), WithStrictUnlock()})
	assert.Equal(t, 1, o.spinYield)
	assert.True(t, o.strict)

	o = buildOptions([]Option{WithSpinYield(8)})
	assert.Equal(t, 8, o.spinYield)
}

func TestLockStateError(t *testing.T) {
	err := &LockStateError{Kind: KindMCS, Goroutine: 17}
	assert.Equal(t, "qlock: Unlock: goroutine 17 does not hold the mcs lock", err.Error())
	assert.ErrorIs(t, err, ErrNotHeld)
}
