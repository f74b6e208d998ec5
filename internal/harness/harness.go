// Package harness drives a lock through the classic counter exercise: many
// goroutines each take the lock, bump a shared unsynchronized counter, then
// re-enter the lock several more times before unwinding.
package harness

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lthummus/qlock/qlock"
)

const (
	DefaultDepth   = 5
	DefaultTimeout = 30 * time.Second

	// the driving goroutine re-enters this deep once the workers are done
	finalDepth = 10
)

var (
	ErrCountMismatch     = errors.New("harness: counter does not match expected value")
	ErrExclusionViolated = errors.New("harness: more than one goroutine inside the critical section")
	ErrTimedOut          = errors.New("harness: workers did not finish in time")
)

type Trial struct {
	Kind    qlock.Kind
	Workers int

	// Depth is how many nested acquisitions each worker makes after its
	// first one.
	Depth int

	Timeout time.Duration
}

func (t Trial) Expected() int {
	return t.Workers * (t.Depth + 1)
}

type Result struct {
	ID        uuid.UUID
	Kind      qlock.Kind
	Workers   int
	Depth     int
	Expected  int
	Counted   int
	MaxInside int32
	Started   time.Time
	Elapsed   time.Duration
	Err       error
}

func (r *Result) Passed() bool {
	return r.Err == nil
}

type probe struct {
	l       qlock.Locker
	count   int
	inside  atomic.Int32
	highest atomic.Int32
}

func (p *probe) enter() {
	n := p.inside.Add(1)
	for {
		cur := p.highest.Load()
		if n <= cur || p.highest.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (p *probe) exit() {
	p.inside.Add(-1)
}

// reentrant takes the lock, counts once, and recurses until depth runs out.
func (p *probe) reentrant(depth int) {
	p.l.Lock()
	defer p.l.Unlock()

	p.count++
	if depth > 1 {
		p.reentrant(depth - 1)
	}
}

func (p *probe) worker(depth int) {
	p.l.Lock()
	defer p.l.Unlock()

	p.enter()
	defer p.exit()

	p.count++
	if depth > 0 {
		p.reentrant(depth)
	}
}

// Run executes a single trial against l. The returned Result is always
// non-nil; its Err mirrors the returned error.
func Run(ctx context.Context, l qlock.Locker, t Trial) (*Result, error) {
	if t.Timeout <= 0 {
		t.Timeout = DefaultTimeout
	}

	res := &Result{
		ID:       uuid.New(),
		Kind:     l.Kind(),
		Workers:  t.Workers,
		Depth:    t.Depth,
		Expected: t.Expected(),
		Started:  time.Now(),
	}

	logger := log.With().Str("trial_id", res.ID.String()).Str("lock", res.Kind.String()).Logger()
	logger.Debug().Int("workers", t.Workers).Int("depth", t.Depth).Msg("starting trial")

	p := &probe{l: l}

	var wg sync.WaitGroup
	for range t.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(t.Depth)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	ctx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	select {
	case <-done:
	case <-ctx.Done():
		// workers may still be running, so the counter cannot be read safely
		res.Elapsed = time.Since(res.Started)
		res.MaxInside = p.highest.Load()
		res.Err = fmt.Errorf("harness: Run: %d workers after %s: %w", t.Workers, t.Timeout, ErrTimedOut)
		logger.Error().Err(res.Err).Msg("trial timed out")
		return res, res.Err
	}

	res.Elapsed = time.Since(res.Started)
	res.Counted = p.count
	res.MaxInside = p.highest.Load()

	switch {
	case res.MaxInside > 1:
		res.Err = fmt.Errorf("harness: Run: saw %d goroutines inside: %w", res.MaxInside, ErrExclusionViolated)
	case res.Counted != res.Expected:
		res.Err = fmt.Errorf("harness: Run: counted %d, expected %d: %w", res.Counted, res.Expected, ErrCountMismatch)
	}

	if res.Err != nil {
		logger.Error().Err(res.Err).Msg("trial failed")
		return res, res.Err
	}

	// the lock must still be usable by a fresh goroutine once the workers are gone
	before := p.count
	p.reentrant(finalDepth)
	l.Lock()
	l.Unlock()
	if p.count-before != finalDepth {
		res.Err = fmt.Errorf("harness: Run: final reentrant pass counted %d: %w", p.count-before, ErrCountMismatch)
		logger.Error().Err(res.Err).Msg("trial failed")
		return res, res.Err
	}

	logger.Info().Int("counted", res.Counted).Dur("elapsed", res.Elapsed).Msg("trial passed")
	return res, nil
}

// RandomWorkers picks a worker count in [minWorkers, maxWorkers). Draws below
// minWorkers are shifted up by minWorkers and capped under maxWorkers.
func RandomWorkers(r *rand.Rand, minWorkers int, maxWorkers int) int {
	if maxWorkers <= minWorkers {
		return minWorkers
	}
	n := r.IntN(maxWorkers)
	if n < minWorkers {
		n += minWorkers
	}
	return min(n, maxWorkers-1)
}
