// Package spin holds the busy-wait loop shared by the queue locks.
package spin

import "runtime"

const DefaultYield = 64

// Until polls cond until it returns true. Every yieldEvery iterations the
// scheduler gets a chance to run the goroutine being waited on. The loop does
// no I/O and no logging.
func Until(cond func() bool, yieldEvery int) {
	if yieldEvery < 1 {
		yieldEvery = 1
	}

	spins := 0
	for !cond() {
		spins++
		if spins >= yieldEvery {
			spins = 0
			runtime.Gosched()
		}
	}
}
