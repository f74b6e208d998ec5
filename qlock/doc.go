// Package qlock implements queue-based, reentrant mutual exclusion locks.
//
// Every lock in this package keeps a single shared tail pointer that
// goroutines atomically swap themselves into. The order of those swaps is
// the order in which the lock is granted, so acquisition is strictly FIFO
// and a newly arriving goroutine can never barge ahead of one that is
// already queued.
//
// Two queue shapes are provided:
//   - CLH (implicit queue): a waiter only knows the node that was the tail
//     when it enqueued and watches that node's active flag.
//   - MCS (explicit queue): a waiter links itself into its predecessor's
//     next pointer and is released directly by the predecessor.
//
// Each shape comes with two waiting disciplines. CLH and MCS spin; the
// Blocking variants suspend the waiting goroutine and are resumed by the
// goroutine releasing the lock.
//
// All locks are reentrant: a goroutine that already holds the lock may call
// Lock again and must call Unlock the same number of times before any other
// goroutine is granted the lock. Locks are owned by goroutines, so the
// Unlock calls have to come from the goroutine that called Lock.
//
// Example usage:
//
//	l := qlock.NewBlockingMCS()
//
//	l.Lock()
//	// ... critical section ...
//	l.Unlock()
//
// Calling Unlock from a goroutine that does not hold the lock is silently
// ignored unless the lock was built with WithStrictUnlock, in which case it
// panics with a *LockStateError.
//
// There are no timeouts. A goroutine that exits while holding a lock leaves
// every queued goroutine waiting forever.
package qlock
