package qlock

import (
	"sync/atomic"

	"github.com/lthummus/qlock/internal/goid"
	"github.com/lthummus/qlock/internal/park"
	"github.com/lthummus/qlock/internal/spin"
)

type mcsNode struct {
	// next is set by the successor once it has swapped itself into the tail.
	next atomic.Pointer[mcsNode]

	// blocked is true until the predecessor hands over the lock.
	blocked atomic.Bool

	depth int

	// parker is nil for spinning queues.
	parker *park.Parker
}

// mcsQueue is the explicit-queue algorithm shared by MCS and BlockingMCS.
type mcsQueue struct {
	kind  Kind
	tail  atomic.Pointer[mcsNode]
	nodes *binding[mcsNode]
	opts  options
}

func (q *mcsQueue) setup(kind Kind, opts []Option) {
	blocking := kind.Blocking()
	q.kind = kind
	q.opts = buildOptions(opts)
	q.nodes = newBinding(func() *mcsNode {
		n := &mcsNode{}
		if blocking {
			n.parker = park.New()
		}
		n.blocked.Store(true)
		return n
	})
}

func (q *mcsQueue) lock() {
	n := q.nodes.acquire(goid.ID())
	if !n.blocked.Load() {
		// already held by this goroutine
		n.depth++
		return
	}

	pred := q.tail.Swap(n)
	if pred == nil {
		n.blocked.Store(false)
		n.depth++
		return
	}

	pred.next.Store(n)
	if n.parker != nil {
		for n.blocked.Load() {
			n.parker.Park()
		}
	} else {
		spin.Until(func() bool { return !n.blocked.Load() }, q.opts.spinYield)
	}
	n.depth++
}

func (q *mcsQueue) unlock() {
	id := goid.ID()
	n := q.nodes.peek(id)
	if n == nil || n.blocked.Load() || n.depth == 0 {
		q.opts.notHeld(q.kind, id)
		return
	}

	n.depth--
	if n.depth > 0 {
		return
	}

	succ := n.next.Load()
	if succ == nil {
		if q.tail.CompareAndSwap(n, nil) {
			q.nodes.release(id)
			return
		}

		// The successor owns the tail but has not linked itself in yet.
		spin.Until(func() bool { return n.next.Load() != nil }, q.opts.spinYield)
		succ = n.next.Load()
	}

	succ.blocked.Store(false)
	if succ.parker != nil {
		succ.parker.Unpark()
	}
	n.next.Store(nil)

	q.nodes.release(id)
}

// MCS is a spinning explicit-queue lock. Each waiter spins on its own node
// and is released by its predecessor through the predecessor's next pointer.
//
// The zero value is not usable. Use NewMCS.
type MCS struct {
	q mcsQueue
}

func NewMCS(opts ...Option) *MCS {
	l := &MCS{}
	l.q.setup(KindMCS, opts)
	return l
}

func (l *MCS) Lock() {
	l.q.lock()
}

func (l *MCS) Unlock() {
	l.q.unlock()
}

func (l *MCS) Locked() bool {
	return l.q.tail.Load() != nil
}

func (l *MCS) Kind() Kind {
	return KindMCS
}
