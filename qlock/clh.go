package qlock

import (
	"sync/atomic"

	"github.com/lthummus/qlock/internal/goid"
	"github.com/lthummus/qlock/internal/spin"
)

type clhNode struct {
	// active stays true from the moment the node is queued until its owner
	// hands the lock to a successor.
	active atomic.Bool

	// depth is the reentrant hold count. Only the owning goroutine touches it.
	depth int
}

func newCLHNode() *clhNode {
	n := &clhNode{}
	n.active.Store(true)
	return n
}

// CLH is a spinning implicit-queue lock. Each waiter polls the active flag
// of the node that was the tail when it enqueued.
//
// The zero value is not usable. Use NewCLH.
type CLH struct {
	tail  atomic.Pointer[clhNode]
	nodes *binding[clhNode]
	opts  options
}

func NewCLH(opts ...Option) *CLH {
	return &CLH{
		nodes: newBinding(newCLHNode),
		opts:  buildOptions(opts),
	}
}

func (l *CLH) Lock() {
	n := l.nodes.acquire(goid.ID())
	if n.depth > 0 {
		n.depth++
		return
	}

	if pred := l.tail.Swap(n); pred != nil {
		spin.Until(func() bool { return !pred.active.Load() }, l.opts.spinYield)
	}
	n.depth++
}

func (l *CLH) Unlock() {
	id := goid.ID()
	n := l.nodes.peek(id)
	if n == nil || n.depth == 0 || !n.active.Load() {
		l.opts.notHeld(KindCLH, id)
		return
	}

	n.depth--
	if n.depth > 0 {
		return
	}

	l.nodes.release(id)
	if !l.tail.CompareAndSwap(n, nil) {
		// a successor is already spinning on this node
		n.active.Store(false)
	}
}

func (l *CLH) Locked() bool {
	return l.tail.Load() != nil
}

func (l *CLH) Kind() Kind {
	return KindCLH
}
