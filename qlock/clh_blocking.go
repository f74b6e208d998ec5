package qlock

import (
	"sync/atomic"

	"github.com/lthummus/qlock/internal/goid"
	"github.com/lthummus/qlock/internal/park"
	"github.com/lthummus/qlock/internal/spin"
)

type blockingCLHNode struct {
	active atomic.Bool
	depth  int

	// notify is published by the successor and names the goroutine to
	// resume when this node is released.
	notify atomic.Pointer[park.Parker]

	// parker belongs to the goroutine that owns this node.
	parker *park.Parker
}

func newBlockingCLHNode() *blockingCLHNode {
	n := &blockingCLHNode{parker: park.New()}
	n.active.Store(true)
	return n
}

// BlockingCLH is an implicit-queue lock whose waiters park instead of
// spinning. A waiter registers itself on its predecessor's node and is
// resumed by the predecessor's owner on release.
//
// The zero value is not usable. Use NewBlockingCLH.
type BlockingCLH struct {
	tail  atomic.Pointer[blockingCLHNode]
	nodes *binding[blockingCLHNode]
	opts  options
}

func NewBlockingCLH(opts ...Option) *BlockingCLH {
	return &BlockingCLH{
		nodes: newBinding(newBlockingCLHNode),
		opts:  buildOptions(opts),
	}
}

func (l *BlockingCLH) Lock() {
	n := l.nodes.acquire(goid.ID())
	if n.depth > 0 {
		n.depth++
		return
	}

	if pred := l.tail.Swap(n); pred != nil {
		// Park can return without a matching Unpark, so the flag is the only
		// thing that grants the lock.
		for pred.active.Load() {
			pred.notify.Store(n.parker)
			n.parker.Park()
		}
	}
	n.depth++
}

func (l *BlockingCLH) Unlock() {
	id := goid.ID()
	n := l.nodes.peek(id)
	if n == nil || n.depth == 0 || !n.active.Load() {
		l.opts.notHeld(KindBlockingCLH, id)
		return
	}

	n.depth--
	if n.depth > 0 {
		return
	}

	l.nodes.release(id)
	if l.tail.CompareAndSwap(n, nil) {
		return
	}

	// The successor has swapped itself into the tail but may not have told
	// us who it is yet.
	spin.Until(func() bool { return n.notify.Load() != nil }, l.opts.spinYield)

	n.active.Store(false)
	n.notify.Load().Unpark()
}

func (l *BlockingCLH) Locked() bool {
	return l.tail.Load() != nil
}

func (l *BlockingCLH) Kind() Kind {
	return KindBlockingCLH
}
