package qlock

// BlockingMCS is an explicit-queue lock whose waiters park. The goroutine
// releasing the lock clears its successor's blocked flag and resumes it
// directly.
//
// The zero value is not usable. Use NewBlockingMCS.
type BlockingMCS struct {
	q mcsQueue
}

func NewBlockingMCS(opts ...Option) *BlockingMCS {
	l := &BlockingMCS{}
	l.q.setup(KindBlockingMCS, opts)
	return l
}

func (l *BlockingMCS) Lock() {
	l.q.lock()
}

func (l *BlockingMCS) Unlock() {
	l.q.unlock()
}

func (l *BlockingMCS) Locked() bool {
	return l.q.tail.Load() != nil
}

func (l *BlockingMCS) Kind() Kind {
	return KindBlockingMCS
}
