package qlock

import (
	"github.com/jellydator/ttlcache/v3"
)

// binding maps goroutine ids to the node each goroutine is currently using
// with one lock. Every entry is only ever read or written by the goroutine it
// belongs to.
type binding[T any] struct {
	nodes   *ttlcache.Cache[uint64, *T]
	newNode func() *T
}

func newBinding[T any](newNode func() *T) *binding[T] {
	return &binding[T]{
		nodes: ttlcache.New[uint64, *T](
			ttlcache.WithDisableTouchOnHit[uint64, *T](),
		),
		newNode: newNode,
	}
}

// acquire returns the goroutine's node, creating it on first use.
func (b *binding[T]) acquire(goroutine uint64) *T {
	item := b.nodes.Get(goroutine)
	if item == nil {
		item = b.nodes.Set(goroutine, b.newNode(), ttlcache.NoTTL)
	}
	return item.Value()
}

// peek returns the goroutine's node or nil if it has none.
func (b *binding[T]) peek(goroutine uint64) *T {
	item := b.nodes.Get(goroutine)
	if item == nil {
		return nil
	}
	return item.Value()
}

func (b *binding[T]) release(goroutine uint64) {
	b.nodes.Delete(goroutine)
}

func (b *binding[T]) size() int {
	return b.nodes.Len()
}
