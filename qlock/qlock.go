package qlock

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lthummus/qlock/internal/spin"
)

// Kind names one of the lock algorithms in this package.
type Kind string

const (
	KindCLH         Kind = "clh"
	KindBlockingCLH Kind = "clh-blocking"
	KindMCS         Kind = "mcs"
	KindBlockingMCS Kind = "mcs-blocking"
)

var allKinds = []Kind{KindCLH, KindBlockingCLH, KindMCS, KindBlockingMCS}

func (k Kind) String() string {
	return string(k)
}

// Blocking reports whether waiters of this kind suspend rather than spin.
func (k Kind) Blocking() bool {
	return k == KindBlockingCLH || k == KindBlockingMCS
}

// Kinds returns every supported kind.
func Kinds() []Kind {
	ret := make([]Kind, len(allKinds))
	copy(ret, allKinds)
	return ret
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, curr := range allKinds {
		if curr == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("qlock: ParseKind: %q: %w", s, ErrUnknownKind)
}

// Locker is the capability shared by every lock in this package.
type Locker interface {
	sync.Locker

	// Locked reports whether some goroutine holds or is waiting for the lock.
	Locked() bool

	Kind() Kind
}

var (
	_ Locker = (*CLH)(nil)
	_ Locker = (*BlockingCLH)(nil)
	_ Locker = (*MCS)(nil)
	_ Locker = (*BlockingMCS)(nil)
)

// New builds a lock of the given kind.
func New(kind Kind, opts ...Option) (Locker, error) {
	switch kind {
	case KindCLH:
		return NewCLH(opts...), nil
	case KindBlockingCLH:
		return NewBlockingCLH(opts...), nil
	case KindMCS:
		return NewMCS(opts...), nil
	case KindBlockingMCS:
		return NewBlockingMCS(opts...), nil
	default:
		return nil, fmt.Errorf("qlock: New: %q: %w", kind, ErrUnknownKind)
	}
}

type options struct {
	strict    bool
	spinYield int
}

type Option func(*options)

// WithStrictUnlock makes Unlock panic with a *LockStateError when the
// calling goroutine does not hold the lock.
func WithStrictUnlock() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithSpinYield sets how many polls a spinning goroutine makes between
// scheduler yields.
func WithSpinYield(n int) Option {
	return func(o *options) {
		o.spinYield = max(n, 1)
	}
}

func buildOptions(opts []Option) options {
	o := options{spinYield: spin.DefaultYield}
	for _, curr := range opts {
		curr(&o)
	}
	return o
}

func (o options) notHeld(kind Kind, goroutine uint64) {
	if o.strict {
		panic(&LockStateError{Kind: kind, Goroutine: goroutine})
	}
	log.Trace().Str("lock", kind.String()).Uint64("goroutine", goroutine).Msg("unlock without matching lock, ignoring")
}
