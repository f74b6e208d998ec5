// Package park provides a suspend/resume handle for a single goroutine.
package park

// Parker lets one goroutine suspend itself until another goroutine resumes
// it by name. At most one resume is remembered, and a resume that arrives
// before the matching Park is not lost.
type Parker struct {
	token chan struct{}
}

func New() *Parker {
	return &Parker{token: make(chan struct{}, 1)}
}

// Park blocks until a resume token is available and consumes it. A token
// left over from an earlier resume makes Park return immediately, so callers
// must re-check whatever condition they are waiting for.
func (p *Parker) Park() {
	<-p.token
}

// Unpark deposits a resume token. It never blocks.
func (p *Parker) Unpark() {
	select {
	case p.token <- struct{}{}:
	default:
	}
}
