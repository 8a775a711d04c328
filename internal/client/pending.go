package client

// Pending is the handle of an operation running in the background.
type Pending[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Async runs fn in its own goroutine. Any store reconciliation fn performs happens when fn
// returns, so concurrent operations settle in completion order.
func Async[T any](fn func() (T, error)) *Pending[T] {
	p := &Pending[T]{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.val, p.err = fn()
	}()
	return p
}

// Done is closed when the operation has finished.
func (p *Pending[T]) Done() <-chan struct{} { return p.done }

// Wait blocks until the operation finishes and returns its result.
func (p *Pending[T]) Wait() (T, error) {
	<-p.done
	return p.val, p.err
}
