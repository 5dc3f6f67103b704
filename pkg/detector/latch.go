package detector

import "sync"

// latch is a one-shot event. Once opened it stays open; waiters arriving
// late see a closed channel and return at once.
type latch struct {
	once sync.Once
	ch   chan struct{}
}

func newLatch() *latch {
	return &latch{ch: make(chan struct{})}
}

func (l *latch) open() {
	l.once.Do(func() { close(l.ch) })
}

func (l *latch) isOpen() bool {
	select {
	case <-l.ch:
		return true
	default:
		return false
	}
}
