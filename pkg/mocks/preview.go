package mocks

import (
	"image"
	"sync"

	"github.com/user/zonecam/pkg/ports"
)

// Preview is a mock implementation of ports.Preview and ports.KeySource.
// Keys are delivered one per PollKey call, in order.
type Preview struct {
	mu sync.Mutex

	Keys []int

	// Recorded calls for verification
	Shown     []*image.RGBA
	PollCalls int
	Closed    bool
}

func (m *Preview) Show(img *image.RGBA) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Shown = append(m.Shown, img)
}

func (m *Preview) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

func (m *Preview) PollKey(delayMs int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PollCalls++
	if len(m.Keys) == 0 {
		return ports.KeyNone
	}
	k := m.Keys[0]
	m.Keys = m.Keys[1:]
	return k
}

// ShownCount returns the number of frames shown so far.
func (m *Preview) ShownCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Shown)
}

var (
	_ ports.Preview   = (*Preview)(nil)
	_ ports.KeySource = (*Preview)(nil)
)
