package mocks

import (
	"image"
	"sync"

	"github.com/user/zonecam/pkg/ports"
)

// VideoWriterFactory is a mock implementation of ports.VideoWriterFactory.
type VideoWriterFactory struct {
	mu sync.Mutex

	CreateFunc func(opts ports.VideoWriterOptions) (ports.VideoWriter, error)

	// Recorded calls for verification
	CreateCalls []ports.VideoWriterOptions
	Writers     []*VideoWriter
}

func (m *VideoWriterFactory) Create(opts ports.VideoWriterOptions) (ports.VideoWriter, error) {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, opts)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(opts)
	}
	w := &VideoWriter{Options: opts}
	m.mu.Lock()
	m.Writers = append(m.Writers, w)
	m.mu.Unlock()
	return w, nil
}

// VideoWriter is a mock implementation of ports.VideoWriter.
type VideoWriter struct {
	mu sync.Mutex

	Options   ports.VideoWriterOptions
	WriteFunc func(img *image.RGBA) error

	// Recorded calls for verification
	Frames int
	Closed bool
}

func (m *VideoWriter) Write(img *image.RGBA) error {
	m.mu.Lock()
	m.Frames++
	m.mu.Unlock()
	if m.WriteFunc != nil {
		return m.WriteFunc(img)
	}
	return nil
}

func (m *VideoWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

var (
	_ ports.VideoWriterFactory = (*VideoWriterFactory)(nil)
	_ ports.VideoWriter        = (*VideoWriter)(nil)
)
