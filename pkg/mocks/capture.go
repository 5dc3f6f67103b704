package mocks

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/user/zonecam/pkg/ports"
)

// CaptureDevice is a mock implementation of ports.CaptureDevice.
// It serves Frames in order; once exhausted Grab returns false.
type CaptureDevice struct {
	mu sync.Mutex

	Frames       []*image.RGBA
	W, H         int
	AnnouncedFPS float64
	Closed       bool

	SetWidthFunc     func(width int) error
	SetHeightFunc    func(height int) error
	OpenSettingsFunc func() error

	// Recorded calls for verification
	GrabCalls         int
	RetrieveCalls     int
	OpenSettingsCalls int

	next    int
	grabbed *image.RGBA
}

// NewCaptureDevice creates a device that yields n solid frames of the given size.
func NewCaptureDevice(width, height, n int) *CaptureDevice {
	frames := make([]*image.RGBA, n)
	for i := range frames {
		frames[i] = SolidFrame(width, height, color.RGBA{R: uint8(i), A: 255})
	}
	return &CaptureDevice{Frames: frames, W: width, H: height}
}

// SolidFrame returns a frame filled with c.
func SolidFrame(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func (m *CaptureDevice) Grab() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GrabCalls++
	m.grabbed = nil
	if m.Closed || m.next >= len(m.Frames) {
		return false
	}
	m.grabbed = m.Frames[m.next]
	m.next++
	return true
}

func (m *CaptureDevice) Retrieve() (*image.RGBA, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetrieveCalls++
	if m.Closed || m.grabbed == nil {
		return nil, false
	}
	return m.grabbed, true
}

func (m *CaptureDevice) Width() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.W
}

func (m *CaptureDevice) Height() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.H
}

func (m *CaptureDevice) SetWidth(width int) error {
	if m.SetWidthFunc != nil {
		if err := m.SetWidthFunc(width); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.W = width
	return nil
}

func (m *CaptureDevice) SetHeight(height int) error {
	if m.SetHeightFunc != nil {
		if err := m.SetHeightFunc(height); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.H = height
	return nil
}

func (m *CaptureDevice) FPS() float64 {
	return m.AnnouncedFPS
}

func (m *CaptureDevice) OpenSettings() error {
	m.mu.Lock()
	m.OpenSettingsCalls++
	m.mu.Unlock()
	if m.OpenSettingsFunc != nil {
		return m.OpenSettingsFunc()
	}
	return nil
}

func (m *CaptureDevice) IsOpened() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.Closed
}

func (m *CaptureDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return errors.New("mock: device already closed")
	}
	m.Closed = true
	return nil
}

var _ ports.CaptureDevice = (*CaptureDevice)(nil)
