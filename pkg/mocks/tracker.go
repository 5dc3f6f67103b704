package mocks

import (
	"image"
	"sync"

	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
)

// Tracker is a mock implementation of ports.Tracker.
// Without funcs it locks on any valid box and reports it unchanged.
type Tracker struct {
	mu sync.Mutex

	InitFunc   func(frame *image.RGBA, box pipeline.BBox) bool
	UpdateFunc func(frame *image.RGBA) (pipeline.BBox, bool)
	CloseErr   error

	// Recorded calls for verification
	InitCalls   []pipeline.BBox
	UpdateCalls int
	Closed      bool

	box pipeline.BBox
}

func (m *Tracker) Init(frame *image.RGBA, box pipeline.BBox) bool {
	m.mu.Lock()
	m.InitCalls = append(m.InitCalls, box)
	m.box = box
	m.mu.Unlock()
	if m.InitFunc != nil {
		return m.InitFunc(frame, box)
	}
	return box.Valid()
}

func (m *Tracker) Update(frame *image.RGBA) (pipeline.BBox, bool) {
	m.mu.Lock()
	m.UpdateCalls++
	box := m.box
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(frame)
	}
	return box, true
}

func (m *Tracker) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return m.CloseErr
}

// ScriptedTracker returns a tracker whose updates replay steps in order.
// Each step is a displacement from the initial box; a nil step reports failure.
// After the script ends the last position is held.
func ScriptedTracker(steps ...*image.Point) *Tracker {
	t := &Tracker{}
	i := 0
	var last pipeline.BBox
	t.UpdateFunc = func(frame *image.RGBA) (pipeline.BBox, bool) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if len(t.InitCalls) == 0 {
			return pipeline.BBox{}, false
		}
		initial := t.InitCalls[len(t.InitCalls)-1]
		if i == 0 && last == (pipeline.BBox{}) {
			last = initial
		}
		if i >= len(steps) {
			return last, true
		}
		step := steps[i]
		i++
		if step == nil {
			return pipeline.BBox{}, false
		}
		last = initial.Translate(step.X, step.Y)
		return last, true
	}
	return t
}

var _ ports.Tracker = (*Tracker)(nil)
