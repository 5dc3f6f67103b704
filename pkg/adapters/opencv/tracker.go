//go:build withcv

package opencv

import (
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
)

// Tracker adapts a gocv.Tracker to ports.Tracker.
type Tracker struct {
	t gocv.Tracker
}

func (t *Tracker) Init(frame *image.RGBA, box pipeline.BBox) bool {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return false
	}
	defer mat.Close()
	return t.t.Init(mat, box.Rect())
}

func (t *Tracker) Update(frame *image.RGBA) (pipeline.BBox, bool) {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return pipeline.BBox{}, false
	}
	defer mat.Close()
	r, ok := t.t.Update(mat)
	return pipeline.FromRect(r), ok
}

func (t *Tracker) Close() error {
	return t.t.Close()
}

// NewTracker creates an OpenCV tracker by algorithm name.
func NewTracker(name string) (*Tracker, error) {
	switch strings.ToUpper(name) {
	case "MIL":
		return &Tracker{t: gocv.NewTrackerMIL()}, nil
	case "KCF":
		return &Tracker{t: contrib.NewTrackerKCF()}, nil
	case "CSRT":
		return &Tracker{t: contrib.NewTrackerCSRT()}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrTrackerUnavailable, name)
	}
}

// TrackerFactories returns a factory per name in TrackerNames.
func TrackerFactories() map[string]ports.TrackerFactory {
	out := make(map[string]ports.TrackerFactory, len(TrackerNames))
	for _, name := range TrackerNames {
		name := name
		out[name] = func() (ports.Tracker, error) {
			return NewTracker(name)
		}
	}
	return out
}

var _ ports.Tracker = (*Tracker)(nil)
