package trackers

import (
	"image"
	"math"

	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
)

const (
	templateSampleStep = 2
	templateMaxScore   = 40.0
	templateMinRadius  = 8
	templateMaxRadius  = 32
)

// TemplateTracker follows a grayscale patch by minimizing the mean absolute
// difference inside a search window around the last position. The patch is
// captured once at Init and the box keeps its size.
type TemplateTracker struct {
	tpl      []uint8
	box      pipeline.BBox
	radius   int
	maxScore float64
}

// NewTemplate creates a template tracker.
func NewTemplate() *TemplateTracker {
	return &TemplateTracker{maxScore: templateMaxScore}
}

func (t *TemplateTracker) Init(frame *image.RGBA, box pipeline.BBox) bool {
	if frame == nil {
		return false
	}
	b := box.Clip(frame.Bounds())
	if !b.Valid() {
		return false
	}
	t.box = b
	t.tpl = gray(frame, b.Rect())
	r := b.W
	if b.H > r {
		r = b.H
	}
	t.radius = min(max(r/4, templateMinRadius), templateMaxRadius)
	return true
}

func (t *TemplateTracker) Update(frame *image.RGBA) (pipeline.BBox, bool) {
	if t.tpl == nil || frame == nil {
		return t.box, false
	}
	area := t.box.Rect().Inset(-t.radius).Intersect(frame.Bounds())
	if area.Dx() < t.box.W || area.Dy() < t.box.H {
		return t.box, false
	}
	g := gray(frame, area)
	stride := area.Dx()

	score := func(x, y int) float64 {
		ox, oy := x-area.Min.X, y-area.Min.Y
		sum, n := 0, 0
		for j := 0; j < t.box.H; j += templateSampleStep {
			row := (oy+j)*stride + ox
			trow := j * t.box.W
			for i := 0; i < t.box.W; i += templateSampleStep {
				d := int(g[row+i]) - int(t.tpl[trow+i])
				if d < 0 {
					d = -d
				}
				sum += d
				n++
			}
		}
		return float64(sum) / float64(n)
	}

	maxX, maxY := area.Max.X-t.box.W, area.Max.Y-t.box.H
	best := math.MaxFloat64
	bx, by := t.box.X, t.box.Y
	try := func(x, y int) {
		if x < area.Min.X || y < area.Min.Y || x > maxX || y > maxY {
			return
		}
		if s := score(x, y); s < best {
			best, bx, by = s, x, y
		}
	}

	// Stay put on ties.
	try(t.box.X, t.box.Y)
	for dy := -t.radius; dy <= t.radius; dy += 2 {
		for dx := -t.radius; dx <= t.radius; dx += 2 {
			try(t.box.X+dx, t.box.Y+dy)
		}
	}
	cx, cy := bx, by
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			try(cx+dx, cy+dy)
		}
	}

	if best > t.maxScore {
		return t.box, false
	}
	t.box.X, t.box.Y = bx, by
	return t.box, true
}

func (t *TemplateTracker) Close() error {
	t.tpl = nil
	return nil
}

var _ ports.Tracker = (*TemplateTracker)(nil)
