package trackers

import (
	"image"
	"math"

	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
)

const (
	hueBins      = 180
	minSat       = 60
	minVal       = 32
	shiftMaxIter = 10
	shiftEps     = 1.0
	camMargin    = 10
	camPadding   = 1.25
	camMinSize   = 8
)

// MeanShiftTracker follows the hue histogram of the initial region. Each
// update back-projects the histogram around the last window and moves the
// window to the centroid of the probability mass until it settles.
// With adapt set the window is also resized from the spread of that mass
// (CamShift).
type MeanShiftTracker struct {
	hist  [hueBins]uint8
	box   pipeline.BBox
	adapt bool
	ready bool
}

// NewMeanShift creates a fixed-size mean shift tracker.
func NewMeanShift() *MeanShiftTracker {
	return &MeanShiftTracker{}
}

// NewCamShift creates a mean shift tracker that adapts its window size.
func NewCamShift() *MeanShiftTracker {
	return &MeanShiftTracker{adapt: true}
}

func (t *MeanShiftTracker) Init(frame *image.RGBA, box pipeline.BBox) bool {
	if frame == nil {
		return false
	}
	b := box.Clip(frame.Bounds())
	if !b.Valid() {
		return false
	}

	var counts [hueBins]int
	peak := 0
	for y := b.Y; y < b.Y+b.H; y++ {
		p := frame.PixOffset(b.X, y)
		for x := 0; x < b.W; x++ {
			h, s, v := hsv(frame.Pix[p], frame.Pix[p+1], frame.Pix[p+2])
			p += 4
			if s < minSat || v < minVal {
				continue
			}
			counts[h]++
			if counts[h] > peak {
				peak = counts[h]
			}
		}
	}
	if peak == 0 {
		return false
	}
	for i, c := range counts {
		t.hist[i] = uint8(c * 255 / peak)
	}
	t.box = b
	t.ready = true
	return true
}

// backProject returns per-pixel histogram weights for r.
func (t *MeanShiftTracker) backProject(frame *image.RGBA, r image.Rectangle) []uint8 {
	out := make([]uint8, r.Dx()*r.Dy())
	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		p := frame.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			h, s, v := hsv(frame.Pix[p], frame.Pix[p+1], frame.Pix[p+2])
			if s >= minSat && v >= minVal {
				out[i] = t.hist[h]
			}
			i++
			p += 4
		}
	}
	return out
}

type moments struct {
	m00, m10, m01, m20, m02 float64
}

// moments sums the weights of prob (covering area) inside win.
func sumMoments(prob []uint8, area, win image.Rectangle) moments {
	var m moments
	win = win.Intersect(area)
	stride := area.Dx()
	for y := win.Min.Y; y < win.Max.Y; y++ {
		row := (y - area.Min.Y) * stride
		for x := win.Min.X; x < win.Max.X; x++ {
			w := float64(prob[row+x-area.Min.X])
			if w == 0 {
				continue
			}
			fx, fy := float64(x), float64(y)
			m.m00 += w
			m.m10 += w * fx
			m.m01 += w * fy
			m.m20 += w * fx * fx
			m.m02 += w * fy * fy
		}
	}
	return m
}

func (t *MeanShiftTracker) Update(frame *image.RGBA) (pipeline.BBox, bool) {
	if !t.ready || frame == nil {
		return t.box, false
	}
	reach := max(t.box.W, t.box.H)
	area := t.box.Rect().Inset(-reach).Intersect(frame.Bounds())
	if area.Dx() < t.box.W || area.Dy() < t.box.H {
		return t.box, false
	}
	prob := t.backProject(frame, area)

	win := t.box
	for i := 0; i < shiftMaxIter; i++ {
		m := sumMoments(prob, area, win.Rect())
		if m.m00 == 0 {
			return t.box, false
		}
		cx, cy := m.m10/m.m00, m.m01/m.m00
		nx := clamp(int(math.Round(cx-float64(win.W)/2)), area.Min.X, area.Max.X-win.W)
		ny := clamp(int(math.Round(cy-float64(win.H)/2)), area.Min.Y, area.Max.Y-win.H)
		dx, dy := nx-win.X, ny-win.Y
		win.X, win.Y = nx, ny
		if math.Abs(float64(dx)) < shiftEps && math.Abs(float64(dy)) < shiftEps {
			break
		}
	}

	if t.adapt {
		win = t.resize(prob, area, win, frame.Bounds())
	}
	if !win.Valid() {
		return t.box, false
	}
	t.box = win
	return t.box, true
}

// resize fits the window to the spread of the probability mass around it.
func (t *MeanShiftTracker) resize(prob []uint8, area image.Rectangle, win pipeline.BBox, bounds image.Rectangle) pipeline.BBox {
	m := sumMoments(prob, area, win.Rect().Inset(-camMargin))
	if m.m00 == 0 {
		return win
	}
	xc, yc := m.m10/m.m00, m.m01/m.m00
	varX := m.m20/m.m00 - xc*xc
	varY := m.m02/m.m00 - yc*yc
	if varX <= 0 || varY <= 0 {
		return win
	}
	// A uniform blob of side L has variance L*L/12.
	w := clamp(int(math.Sqrt(12*varX)*camPadding), camMinSize, bounds.Dx())
	h := clamp(int(math.Sqrt(12*varY)*camPadding), camMinSize, bounds.Dy())
	out := pipeline.BBox{
		X: int(math.Round(xc)) - w/2,
		Y: int(math.Round(yc)) - h/2,
		W: w,
		H: h,
	}
	return out.Clip(bounds)
}

func (t *MeanShiftTracker) Close() error {
	t.ready = false
	return nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ ports.Tracker = (*MeanShiftTracker)(nil)
