//go:build withcv

package opencv

import (
	"fmt"
	"image"
	"runtime"
	"sync"

	"gocv.io/x/gocv"

	"github.com/user/zonecam/pkg/pipeline"
	"github.com/user/zonecam/pkg/ports"
)

// captureSettings is CAP_PROP_SETTINGS, which opens the DirectShow dialog.
const captureSettings = gocv.VideoCaptureProperties(37)

// Capture wraps gocv.VideoCapture. gocv has no separate retrieve call, so
// Grab reads into an internal Mat and Retrieve converts it to an image.
type Capture struct {
	mu      sync.Mutex
	vc      *gocv.VideoCapture
	mat     gocv.Mat
	grabbed bool
	fps     float64
}

// Open opens a camera index, file or URL.
func Open(src ports.Source, opts ports.CaptureOptions) (*Capture, error) {
	var (
		vc  *gocv.VideoCapture
		err error
	)
	switch src.Kind {
	case ports.SourceDevice:
		if runtime.GOOS == "windows" {
			vc, err = gocv.OpenVideoCaptureWithAPI(src.Device, gocv.VideoCaptureDshow)
		} else {
			vc, err = gocv.OpenVideoCapture(src.Device)
		}
	default:
		vc, err = gocv.OpenVideoCapture(src.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, src, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrOpenFailed, src)
	}

	c := &Capture{vc: vc, mat: gocv.NewMat()}
	c.fps = vc.Get(gocv.VideoCaptureFPS)
	if src.Kind == ports.SourceDevice && opts.FPS > 0 {
		vc.Set(gocv.VideoCaptureFPS, opts.FPS)
		if c.fps <= 0 {
			c.fps = opts.FPS
		}
	}
	return c, nil
}

func (c *Capture) Grab() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.grabbed = c.vc.Read(&c.mat) && !c.mat.Empty()
	return c.grabbed
}

func (c *Capture) Retrieve() (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.grabbed {
		return nil, false
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, false
	}
	return pipeline.ToRGBA(img), true
}

func (c *Capture) Width() int {
	return int(c.vc.Get(gocv.VideoCaptureFrameWidth))
}

func (c *Capture) Height() int {
	return int(c.vc.Get(gocv.VideoCaptureFrameHeight))
}

// SetWidth asks the backend for a width and reads it back, since OpenCV
// silently ignores unsupported values.
func (c *Capture) SetWidth(width int) error {
	return c.setProp(gocv.VideoCaptureFrameWidth, "width", width)
}

func (c *Capture) SetHeight(height int) error {
	return c.setProp(gocv.VideoCaptureFrameHeight, "height", height)
}

func (c *Capture) setProp(prop gocv.VideoCaptureProperties, name string, v int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.vc.Set(prop, float64(v))
	if got := int(c.vc.Get(prop)); got != v {
		return fmt.Errorf("%w: %s %d (device uses %d)", ErrPropertyRejected, name, v, got)
	}
	return nil
}

func (c *Capture) FPS() float64 {
	return c.fps
}

// OpenSettings shows the DirectShow property page. Other backends ignore it.
func (c *Capture) OpenSettings() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.vc.Set(captureSettings, 0)
	return nil
}

func (c *Capture) IsOpened() bool {
	return c.vc.IsOpened()
}

func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mat.Close()
	return c.vc.Close()
}

// Opener opens OpenCV capture devices.
type Opener struct{}

// Open implements ports.CaptureOpener.
func (Opener) Open(src ports.Source, opts ports.CaptureOptions) (ports.CaptureDevice, error) {
	return Open(src, opts)
}

// Available reports whether OpenCV support is compiled in.
func Available() bool { return true }

var (
	_ ports.CaptureDevice = (*Capture)(nil)
	_ ports.CaptureOpener = Opener{}
)
