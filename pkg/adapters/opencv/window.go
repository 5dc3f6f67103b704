//go:build withcv

package opencv

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/user/zonecam/pkg/ports"
)

// Window is a HighGUI preview window. It also delivers key presses.
type Window struct {
	w *gocv.Window
}

// NewWindow opens a named preview window.
func NewWindow(name string) (*Window, error) {
	return &Window{w: gocv.NewWindow(name)}, nil
}

func (w *Window) Show(img *image.RGBA) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return
	}
	defer mat.Close()
	w.w.IMShow(mat)
}

// PollKey waits for a key and strips modifier bits from the code.
func (w *Window) PollKey(delayMs int) int {
	if delayMs < 1 {
		delayMs = 1
	}
	k := w.w.WaitKey(delayMs)
	if k < 0 {
		return ports.KeyNone
	}
	return k & 0xFF
}

func (w *Window) Close() error {
	return w.w.Close()
}

var (
	_ ports.Preview   = (*Window)(nil)
	_ ports.KeySource = (*Window)(nil)
)
