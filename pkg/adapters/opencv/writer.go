//go:build withcv

package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/user/zonecam/pkg/ports"
)

// Writer wraps gocv.VideoWriter.
type Writer struct {
	vw *gocv.VideoWriter
}

// NewWriter opens a video file with the given FourCC codec.
func NewWriter(opts ports.VideoWriterOptions) (*Writer, error) {
	vw, err := gocv.VideoWriterFile(opts.Path, opts.FourCC, opts.FPS, opts.Width, opts.Height, true)
	if err != nil {
		return nil, fmt.Errorf("opencv: open writer %s: %w", opts.Path, err)
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, fmt.Errorf("%w: writer %s (%s)", ErrOpenFailed, opts.Path, opts.FourCC)
	}
	return &Writer{vw: vw}, nil
}

func (w *Writer) Write(img *image.RGBA) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return err
	}
	defer mat.Close()
	return w.vw.Write(mat)
}

func (w *Writer) Close() error {
	return w.vw.Close()
}

// WriterFactory creates OpenCV video writers.
type WriterFactory struct{}

// Create implements ports.VideoWriterFactory.
func (WriterFactory) Create(opts ports.VideoWriterOptions) (ports.VideoWriter, error) {
	return NewWriter(opts)
}

var (
	_ ports.VideoWriter        = (*Writer)(nil)
	_ ports.VideoWriterFactory = WriterFactory{}
)
